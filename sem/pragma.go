package sem

// PragmaPush saves one named option's current value, the push half of
// #pragma push(name).
func (c *Context) PragmaPush(line int, name string) error {
	if err := c.Options.PushOption(name); err != nil {
		return c.errorf(line, "%s", err.Error())
	}
	return nil
}

// PragmaPop restores one named option's most recently pushed value.
func (c *Context) PragmaPop(line int, name string) error {
	if err := c.Options.PopOption(name); err != nil {
		return c.errorf(line, "%s", err.Error())
	}
	c.syncOptions()
	return nil
}

// PragmaSet assigns one named option from its textual pragma value.
func (c *Context) PragmaSet(line int, name, value string) error {
	if err := c.Options.Set(name, value); err != nil {
		return c.errorf(line, "%s", err.Error())
	}
	c.syncOptions()
	return nil
}

// syncOptions propagates option changes into the state that caches
// them; today that is only the symbol table's case-sensitivity.
func (c *Context) syncOptions() {
	c.Table.SetCaseInsensitive(c.Options.Current().CaseInsensitive)
}
