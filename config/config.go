// Package config holds the compiler's tunable options: the defaults, a
// YAML file format for overriding them, and the push/pop stack that
// backs source-level pragmas like #pragma push(case_insensitive).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Options is the full set of tunable compiler options.
type Options struct {
	Optimization    int  `yaml:"optimization"`
	CaseInsensitive bool `yaml:"case_insensitive"`
	ArrayBase       int  `yaml:"array_base"`
	StringBase      int  `yaml:"string_base"`
	ByRef           bool `yaml:"byref"`
	MaxSyntaxErrors int  `yaml:"max_syntax_errors"`
	EnableBreak     bool `yaml:"enable_break"`
}

// Default returns the option set a fresh compilation starts with.
func Default() Options {
	return Options{
		Optimization:    1,
		CaseInsensitive: false,
		ArrayBase:       0,
		StringBase:      0,
		ByRef:           false,
		MaxSyntaxErrors: 20,
		EnableBreak:     true,
	}
}

// Load reads a YAML options file, starting from Default and overriding
// only the fields present in the file.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// Save writes opts to path as YAML.
func Save(path string, opts Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Stack is a push/pop stack of Options, backing #pragma push/pop. The
// whole-frame Push/Pop pair snapshots every option at once; the
// per-option PushOption/PopOption pair, which is what a source-level
// pragma uses, saves and restores a single named option's value and
// leaves the rest untouched.
type Stack struct {
	frames []Options
	saved  map[string][]Options
}

// NewStack returns a Stack whose only frame is base.
func NewStack(base Options) *Stack {
	return &Stack{frames: []Options{base}, saved: make(map[string][]Options)}
}

// Current returns the active option set.
func (s *Stack) Current() Options {
	return s.frames[len(s.frames)-1]
}

// Push duplicates the current frame and lets the caller mutate the
// duplicate via the returned pointer.
func (s *Stack) Push() *Options {
	top := s.frames[len(s.frames)-1]
	s.frames = append(s.frames, top)
	return &s.frames[len(s.frames)-1]
}

// Pop discards the current frame, reverting to the one beneath it. It is
// a no-op if only the base frame remains.
func (s *Stack) Pop() {
	if len(s.frames) <= 1 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Depth reports how many frames are on the stack, including the base.
func (s *Stack) Depth() int {
	return len(s.frames)
}

func (s *Stack) top() *Options {
	return &s.frames[len(s.frames)-1]
}

// copyOption assigns src's value for the named option into dst.
func copyOption(name string, dst, src *Options) error {
	switch name {
	case "optimization":
		dst.Optimization = src.Optimization
	case "case_insensitive":
		dst.CaseInsensitive = src.CaseInsensitive
	case "array_base":
		dst.ArrayBase = src.ArrayBase
	case "string_base":
		dst.StringBase = src.StringBase
	case "byref":
		dst.ByRef = src.ByRef
	case "max_syntax_errors":
		dst.MaxSyntaxErrors = src.MaxSyntaxErrors
	case "enable_break":
		dst.EnableBreak = src.EnableBreak
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

// PushOption saves the current value of one named option, to be
// restored by a matching PopOption. This is the #pragma push(name)
// operation.
func (s *Stack) PushOption(name string) error {
	snapshot := *s.top()
	if err := copyOption(name, &snapshot, s.top()); err != nil {
		return err
	}
	s.saved[name] = append(s.saved[name], snapshot)
	return nil
}

// PopOption restores the named option's most recently pushed value,
// leaving every other option as it is. Popping with nothing saved is an
// error, matching an unbalanced #pragma pop(name).
func (s *Stack) PopOption(name string) error {
	stack := s.saved[name]
	if len(stack) == 0 {
		return fmt.Errorf("pop of option %q with no matching push", name)
	}
	snapshot := stack[len(stack)-1]
	s.saved[name] = stack[:len(stack)-1]
	return copyOption(name, s.top(), &snapshot)
}

// Set parses and assigns one named option from its textual pragma
// value: booleans accept true/false/1/0, the rest are integers.
func (s *Stack) Set(name, value string) error {
	top := s.top()
	switch name {
	case "optimization", "array_base", "string_base", "max_syntax_errors":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %q wants an integer value, got %q", name, value)
		}
		switch name {
		case "optimization":
			top.Optimization = n
		case "array_base":
			top.ArrayBase = n
		case "string_base":
			top.StringBase = n
		case "max_syntax_errors":
			top.MaxSyntaxErrors = n
		}
	case "case_insensitive", "byref", "enable_break":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option %q wants a boolean value, got %q", name, value)
		}
		switch name {
		case "case_insensitive":
			top.CaseInsensitive = b
		case "byref":
			top.ByRef = b
		case "enable_break":
			top.EnableBreak = b
		}
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}
