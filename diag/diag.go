// Package diag collects and renders the compiler's errors and warnings,
// the way the analysis front end surfaces problems to a developer at a
// terminal.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Severity classifies one reported problem.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Message is one reported problem, tied to a source line.
type Message struct {
	Severity Severity
	File     string
	Line     int
	Text     string
}

// MaxErrors is the default fatal threshold: once this many errors have
// been reported, further analysis is abandoned.
const MaxErrors = 100

// Sink collects diagnostics and renders them to a writer, colorizing
// severities when the writer is a terminal.
type Sink struct {
	out        io.Writer
	color      bool
	maxErrors  int
	messages   []Message
	errorCount int
}

// NewSink builds a Sink writing to w. Color is auto-detected via
// isatty when w is an *os.File; it can be overridden with SetColor.
func NewSink(w io.Writer, maxErrors int) *Sink {
	if maxErrors <= 0 {
		maxErrors = MaxErrors
	}
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Sink{out: w, color: color, maxErrors: maxErrors}
}

// SetColor overrides the auto-detected terminal colorization.
func (s *Sink) SetColor(v bool) {
	s.color = v
}

// ErrTooManyErrors is returned by Error once the error threshold is
// crossed; the caller should stop driving the analyzer and unwind.
var ErrTooManyErrors = errors.New("Too many errors. Giving up!")

// Error records a fatal diagnostic and returns ErrTooManyErrors, wrapped
// with the message that tipped the count over, once maxErrors is
// reached.
func (s *Sink) Error(file string, line int, format string, args ...interface{}) error {
	msg := Message{Severity: SeverityError, File: file, Line: line, Text: fmt.Sprintf(format, args...)}
	s.messages = append(s.messages, msg)
	s.errorCount++
	s.render(msg)
	if s.errorCount >= s.maxErrors {
		return errors.Wrapf(ErrTooManyErrors, "%s:%d: %s", file, line, msg.Text)
	}
	return nil
}

// Warn records a non-fatal diagnostic.
func (s *Sink) Warn(file string, line int, format string, args ...interface{}) {
	msg := Message{Severity: SeverityWarning, File: file, Line: line, Text: fmt.Sprintf(format, args...)}
	s.messages = append(s.messages, msg)
	s.render(msg)
}

func (s *Sink) render(m Message) {
	if s.out == nil {
		return
	}
	prefix := m.Severity.String()
	if s.color {
		code := "33" // yellow
		if m.Severity == SeverityError {
			code = "31" // red
		}
		prefix = fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, prefix)
	}
	fmt.Fprintf(s.out, "%s:%d: %s: %s\n", m.File, m.Line, prefix, m.Text)
}

// ErrorCount reports how many fatal diagnostics have been recorded.
func (s *Sink) ErrorCount() int {
	return s.errorCount
}

// WarningCount reports how many warnings have been recorded; warnings
// never fail a compilation.
func (s *Sink) WarningCount() int {
	n := 0
	for _, m := range s.messages {
		if m.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Messages returns every diagnostic recorded so far, in report order.
func (s *Sink) Messages() []Message {
	return s.messages
}

// HasErrors reports whether any fatal diagnostic has been recorded.
func (s *Sink) HasErrors() bool {
	return s.errorCount > 0
}
