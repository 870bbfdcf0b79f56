// Package output provides styling helpers for terminal output.
package output

import (
	"io"

	"github.com/muesli/termenv"

	"github.com/robinvdvleuten/datemath/value"
)

// Styles colours evaluation results and diagnostics. Colours are dropped
// when the writer is not a terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

// NewStylesWithProfile creates Styles with a fixed colour profile instead
// of detecting one from w.
func NewStylesWithProfile(w io.Writer, profile termenv.Profile) *Styles {
	return &Styles{
		output: termenv.NewOutput(w, termenv.WithProfile(profile)),
	}
}

func (s *Styles) color(text, color string) string {
	return s.output.String(text).Foreground(s.output.Color(color)).String()
}

// Success returns a styled success string (green + bold).
func (s *Styles) Success(text string) string {
	return s.output.String(text).Foreground(s.output.Color("2")).Bold().String()
}

// Error returns a styled error string (red + bold).
func (s *Styles) Error(text string) string {
	return s.output.String(text).Foreground(s.output.Color("1")).Bold().String()
}

// Warning returns a styled warning (yellow + bold).
func (s *Styles) Warning(text string) string {
	return s.output.String(text).Foreground(s.output.Color("3")).Bold().String()
}

// FilePath returns a styled file path (cyan).
func (s *Styles) FilePath(text string) string {
	return s.color(text, "6")
}

// Name returns a styled identifier (yellow).
func (s *Styles) Name(text string) string {
	return s.color(text, "3")
}

// Keyword returns a styled keyword (bold).
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim returns dimmed text (for secondary information).
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Timing returns a timing string, red when the operation was slow and
// dimmed otherwise.
func (s *Styles) Timing(text string, slow bool) string {
	if slow {
		return s.color(text, "1")
	}
	return s.Dim(text)
}

// Value renders v coloured by kind: integers blue, durations magenta,
// timestamps green and unit names bold.
func (s *Styles) Value(v value.Value) string {
	text := v.String()
	switch v.Kind() {
	case value.Integer:
		return s.color(text, "4")
	case value.Duration:
		return s.color(text, "5")
	case value.Timestamp:
		return s.color(text, "2")
	case value.UnitName:
		return s.Keyword(text)
	}
	return text
}

// Kind returns a dimmed kind label such as "timestamp".
func (s *Styles) Kind(k value.Kind) string {
	return s.Dim(k.String())
}

// Output returns the underlying termenv Output for advanced usage.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
