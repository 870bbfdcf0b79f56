package cli

import (
	stdErrors "errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/datemath/errors"
	"github.com/robinvdvleuten/datemath/parser"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders diagnostics with terminal styling and the
// offending source line.
type ErrorRenderer struct {
	formatter *errors.TextFormatter
}

// NewErrorRenderer creates a renderer for diagnostics of one statement.
func NewErrorRenderer(source string) *ErrorRenderer {
	return &ErrorRenderer{
		formatter: errors.NewTextFormatter(errors.WithSource(source), errors.WithStyler(terminalStyler{})),
	}
}

// Render formats a single error. Recovered diagnostics are shown as
// warnings, fatal ones as errors.
func (r *ErrorRenderer) Render(err error) string {
	return strings.TrimSuffix(r.formatter.Format(err), "\n")
}

// RenderAll formats multiple errors, one block per error.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// terminalStyler colours formatted errors with lipgloss.
type terminalStyler struct{}

func (terminalStyler) Message(err error, text string) string {
	var diag *parser.Diagnostic
	if stdErrors.As(err, &diag) && !diag.Kind.Fatal() {
		return warnStyle.Render(text)
	}
	return errorStyle.Render(text)
}

func (terminalStyler) Source(line string) string {
	return errContextStyle.Render(line)
}

func (terminalStyler) Caret(caret string) string {
	return errCaretStyle.Render(caret)
}
