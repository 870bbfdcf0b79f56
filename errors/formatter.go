// Package errors renders evaluation diagnostics for different consumers.
//
// Diagnostic types live in the parser package; this package only handles
// presentation:
//   - TextFormatter: "line:col: kind: message" with the source line and a
//     caret under the offending token, for terminals
//   - JSONFormatter: structured JSON for scripts and editors
package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/datemath/parser"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

// Collect joins a statement's recovered diagnostics and its fatal error,
// if any, into one list in source order.
func Collect(diags []*parser.Diagnostic, err error) []error {
	errs := make([]error, 0, len(diags)+1)
	for _, d := range diags {
		errs = append(errs, d)
	}
	if err != nil {
		errs = append(errs, err)
	}
	return errs
}

// Styler decorates the parts of a formatted error, e.g. with terminal
// colours.
type Styler interface {
	// Message styles the first line of err's block.
	Message(err error, text string) string
	// Source styles the quoted source line.
	Source(line string) string
	// Caret styles the marker under the offending token.
	Caret(caret string) string
}

type plainStyler struct{}

func (plainStyler) Message(_ error, text string) string { return text }

func (plainStyler) Source(line string) string { return line }

func (plainStyler) Caret(caret string) string { return caret }

// TextFormatter formats errors for terminal output.
type TextFormatter struct {
	source string
	indent string
	styler Styler
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithSource sets the statement text that positions refer to. Without it
// only the message line is printed.
func WithSource(source string) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.source = source
	}
}

// WithIndent sets the prefix of the quoted source line. Defaults to three
// spaces.
func WithIndent(indent string) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.indent = indent
	}
}

// WithStyler decorates the message, source line and caret.
func WithStyler(styler Styler) TextFormatterOption {
	return func(tf *TextFormatter) {
		if styler != nil {
			tf.styler = styler
		}
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{indent: "   ", styler: plainStyler{}}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Positioned errors get the source line
// and a caret when source is known.
func (tf *TextFormatter) Format(err error) string {
	var diag *parser.Diagnostic
	if stderrors.As(err, &diag) {
		return tf.formatWithSource(err, diag.Error(), diag.Pos, diag.Token)
	}

	if e, ok := err.(interface {
		GetPosition() lexer.Position
		Error() string
	}); ok {
		return tf.formatWithSource(err, e.Error(), e.GetPosition(), "")
	}

	return tf.styler.Message(err, err.Error())
}

// FormatAll formats multiple errors, one block per error.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))
		if i < len(errs)-1 && !strings.HasSuffix(buf.String(), "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// formatWithSource prints the message, the source line containing pos and
// a caret underlining token.
func (tf *TextFormatter) formatWithSource(err error, message string, pos lexer.Position, token string) string {
	message = tf.styler.Message(err, message)
	line, pad, ok := SourceLine(tf.source, pos.Offset)
	if !ok {
		return message
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	buf.WriteByte('\n')
	buf.WriteString(tf.indent)
	buf.WriteString(tf.styler.Source(line))
	buf.WriteByte('\n')
	buf.WriteString(tf.indent)
	buf.WriteString(strings.Repeat(" ", pad))
	buf.WriteString(tf.styler.Caret(Caret(token)))
	buf.WriteByte('\n')
	return buf.String()
}

// SourceLine returns the line of source containing the byte offset and
// the display width of the text before offset on that line.
func SourceLine(source string, offset int) (line string, pad int, ok bool) {
	if source == "" || offset < 0 || offset > len(source) {
		return "", 0, false
	}

	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += offset
	}

	line = strings.TrimRight(source[start:end], "\r")
	return line, runewidth.StringWidth(source[start:offset]), true
}

// Caret returns the marker drawn under token: a caret followed by a tilde
// for every further display column.
func Caret(token string) string {
	width := runewidth.StringWidth(token)
	if width <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", width-1)
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Kind     string        `json:"kind"`
	Message  string        `json:"message"`
	Fatal    bool          `json:"fatal"`
	Token    string        `json:"token,omitempty"`
	Position *PositionJSON `json:"position,omitempty"`
}

// PositionJSON represents a source position in JSON format.
type PositionJSON struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	data, _ := json.Marshal(jf.toJSON(err))
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	data, _ := json.MarshalIndent(jf.FormatAllToSlice(errs), "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	var diag *parser.Diagnostic
	if stderrors.As(err, &diag) {
		return ErrorJSON{
			Kind:     diag.Kind.String(),
			Message:  diag.Message,
			Fatal:    diag.Kind.Fatal(),
			Token:    diag.Token,
			Position: positionJSON(diag.Pos),
		}
	}

	errJSON := ErrorJSON{
		Kind:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Fatal:   true,
	}
	if e, ok := err.(interface{ GetPosition() lexer.Position }); ok {
		errJSON.Position = positionJSON(e.GetPosition())
	}
	return errJSON
}

func positionJSON(pos lexer.Position) *PositionJSON {
	return &PositionJSON{
		Filename: pos.Filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Offset:   pos.Offset,
	}
}
