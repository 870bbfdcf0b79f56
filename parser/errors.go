package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	// LexError is an illegal character; the lexer skips it.
	LexError Kind = iota
	// NumericOverflow is an integer literal outside the int64 range; it is
	// replaced by zero.
	NumericOverflow
	// UnboundName is a reference to an unassigned identifier; it evaluates
	// to integer zero.
	UnboundName
	// SyntaxError aborts the statement.
	SyntaxError
	// SemanticError is an operator applied to unsupported operands. It
	// aborts the statement.
	SemanticError
)

var kindNames = map[Kind]string{
	LexError:        "illegal character",
	NumericOverflow: "numeric overflow",
	UnboundName:     "undefined name",
	SyntaxError:     "syntax error",
	SemanticError:   "semantic error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "error"
}

// Fatal reports whether a diagnostic of this kind aborts the statement.
func (k Kind) Fatal() bool {
	return k == SyntaxError || k == SemanticError
}

// Diagnostic is a problem found while evaluating a statement. Recoverable
// diagnostics are collected in Result.Diagnostics; fatal ones are returned
// as the error of Evaluate.
type Diagnostic struct {
	Kind       Kind
	Pos        lexer.Position
	Token      string // Offending token text, if any
	Message    string
	Underlying error
}

func newDiagnostic(kind Kind, pos lexer.Position, token, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Pos:     pos,
		Token:   token,
		Message: fmt.Sprintf(format, args...),
	}
}

func (d *Diagnostic) Error() string {
	location := fmt.Sprintf("%s:%d:%d", d.Pos.Filename, d.Pos.Line, d.Pos.Column)
	if d.Pos.Filename == "" {
		location = fmt.Sprintf("%d:%d", d.Pos.Line, d.Pos.Column)
	}

	return fmt.Sprintf("%s: %s: %s", location, d.Kind, d.Message)
}

// GetPosition returns the position of the offending token.
func (d *Diagnostic) GetPosition() lexer.Position {
	return d.Pos
}

func (d *Diagnostic) Unwrap() error {
	return d.Underlying
}
