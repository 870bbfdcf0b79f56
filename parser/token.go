package parser

import (
	"fmt"
	"time"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/robinvdvleuten/datemath/calendar"
)

// TokenType represents the type of token scanned from the input.
type TokenType uint8

const (
	// Special tokens
	EOF TokenType = iota

	// Literals
	NAME     // x, start_of_week
	NUMBER   // 42
	NOW      // NOW
	DURATION // 3DAYS, MONTH

	// Symbols
	PLUS   // +
	MINUS  // -
	ROUND  // /
	EQUALS // =
	LPAREN // (
	RPAREN // )
)

var tokenNames = map[TokenType]string{
	EOF: "EOF",

	NAME:     "NAME",
	NUMBER:   "NUMBER",
	NOW:      "NOW",
	DURATION: "DURATION",

	PLUS:   "+",
	MINUS:  "-",
	ROUND:  "/",
	EQUALS: "=",
	LPAREN: "(",
	RPAREN: ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a lexical token. Literal tokens carry their resolved payload:
// NUMBER sets Number, NOW sets Time and DURATION sets Unit plus either
// Duration (when a count preceded the unit) or Bare.
type Token struct {
	Type TokenType
	Text string
	Pos  lexer.Position

	Number   int64
	Time     time.Time
	Unit     calendar.Unit
	Duration calendar.Duration
	Bare     bool
}

// String returns a debug representation: TYPE line:col "text".
func (t Token) String() string {
	return fmt.Sprintf("%s %d:%d %q", t.Type, t.Pos.Line, t.Pos.Column, t.Text)
}

// describe names the token for diagnostics.
func (t Token) describe() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text)
}
