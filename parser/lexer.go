package parser

// The lexer scans one statement lazily: the parser pulls tokens with Next
// as it evaluates. Scanning never aborts; illegal characters and oversized
// integers are recorded as diagnostics and skipped or replaced by zero.

import (
	"iter"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/robinvdvleuten/datemath/calendar"
)

// Lexer tokenizes datemath source.
type Lexer struct {
	source      string
	filename    string
	pos         int // Current byte position
	line        int // Current line (1-indexed)
	column      int // Current column (1-indexed)
	table       calendar.Table
	now         time.Time
	diagnostics []*Diagnostic
}

// LexerOption configures a Lexer.
type LexerOption func(*Lexer)

// WithFilename sets the filename reported in token positions.
func WithFilename(name string) LexerOption {
	return func(l *Lexer) {
		l.filename = name
	}
}

// WithLine sets the line number of the first source line.
func WithLine(line int) LexerOption {
	return func(l *Lexer) {
		if line > 0 {
			l.line = line
		}
	}
}

// WithTable sets the unit table used to resolve duration literals.
func WithTable(t calendar.Table) LexerOption {
	return func(l *Lexer) {
		l.table = t
	}
}

// WithNow sets the instant every NOW token resolves to.
func WithNow(now time.Time) LexerOption {
	return func(l *Lexer) {
		l.now = now
	}
}

// NewLexer creates a lexer for source. Unless WithNow is given, NOW is the
// moment the lexer was created.
func NewLexer(source string, opts ...LexerOption) *Lexer {
	l := &Lexer{
		source: source,
		line:   1,
		column: 1,
		table:  calendar.NewTable(calendar.CalendarRelative),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.now.IsZero() {
		l.now = time.Now()
	}
	return l
}

// Diagnostics returns the problems recovered from so far.
func (l *Lexer) Diagnostics() []*Diagnostic {
	return l.diagnostics
}

// Tokens returns the remaining tokens as a lazy sequence, ending with EOF.
func (l *Lexer) Tokens() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Type == EOF {
				return
			}
		}
	}
}

// ScanAll lexes the remaining input and returns all tokens, ending with EOF.
func (l *Lexer) ScanAll() []Token {
	var tokens []Token
	for tok := range l.Tokens() {
		tokens = append(tokens, tok)
	}
	return tokens
}

// Next scans the next token. After the end of input it keeps returning EOF.
func (l *Lexer) Next() Token {
	for {
		l.skipWhitespace()

		if l.pos >= len(l.source) {
			return Token{Type: EOF, Pos: l.position()}
		}

		if tok, ok := l.scanToken(); ok {
			return tok
		}
	}
}

// scanToken scans a token at the current position. It reports false when
// the character was illegal and has been skipped.
func (l *Lexer) scanToken() (Token, bool) {
	start := l.pos
	pos := l.position()
	ch := l.peek()

	switch {
	case isDigit(ch):
		return l.scanNumberOrDuration(start, pos), true
	case isWordStart(ch):
		return l.scanWord(start, pos), true
	}

	l.advance()
	switch ch {
	case '+':
		return Token{Type: PLUS, Text: "+", Pos: pos}, true
	case '-':
		return Token{Type: MINUS, Text: "-", Pos: pos}, true
	case '/':
		return Token{Type: ROUND, Text: "/", Pos: pos}, true
	case '=':
		return Token{Type: EQUALS, Text: "=", Pos: pos}, true
	case '(':
		return Token{Type: LPAREN, Text: "(", Pos: pos}, true
	case ')':
		return Token{Type: RPAREN, Text: ")", Pos: pos}, true
	}

	// Skip the whole rune so a multi-byte character is one diagnostic.
	_, size := utf8.DecodeRuneInString(l.source[start:])
	for l.pos < start+size {
		l.pos++
	}
	text := l.source[start:l.pos]
	l.report(LexError, pos, text, "%q skipped", text)
	return Token{}, false
}

// scanNumberOrDuration scans [0-9]+ and, when a unit keyword follows
// directly, the whole duration literal such as 5DAYS.
func (l *Lexer) scanNumberOrDuration(start int, pos lexer.Position) Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	digits := l.source[start:l.pos]

	if isWordStart(l.peek()) {
		wordEnd := l.wordEnd(l.pos)
		if unit, ok := calendar.LookupUnit(l.source[l.pos:wordEnd]); ok {
			for l.pos < wordEnd {
				l.advance()
			}
			text := l.source[start:l.pos]
			return Token{
				Type:     DURATION,
				Text:     text,
				Pos:      pos,
				Unit:     unit,
				Duration: l.resolveDuration(digits, unit, text, pos),
			}
		}
	}

	return Token{
		Type:   NUMBER,
		Text:   digits,
		Pos:    pos,
		Number: l.parseInt(digits, pos),
	}
}

// scanWord scans an identifier, the NOW literal or a bare unit name.
func (l *Lexer) scanWord(start int, pos lexer.Position) Token {
	end := l.wordEnd(start)
	for l.pos < end {
		l.advance()
	}
	word := l.source[start:end]

	if word == "NOW" {
		return Token{Type: NOW, Text: word, Pos: pos, Time: l.now}
	}
	if unit, ok := calendar.LookupUnit(word); ok {
		return Token{Type: DURATION, Text: word, Pos: pos, Unit: unit, Bare: true}
	}
	return Token{Type: NAME, Text: word, Pos: pos}
}

func (l *Lexer) resolveDuration(digits string, unit calendar.Unit, text string, pos lexer.Position) calendar.Duration {
	count := l.parseInt(digits, pos)
	d, err := l.table.Duration(count, unit)
	if err != nil {
		l.report(NumericOverflow, pos, text, "duration %s is too large", text)
		return calendar.Duration{}
	}
	return d
}

func (l *Lexer) parseInt(digits string, pos lexer.Position) int64 {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		l.report(NumericOverflow, pos, digits, "integer value too large %s", digits)
		return 0
	}
	return n
}

func (l *Lexer) report(kind Kind, pos lexer.Position, text, format string, args ...any) {
	l.diagnostics = append(l.diagnostics, newDiagnostic(kind, pos, text, format, args...))
}

// wordEnd returns the end of the [A-Za-z0-9_]* run starting at from.
func (l *Lexer) wordEnd(from int) int {
	end := from
	for end < len(l.source) && isWordContinue(l.source[end]) {
		end++
	}
	return end
}

// skipWhitespace skips blanks and counts newlines.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		ch := l.source[l.pos]
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			break
		}
		l.advance()
	}
}

func (l *Lexer) position() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

// Helper methods

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isWordContinue(ch byte) bool {
	return isWordStart(ch) || isDigit(ch)
}
