// Package parser scans and evaluates datemath statements.
//
// Statements are evaluated while they are parsed; no syntax tree is kept.
//
// Grammar:
//
//	statement  → NAME '=' expression | expression
//	expression → expression ('+' | '-' | '/') expression
//	           | '-' expression
//	           | '(' expression ')'
//	           | NUMBER | NOW | DURATION | NAME
//
// Operator precedence (low to high):
//  1. + -  (left-associative)
//  2. /    (round, left-associative)
//  3. -    (unary, binds tightest)
//
// Rounding binds tighter than addition, so "x + 1 / DAY" is "x + (1 / DAY)".
package parser

import (
	"errors"
	"time"

	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/datemath/calendar"
	"github.com/robinvdvleuten/datemath/value"
)

// Scope resolves and binds identifiers for a statement.
type Scope interface {
	Lookup(name string) (value.Value, bool)
	Assign(name string, v value.Value)
}

// Result is the outcome of a successfully evaluated statement.
type Result struct {
	Value value.Value
	// Assigned is the bound name for assignments, empty otherwise.
	Assigned string
	// Diagnostics holds recovered problems in source order.
	Diagnostics []*Diagnostic
}

// Option configures evaluation.
type Option func(*options)

type options struct {
	lexer []LexerOption
	rules value.Rules
}

// WithSemantics selects how duration literals are resolved.
func WithSemantics(s calendar.Semantics) Option {
	return func(o *options) {
		o.lexer = append(o.lexer, WithTable(calendar.NewTable(s)))
	}
}

// WithRounding selects how sub-day units are rounded by '/'.
func WithRounding(m calendar.RoundingMode) Option {
	return func(o *options) {
		o.rules.Rounding = m
	}
}

// WithClock fixes the instant NOW resolves to. Its location is also used
// for integers rounded as Unix seconds.
func WithClock(now time.Time) Option {
	return func(o *options) {
		o.lexer = append(o.lexer, WithNow(now))
		o.rules.Location = now.Location()
	}
}

// WithSourceName sets the filename reported in diagnostics.
func WithSourceName(name string) Option {
	return func(o *options) {
		o.lexer = append(o.lexer, WithFilename(name))
	}
}

// WithSourceLine sets the line number reported for the statement, for
// statements read from a script.
func WithSourceLine(line int) Option {
	return func(o *options) {
		o.lexer = append(o.lexer, WithLine(line))
	}
}

// Evaluate parses and evaluates one statement against scope. A syntax or
// semantic error aborts the statement and is returned as a *Diagnostic;
// scope is only written when the whole statement succeeds. Diagnostics
// recovered before the failure are still returned in the Result.
func Evaluate(source string, scope Scope, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &Parser{
		lex:   NewLexer(source, o.lexer...),
		scope: scope,
		rules: o.rules,
	}

	return p.parseStatement()
}

// Parser evaluates a token stream with precedence climbing.
type Parser struct {
	lex         *Lexer
	ahead       []Token
	drained     int
	scope       Scope
	rules       value.Rules
	diagnostics []*Diagnostic
}

func (p *Parser) parseStatement() (Result, error) {
	var name string
	if p.peek().Type == NAME && p.peekAhead(1).Type == EQUALS {
		name = p.advance().Text
		p.advance() // consume '='
	}

	v, err := p.parseExpr(0)
	if err != nil {
		return Result{Diagnostics: p.sortedDiagnostics()}, err
	}

	if tok := p.peek(); tok.Type != EOF {
		return Result{Diagnostics: p.sortedDiagnostics()}, p.errorAtToken(SyntaxError, tok, "unexpected token %s", tok.describe())
	}

	if name != "" {
		p.scope.Assign(name, v)
	}

	return Result{Value: v, Assigned: name, Diagnostics: p.sortedDiagnostics()}, nil
}

// parseExpr is the precedence-climbing core.
func (p *Parser) parseExpr(minPrec int) (value.Value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return value.Value{}, err
	}

	for {
		opTok := p.peek()
		op, prec, ok := binaryOp(opTok.Type)
		if !ok || prec < minPrec {
			break
		}

		p.advance() // consume operator

		// All binary operators are left-associative.
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return value.Value{}, err
		}

		left, err = p.rules.Apply(op, left, right)
		if err != nil {
			return value.Value{}, p.semanticError(opTok, err)
		}
	}

	return left, nil
}

// parseUnary handles prefix minus, which binds tighter than any binary
// operator.
func (p *Parser) parseUnary() (value.Value, error) {
	if p.peek().Type != MINUS {
		return p.parsePrimary()
	}

	minusTok := p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return value.Value{}, err
	}

	v, err := value.Neg(operand)
	if err != nil {
		return value.Value{}, p.semanticError(minusTok, err)
	}
	return v, nil
}

func (p *Parser) parsePrimary() (value.Value, error) {
	tok := p.peek()

	switch tok.Type {
	case NUMBER:
		p.advance()
		return value.Int(tok.Number), nil

	case NOW:
		p.advance()
		return value.Time(tok.Time), nil

	case DURATION:
		p.advance()
		if tok.Bare {
			return value.Unit(tok.Unit), nil
		}
		return value.Dur(tok.Duration), nil

	case NAME:
		p.advance()
		if v, ok := p.scope.Lookup(tok.Text); ok {
			return v, nil
		}
		p.report(newDiagnostic(UnboundName, tok.Pos, tok.Text, "%q is not assigned", tok.Text))
		return value.Int(0), nil

	case LPAREN:
		p.advance() // consume '('
		v, err := p.parseExpr(0)
		if err != nil {
			return value.Value{}, err
		}
		if closing := p.peek(); closing.Type != RPAREN {
			return value.Value{}, p.errorAtToken(SyntaxError, closing, "expected ')', got %s", closing.describe())
		}
		p.advance() // consume ')'
		return v, nil

	case EOF:
		return value.Value{}, p.errorAtToken(SyntaxError, tok, "unexpected end of input")
	}

	return value.Value{}, p.errorAtToken(SyntaxError, tok, "unexpected token %s", tok.describe())
}

// binaryOp maps a token to its operator and binding power.
func binaryOp(t TokenType) (value.Op, int, bool) {
	switch t {
	case PLUS:
		return value.OpAdd, 1, true
	case MINUS:
		return value.OpSub, 1, true
	case ROUND:
		return value.OpRound, 2, true
	default:
		return 0, 0, false
	}
}

// Token stream helpers

func (p *Parser) fill(n int) {
	for len(p.ahead) <= n {
		p.ahead = append(p.ahead, p.lex.Next())
		p.drain()
	}
}

// drain moves newly recovered lexer diagnostics into the statement's list.
func (p *Parser) drain() {
	diags := p.lex.Diagnostics()
	for ; p.drained < len(diags); p.drained++ {
		p.report(diags[p.drained])
	}
}

func (p *Parser) peek() Token {
	return p.peekAhead(0)
}

func (p *Parser) peekAhead(n int) Token {
	p.fill(n)
	return p.ahead[n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Type != EOF {
		p.ahead = p.ahead[1:]
	}
	return tok
}

func (p *Parser) report(d *Diagnostic) {
	p.diagnostics = append(p.diagnostics, d)
}

// sortedDiagnostics orders diagnostics by source offset. Lookahead can
// scan past a token before the parser reports on it.
func (p *Parser) sortedDiagnostics() []*Diagnostic {
	slices.SortStableFunc(p.diagnostics, func(a, b *Diagnostic) int {
		return a.Pos.Offset - b.Pos.Offset
	})
	return p.diagnostics
}

func (p *Parser) errorAtToken(kind Kind, tok Token, format string, args ...any) *Diagnostic {
	return newDiagnostic(kind, tok.Pos, tok.Text, format, args...)
}

func (p *Parser) semanticError(tok Token, err error) *Diagnostic {
	d := newDiagnostic(SemanticError, tok.Pos, tok.Text, "%v", err)
	d.Underlying = err
	return d
}

// IsFatal reports whether err is a diagnostic that aborted a statement.
func IsFatal(err error) bool {
	var d *Diagnostic
	return errors.As(err, &d) && d.Kind.Fatal()
}
