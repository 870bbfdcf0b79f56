package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/datemath/calendar"
	"github.com/robinvdvleuten/datemath/errors"
	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/session"
)

// DoctorCmd provides doctor utilities for debugging statements.
type DoctorCmd struct {
	Lex   LexCmd   `cmd:"" help:"Show lexical tokens of statements."`
	Units UnitsCmd `cmd:"" help:"Show the length of every unit under both semantics."`
}

// LexCmd shows lexical tokens of statements.
type LexCmd struct {
	Statements []string `arg:"" optional:"" help:"Statements to scan, one per line of output (read from stdin when omitted)."`
	Repr       bool     `help:"Dump complete token values."`

	stdin io.Reader
	clock session.Clock
}

// Run executes the lex command.
func (cmd *LexCmd) Run(ctx *kong.Context, globals *Globals) error {
	cfg, err := globals.Config()
	if err != nil {
		return err
	}

	statements := cmd.Statements
	if len(statements) == 0 {
		in := cmd.stdin
		if in == nil {
			in = os.Stdin
		}
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			statements = append(statements, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	}

	clock := cmd.clock
	if clock == nil {
		clock = session.SystemClock{}
	}

	table := calendar.NewTable(cfg.Semantics)
	for i, statement := range statements {
		lexer := parser.NewLexer(statement,
			parser.WithTable(table),
			parser.WithLine(i+1),
			parser.WithNow(clock.Now()),
		)

		for token := range lexer.Tokens() {
			// Skip EOF token for clean output
			if token.Type == parser.EOF {
				continue
			}

			if cmd.Repr {
				repr.New(ctx.Stdout, repr.OmitEmpty(true)).Println(token)
				continue
			}

			// Format: TYPE line:col "content"
			_, _ = fmt.Fprintf(ctx.Stdout, "%-10s %d:%d    %q\n",
				token.Type.String(),
				token.Pos.Line,
				token.Pos.Column,
				token.Text)
		}

		if diags := lexer.Diagnostics(); len(diags) > 0 {
			renderer := NewErrorRenderer(statement)
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(errors.Collect(diags, nil)))
		}
	}

	return nil
}

// UnitsCmd shows the length of every unit.
type UnitsCmd struct{}

// UnitJSON is one unit in JSON output.
type UnitJSON struct {
	Unit     string `json:"unit"`
	Calendar string `json:"calendar"`
	Fixed    string `json:"fixed"`
}

// Run executes the units command.
func (cmd *UnitsCmd) Run(ctx *kong.Context, globals *Globals) error {
	calendarTable := calendar.NewTable(calendar.CalendarRelative)
	fixedTable := calendar.NewTable(calendar.FixedRatio)

	rep := newReporter(ctx, globals)
	if rep.json {
		units := make([]UnitJSON, 0, len(calendar.Units))
		for _, u := range calendar.Units {
			units = append(units, UnitJSON{
				Unit:     u.String(),
				Calendar: calendarTable.Magnitude(u).String(),
				Fixed:    fixedTable.Magnitude(u).String(),
			})
		}
		rep.encode(map[string]any{"units": units})
		return nil
	}

	styles := rep.styles
	_, _ = fmt.Fprintf(ctx.Stdout, "%-12s %-12s %s\n", "UNIT", "CALENDAR", "FIXED")
	for _, u := range calendar.Units {
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %-12s %s\n",
			styles.Keyword(fmt.Sprintf("%-12s", u)),
			calendarTable.Magnitude(u),
			fixedTable.Magnitude(u))
	}
	return nil
}
