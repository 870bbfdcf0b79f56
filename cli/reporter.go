package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/datemath/errors"
	"github.com/robinvdvleuten/datemath/output"
	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/session"
	"github.com/robinvdvleuten/datemath/value"
)

// CommandError signals that some statements failed. The diagnostics have
// already been printed; main only turns it into an exit code.
type CommandError struct {
	Failed   int
	exitCode int
}

// NewCommandError creates a CommandError for failed statements.
func NewCommandError(exitCode, failed int) *CommandError {
	return &CommandError{Failed: failed, exitCode: exitCode}
}

func (e *CommandError) Error() string {
	if e.Failed == 1 {
		return "1 statement failed"
	}
	return fmt.Sprintf("%d statements failed", e.Failed)
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// ValueJSON is a value in JSON output. Durations also carry their
// calendar part in months and their flat part in exact decimal seconds.
type ValueJSON struct {
	Kind    string           `json:"kind"`
	Value   string           `json:"value"`
	Months  int64            `json:"months,omitempty"`
	Seconds *decimal.Decimal `json:"seconds,omitempty"`
}

// StatementJSON is one evaluated statement in JSON output.
type StatementJSON struct {
	Statement   string             `json:"statement"`
	Line        int                `json:"line,omitempty"`
	Assigned    string             `json:"assigned,omitempty"`
	Result      *ValueJSON         `json:"result,omitempty"`
	Diagnostics []errors.ErrorJSON `json:"diagnostics,omitempty"`
}

func newValueJSON(v value.Value) *ValueJSON {
	out := &ValueJSON{Kind: v.Kind().String(), Value: v.String()}
	if v.Kind() == value.Duration {
		d := v.Duration()
		seconds := d.Seconds()
		out.Seconds = &seconds
		out.Months = d.Months
	}
	return out
}

// reporter writes statement results in the selected output format.
type reporter struct {
	stdout io.Writer
	stderr io.Writer
	json   bool
	styles *output.Styles
	failed int
}

func newReporter(ctx *kong.Context, globals *Globals) *reporter {
	return newReporterTo(ctx.Stdout, ctx.Stderr, globals)
}

func newReporterTo(stdout, stderr io.Writer, globals *Globals) *reporter {
	return &reporter{
		stdout: stdout,
		stderr: stderr,
		json:   globals.Format == "json",
		styles: output.NewStyles(stdout),
	}
}

// statement reports one evaluated statement. Values go to stdout and
// diagnostics to stderr; in JSON mode both go to stdout as one object per
// line.
func (r *reporter) statement(source string, line int, result parser.Result, err error) {
	if err != nil {
		r.failed++
	}
	diags := errors.Collect(result.Diagnostics, err)

	if r.json {
		out := StatementJSON{
			Statement:   source,
			Line:        line,
			Diagnostics: errors.NewJSONFormatter().FormatAllToSlice(diags),
		}
		if len(out.Diagnostics) == 0 {
			out.Diagnostics = nil
		}
		if err == nil {
			out.Assigned = result.Assigned
			out.Result = newValueJSON(result.Value)
		}
		r.encode(out)
		return
	}

	if len(diags) > 0 {
		_, _ = fmt.Fprintln(r.stderr, NewErrorRenderer(source).RenderAll(diags))
	}
	if err != nil {
		return
	}

	if result.Assigned != "" {
		_, _ = fmt.Fprintf(r.stdout, "%s = %s\n", r.styles.Name(result.Assigned), r.styles.Value(result.Value))
		return
	}
	_, _ = fmt.Fprintln(r.stdout, r.styles.Value(result.Value))
}

// environment lists the bindings of env, names aligned in one column.
func (r *reporter) environment(env *session.Environment) {
	names := env.Names()

	if r.json {
		bindings := make(map[string]*ValueJSON, len(names))
		for _, name := range names {
			v, _ := env.Lookup(name)
			bindings[name] = newValueJSON(v)
		}
		r.encode(map[string]any{"environment": bindings})
		return
	}

	if len(names) == 0 {
		printInfof(r.stdout, "No variables assigned")
		return
	}

	width := 0
	for _, name := range names {
		width = max(width, runewidth.StringWidth(name))
	}
	for _, name := range names {
		v, _ := env.Lookup(name)
		padding := strings.Repeat(" ", width-runewidth.StringWidth(name))
		_, _ = fmt.Fprintf(r.stdout, "%s%s = %s  %s\n",
			r.styles.Name(name), padding, r.styles.Value(v), r.styles.Kind(v.Kind()))
	}
}

// err returns a CommandError when any statement failed.
func (r *reporter) err() error {
	if r.failed == 0 {
		return nil
	}
	return NewCommandError(1, r.failed)
}

func (r *reporter) encode(v any) {
	enc := json.NewEncoder(r.stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
