package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/datemath/output"
	"github.com/robinvdvleuten/datemath/session"
	"github.com/robinvdvleuten/datemath/telemetry"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Semantics string `help:"Duration semantics for MONTH and YEAR (${enum})." enum:"calendar,fixed" default:"calendar" env:"DATEMATH_SEMANTICS"`
	Rounding  string `help:"Rounding of sub-day units by '/' (${enum})." enum:"midnight,exact" default:"midnight" env:"DATEMATH_ROUNDING"`
	Format    string `help:"Output format (${enum})." enum:"text,json" default:"text" short:"f"`
	Telemetry bool   `help:"Show timing telemetry for evaluated statements."`
}

type Commands struct {
	Globals

	Eval   EvalCmd   `cmd:"" help:"Evaluate statements in one session."`
	Repl   ReplCmd   `cmd:"" default:"1" help:"Start an interactive session."`
	Run    RunCmd    `cmd:"" help:"Evaluate a script, one statement per line."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging statements."`
}

// Config builds the session config from the global flags.
func (g *Globals) Config() (*session.Config, error) {
	return session.ConfigFromOptions(map[string]string{
		"semantics": g.Semantics,
		"rounding":  g.Rounding,
	})
}

// runContext returns a context carrying the session config and, with
// --telemetry, a timing collector. The returned function prints the
// telemetry report; it is safe to call more than once.
func (g *Globals) runContext(ctx *kong.Context, name string) (context.Context, func(), error) {
	cfg, err := g.Config()
	if err != nil {
		return nil, nil, err
	}
	runCtx := cfg.WithContext(context.Background())

	if !g.Telemetry {
		return runCtx, func() {}, nil
	}

	collector := telemetry.NewTimingCollector()
	runCtx = telemetry.WithCollector(runCtx, collector)
	timer := collector.Start(name)

	var once sync.Once
	report := func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr, output.NewStyles(ctx.Stderr))
		})
	}
	return runCtx, report, nil
}
