package cli

import (
	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/session"
)

// EvalCmd evaluates statements given on the command line.
type EvalCmd struct {
	Statements []string `arg:"" help:"Statements to evaluate, in order, in one session."`
	ShowEnv    bool     `help:"Print the variable bindings after evaluating." short:"e"`

	clock session.Clock
}

// Run executes the eval command.
func (cmd *EvalCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry, err := globals.runContext(ctx, "eval")
	if err != nil {
		return err
	}
	defer reportTelemetry()

	sess := session.NewFromContext(runCtx, session.WithClock(cmd.clock))
	rep := newReporter(ctx, globals)

	for i, statement := range cmd.Statements {
		result, err := sess.EvaluateAt(runCtx, statement, i+1)
		if err != nil && !parser.IsFatal(err) {
			return err
		}
		rep.statement(statement, i+1, result, err)
	}

	if cmd.ShowEnv {
		rep.environment(sess.Environment())
	}

	return rep.err()
}
