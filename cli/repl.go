package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/session"
)

const prompt = "calc > "

const replHelp = `Enter a statement to evaluate it, for example:

  start = NOW / DAY
  start + 1MONTH - 1SECOND

Commands:
  :vars    list assigned variables
  :reset   remove every assigned variable
  :help    show this help
  :quit    leave the session (also :q, :exit or Ctrl-D)
`

// ReplCmd starts an interactive session. Statements are read one per line
// from stdin; variables persist until the session ends or is reset.
type ReplCmd struct {
	stdin io.Reader
	clock session.Clock
}

// Run executes the repl command.
func (cmd *ReplCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry, err := globals.runContext(ctx, "repl")
	if err != nil {
		return err
	}
	defer reportTelemetry()

	r := &repl{
		sess: session.NewFromContext(runCtx, session.WithClock(cmd.clock)),
		rep:  newReporter(ctx, globals),
		out:  ctx.Stdout,
	}

	if cmd.stdin == nil && isTerminal() {
		return r.runTerminal(runCtx)
	}

	in := cmd.stdin
	if in == nil {
		in = os.Stdin
	}
	return r.runLines(runCtx, in)
}

// repl holds the state of one interactive session.
type repl struct {
	sess *session.Session
	rep  *reporter
	out  io.Writer

	// confirm asks before destructive commands. Nil means yes.
	confirm func(question string) (bool, error)
	count   int
}

// runLines reads statements from a non-interactive reader.
func (r *repl) runLines(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		quit, err := r.handle(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return scanner.Err()
}

// runTerminal runs a line-editing session on the controlling terminal.
func (r *repl) runTerminal(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, state) }()

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	t := term.NewTerminal(screen, promptStyle.Render(prompt))

	r.out = t
	r.rep.stdout = t
	r.rep.stderr = t
	r.confirm = func(question string) (bool, error) {
		_ = term.Restore(fd, state)
		defer func() { _, _ = term.MakeRaw(fd) }()
		return promptYesNo(question)
	}

	_, _ = fmt.Fprintln(t, "Type :help for help, :quit to leave.")
	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := r.handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// handle processes one input line. It reports true when the session
// should end.
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if strings.HasPrefix(line, ":") {
		return r.meta(line)
	}

	r.count++
	result, err := r.sess.EvaluateAt(ctx, line, r.count)
	if err != nil && !parser.IsFatal(err) {
		return true, err
	}
	r.rep.statement(line, r.count, result, err)
	return false, nil
}

func (r *repl) meta(command string) (bool, error) {
	switch command {
	case ":quit", ":q", ":exit":
		return true, nil

	case ":vars":
		r.rep.environment(r.sess.Environment())

	case ":reset":
		n := r.sess.Environment().Len()
		if n > 0 && r.confirm != nil {
			ok, err := r.confirm(fmt.Sprintf("Remove %d assigned variable(s)?", n))
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		r.sess.Reset()
		printSuccess(r.out, "Session reset")

	case ":help":
		_, _ = fmt.Fprint(r.out, replHelp)

	default:
		printError(r.out, fmt.Sprintf("unknown command %s, type :help for help", command))
	}
	return false, nil
}
