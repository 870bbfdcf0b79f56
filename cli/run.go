package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fsnotify/fsnotify"

	"github.com/robinvdvleuten/datemath/parser"
	"github.com/robinvdvleuten/datemath/session"
)

// Editors often write a file in several steps.
const debounceDelay = 100 * time.Millisecond

// RunCmd evaluates a script in one session. Blank lines and lines starting
// with '#' are skipped.
type RunCmd struct {
	File  FileOrStdin `help:"Script filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Watch bool        `help:"Evaluate the script again whenever it changes." short:"w"`

	clock session.Clock
}

// Run executes the run command.
func (cmd *RunCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}
	if cmd.Watch && cmd.File.IsStdin() {
		return fmt.Errorf("--watch needs a script file, not stdin")
	}

	name := "run"
	if !cmd.File.IsStdin() {
		name = fmt.Sprintf("run %s", filepath.Base(cmd.File.Filename))
	}
	runCtx, reportTelemetry, err := globals.runContext(ctx, name)
	if err != nil {
		return err
	}
	defer reportTelemetry()

	err = cmd.evaluate(runCtx, newReporter(ctx, globals), ctx.Stderr)
	if !cmd.Watch {
		return err
	}
	if _, ok := err.(*CommandError); err != nil && !ok {
		return err
	}

	watchCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	watcher, err := newScriptWatcher(cmd.File.Filename)
	if err != nil {
		return err
	}
	printInfof(ctx.Stderr, "Watching %s for changes, press Ctrl-C to stop", pathStyle.Render(cmd.File.Filename))

	var mu sync.Mutex
	runScriptWatcher(watchCtx, watcher, cmd.File.Filename, func() {
		mu.Lock()
		defer mu.Unlock()

		if err := cmd.File.Reload(); err != nil {
			log.Printf("Failed to reload script: %v", err)
			return
		}
		_, _ = fmt.Fprintln(ctx.Stderr)
		printInfof(ctx.Stderr, "%s changed", pathStyle.Render(cmd.File.Filename))
		if err := cmd.evaluate(runCtx, newReporter(ctx, globals), ctx.Stderr); err != nil {
			if _, ok := err.(*CommandError); !ok {
				log.Printf("Failed to evaluate script: %v", err)
			}
		}
	})
	return nil
}

// evaluate runs every statement of the script in a fresh session.
func (cmd *RunCmd) evaluate(ctx context.Context, rep *reporter, stderr io.Writer) error {
	sess := session.NewFromContext(ctx,
		session.WithClock(cmd.clock),
		session.WithSourceName(cmd.File.Filename),
	)

	count := 0
	for i, line := range strings.Split(string(cmd.File.Contents), "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		count++
		result, err := sess.EvaluateAt(ctx, line, i+1)
		if err != nil && !parser.IsFatal(err) {
			return err
		}
		rep.statement(line, i+1, result, err)
	}

	if !rep.json {
		switch {
		case rep.failed > 0:
			printError(stderr, fmt.Sprintf("%d of %d statements failed", rep.failed, count))
		case count == 1:
			printSuccess(stderr, "1 statement evaluated")
		default:
			printSuccess(stderr, fmt.Sprintf("%d statements evaluated", count))
		}
	}

	return rep.err()
}

// newScriptWatcher creates a watcher for filename.
func newScriptWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filename); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filename, err)
	}
	return watcher, nil
}

// runScriptWatcher calls rerun after filename changes, debounced, until ctx
// is done. It closes the watcher before returning.
func runScriptWatcher(ctx context.Context, watcher *fsnotify.Watcher, filename string, rerun func()) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				// Atomic saves replace the file, which drops the watch.
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					if err := watcher.Add(filename); err != nil {
						log.Printf("Warning: failed to watch %s: %v", filename, err)
					}
				}
				rerun()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}
