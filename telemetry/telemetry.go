// Package telemetry collects evaluation timings.
//
// A Collector travels through the context, so instrumented code does not
// need an extra parameter. Code that finds no collector in its context
// gets a no-op one.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	run := collector.Start("run dates.dm")
//	for i, line := range lines {
//		sess.EvaluateAt(ctx, line, i+1) // records one span per statement
//	}
//	run.End()
//
//	collector.Report(os.Stderr, styles)
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/datemath/output"
)

type contextKey struct{}

// Collector records timed spans.
type Collector interface {
	// Start opens a span under the innermost open span.
	Start(name string) Timer

	// Report writes the recorded spans. styles may be nil for plain text.
	Report(w io.Writer, styles *output.Styles)
}

// Timer is an open span.
type Timer interface {
	// End closes the span.
	End()

	// Child opens a span nested under this one.
	Child(name string) Timer
}

// WithCollector attaches a collector to ctx.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, contextKey{}, collector)
}

// FromContext returns the collector attached to ctx, or a collector that
// records nothing.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(contextKey{}).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
