package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

// newSteppedCollector returns a collector whose clock advances by step on
// every reading.
func newSteppedCollector(step time.Duration) *TimingCollector {
	c := NewTimingCollector()
	now := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		now = now.Add(step)
		return now
	}
	return c
}

func TestNoOpCollector(t *testing.T) {
	collector := noOpCollector{}

	timer := collector.Start("test")
	timer.Child("child").End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	if buf.Len() != 0 {
		t.Errorf("NoOp collector should produce no output, got: %s", buf.String())
	}
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	collector := FromContext(context.Background())

	if collector == nil {
		t.Fatal("FromContext should never return nil")
	}
	if _, ok := collector.(noOpCollector); !ok {
		t.Errorf("FromContext should return noOpCollector when none present, got: %T", collector)
	}
}

func TestWithCollector(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	retrieved, ok := FromContext(ctx).(*TimingCollector)
	if !ok || retrieved != collector {
		t.Error("FromContext should return the same collector that was added")
	}
}

func TestStatementsNestUnderRoot(t *testing.T) {
	collector := newSteppedCollector(100 * time.Microsecond)

	run := collector.Start("run dates.dm")
	collector.Start("1: x = NOW").End()
	collector.Start("2: x + 1DAY").End()
	run.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	want := strings.Join([]string{
		"run dates.dm: 500µs",
		"├─ 1: x = NOW: 100µs",
		"└─ 2: x + 1DAY: 100µs",
		`2 statements in 200µs, slowest "1: x = NOW" 100µs`,
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("Report() =\n%s\nwant:\n%s", got, want)
	}
}

func TestStatementsAfterRootEnded(t *testing.T) {
	collector := newSteppedCollector(time.Millisecond)

	collector.Start("repl").End()
	collector.Start("1: NOW").End()

	sum := collector.Summary()
	if sum.Count != 1 {
		t.Fatalf("Summary().Count = %d, want 1", sum.Count)
	}
	if sum.Slowest != "1: NOW" {
		t.Errorf("Summary().Slowest = %q, want %q", sum.Slowest, "1: NOW")
	}
}

func TestChildTimers(t *testing.T) {
	collector := newSteppedCollector(time.Millisecond)

	t1 := collector.Start("Level 1")
	t2 := t1.Child("Level 2")
	t3 := t2.Child("Level 3")
	t3.End()
	t2.End()
	t1.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	var level3 string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Level 3") {
			level3 = line
		}
	}
	if !strings.HasPrefix(level3, "   └─ Level 3") {
		t.Errorf("Level 3 should be indented, got: %q", level3)
	}
}

func TestSlowestStatement(t *testing.T) {
	collector := NewTimingCollector()
	readings := []time.Duration{0, 1, 3, 4, 20, 21, 22, 30}
	base := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	collector.now = func() time.Time {
		d := readings[0]
		readings = readings[1:]
		return base.Add(d * time.Millisecond)
	}

	root := collector.Start("run")
	collector.Start("fast").End()
	collector.Start("slow").End()
	collector.Start("medium").End()
	root.End()

	sum := collector.Summary()
	if sum.Count != 3 || sum.Slowest != "slow" || sum.Max != 16*time.Millisecond {
		t.Errorf("Summary() = %+v", sum)
	}
	if sum.Total != 19*time.Millisecond {
		t.Errorf("Summary().Total = %v, want 19ms", sum.Total)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	collector := newSteppedCollector(time.Millisecond)

	timer := collector.Start("run")
	timer.End()
	timer.End()

	if got := collector.root.elapsed(); got != time.Millisecond {
		t.Errorf("elapsed = %v, want 1ms", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "0µs"},
		{250 * time.Microsecond, "250µs"},
		{1 * time.Millisecond, "1.0ms"},
		{12500 * time.Microsecond, "12.5ms"},
		{999 * time.Millisecond, "999.0ms"},
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.duration); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}

func TestEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewTimingCollector().Report(&buf, nil)

	if buf.Len() != 0 {
		t.Errorf("Empty collector should produce no output, got: %s", buf.String())
	}
}
