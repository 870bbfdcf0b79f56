package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/datemath/output"
)

// TimingCollector records spans as a tree. The first span started becomes
// the root; later spans nest under whichever span is innermost and open.
type TimingCollector struct {
	mu   sync.Mutex
	now  func() time.Time
	root *span
	open *span
}

type span struct {
	name     string
	start    time.Time
	end      time.Time
	parent   *span
	children []*span
}

func (s *span) elapsed() time.Duration {
	if s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start opens a span.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: c.now()}
	switch {
	case c.root == nil:
		c.root = s
	case c.open != nil:
		s.parent = c.open
		c.open.children = append(c.open.children, s)
	default:
		s.parent = c.root
		c.root.children = append(c.root.children, s)
	}
	c.open = s

	return &spanTimer{collector: c, span: s}
}

// Summary describes the spans directly under the root.
type Summary struct {
	Count   int
	Total   time.Duration
	Slowest string
	Max     time.Duration
}

// Summary returns statistics over the root's children, usually one per
// evaluated statement.
func (c *TimingCollector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summarize()
}

func (c *TimingCollector) summarize() Summary {
	var sum Summary
	if c.root == nil {
		return sum
	}
	for _, child := range c.root.children {
		d := child.elapsed()
		sum.Count++
		sum.Total += d
		if sum.Slowest == "" || d > sum.Max {
			sum.Slowest, sum.Max = child.name, d
		}
	}
	return sum
}

// Report writes the span tree followed by a summary line.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}

	writeTree(w, c.root, styles)
	if sum := c.summarize(); sum.Count > 0 {
		writeSummary(w, sum, styles)
	}
}

type spanTimer struct {
	collector *TimingCollector
	span      *span
}

func (t *spanTimer) End() {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	if !t.span.end.IsZero() {
		return
	}
	t.span.end = c.now()
	if c.open == t.span {
		c.open = t.span.parent
	}
}

func (t *spanTimer) Child(name string) Timer {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: c.now(), parent: t.span}
	t.span.children = append(t.span.children, s)
	c.open = s

	return &spanTimer{collector: c, span: s}
}
