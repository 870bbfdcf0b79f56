package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/datemath/output"
)

// slowStatement marks spans worth highlighting.
const slowStatement = 10 * time.Millisecond

// writeTree renders the span tree:
//
//	run dates.dm: 1.2ms
//	├─ 1: x = NOW / DAY: 84µs
//	└─ 2: x + 3DAYS: 61µs
func writeTree(w io.Writer, root *span, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatDuration(root.elapsed()))

	for i, child := range root.children {
		writeSpan(w, child, "", i == len(root.children)-1, styles)
	}
}

func writeSpan(w io.Writer, s *span, prefix string, last bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if last {
		branch, extension = "└─ ", "   "
	}

	d := s.elapsed()
	tree, timing := prefix+branch, formatDuration(d)
	if styles != nil {
		tree = styles.Dim(tree)
		timing = styles.Timing(timing, d >= slowStatement)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, s.name, timing)

	for i, child := range s.children {
		writeSpan(w, child, prefix+extension, i == len(s.children)-1, styles)
	}
}

func writeSummary(w io.Writer, sum Summary, styles *output.Styles) {
	noun := "statements"
	if sum.Count == 1 {
		noun = "statement"
	}
	line := fmt.Sprintf("%d %s in %s, slowest %q %s", sum.Count, noun, formatDuration(sum.Total), sum.Slowest, formatDuration(sum.Max))
	if styles != nil {
		line = styles.Dim(line)
	}
	_, _ = fmt.Fprintln(w, line)
}

// formatDuration shows microseconds below a millisecond, milliseconds
// below a second and seconds above.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
