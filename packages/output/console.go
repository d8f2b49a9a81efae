package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/xunitspec/packages/events"
	"github.com/abdul-hamid-achik/xunitspec/packages/stats"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Symbols are the glyphs used in the console transcript
type Symbols struct {
	OK  string
	Err string
}

var (
	DefaultSymbols = Symbols{OK: "✓", Err: "✖"}
	ASCIISymbols   = Symbols{OK: "ok", Err: "x"}
)

// Presenter holds the console formatting helpers shared by reporters:
// colors, symbols, indentation, diffs and the epilogue.
type Presenter struct {
	noColor bool
	symbols Symbols

	pass    func(a ...any) string
	fail    func(a ...any) string
	pending func(a ...any) string
	suite   func(a ...any) string
	medium  func(a ...any) string
	slow    func(a ...any) string
	light   func(a ...any) string
	added   func(a ...any) string
	removed func(a ...any) string
}

type PresenterOption func(*Presenter)

func NewPresenter(opts ...PresenterOption) *Presenter {
	p := &Presenter{
		symbols: DefaultSymbols,
	}
	for _, opt := range opts {
		opt(p)
	}

	sprint := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if p.noColor {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	p.pass = sprint(color.FgGreen)
	p.fail = sprint(color.FgRed)
	p.pending = sprint(color.FgCyan)
	p.suite = sprint(color.Reset)
	p.medium = sprint(color.FgYellow)
	p.slow = sprint(color.FgRed)
	p.light = sprint(color.FgHiBlack)
	p.added = sprint(color.FgGreen)
	p.removed = sprint(color.FgRed)
	return p
}

func WithNoColor(nc bool) PresenterOption {
	return func(p *Presenter) {
		p.noColor = nc
	}
}

func WithSymbols(s Symbols) PresenterOption {
	return func(p *Presenter) {
		p.symbols = s
	}
}

// Indent returns the prefix for a line at the given suite depth. The root
// suite (depth 1) is flush left.
func (p *Presenter) Indent(depth int) string {
	if depth < 1 {
		return ""
	}
	return strings.Repeat("  ", depth-1)
}

func (p *Presenter) SuiteLine(depth int, title string) string {
	return p.Indent(depth) + p.suite(title)
}

func (p *Presenter) PassLine(depth int, t *events.Test) string {
	line := fmt.Sprintf("%s  %s %s", p.Indent(depth), p.pass(p.symbols.OK), p.light(t.Title))
	switch t.Speed() {
	case events.Medium:
		line += p.medium(fmt.Sprintf(" (%dms)", t.Elapsed().Milliseconds()))
	case events.Slow:
		line += p.slow(fmt.Sprintf(" (%dms)", t.Elapsed().Milliseconds()))
	}
	return line
}

func (p *Presenter) FailLine(depth, n int, t *events.Test) string {
	return fmt.Sprintf("%s  %s", p.Indent(depth), p.fail(fmt.Sprintf("%d) %s", n, t.Title)))
}

func (p *Presenter) PendingLine(depth int, t *events.Test) string {
	return fmt.Sprintf("%s  %s", p.Indent(depth), p.pending("- "+t.Title))
}

// FormatError renders a reporter or CLI error.
func (p *Presenter) FormatError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", p.fail(p.symbols.Err+" Error:"), err)
}

// UnifiedDiff returns a unified diff from actual to expected without file
// headers, or "" when they are equal.
func UnifiedDiff(actual, expected string) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       difflib.SplitLines(actual),
		B:       difflib.SplitLines(expected),
		Context: 3,
	})
	if err != nil || text == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	// drop the --- / +++ file header
	if len(lines) >= 2 && strings.HasPrefix(lines[0], "---") && strings.HasPrefix(lines[1], "+++") {
		lines = lines[2:]
	}
	return strings.Join(lines, "\n")
}

// Diff renders a colored diff with a legend, or "" when the values match.
// Hunk headers are omitted.
func (p *Presenter) Diff(actual, expected string) string {
	diff := UnifiedDiff(actual, expected)
	if diff == "" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.added("+ expected"), p.removed("- actual"))
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "@@") {
			continue
		}
		b.WriteByte('\n')
		switch {
		case strings.HasPrefix(line, "+"):
			b.WriteString(p.added(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(p.removed(line))
		default:
			b.WriteString(p.light(line))
		}
	}
	return b.String()
}

// FailedTest is a failure listed in the epilogue
type FailedTest struct {
	FullTitle string
	Failure   *events.Failure
}

// Epilogue is the end-of-run summary
type Epilogue struct {
	Passes   int
	Pending  int
	Failures int
	Duration time.Duration
	Failed   []FailedTest
	Timing   *stats.Summary
}

// WriteEpilogue prints the pass/pending/fail counts followed by the
// details of every failure.
func (p *Presenter) WriteEpilogue(w io.Writer, e Epilogue) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s %s\n", p.pass(fmt.Sprintf("%d passing", e.Passes)), p.light(fmt.Sprintf("(%s)", FormatDuration(e.Duration))))
	if e.Pending > 0 {
		fmt.Fprintf(w, "  %s\n", p.pending(fmt.Sprintf("%d pending", e.Pending)))
	}
	if e.Failures > 0 {
		fmt.Fprintf(w, "  %s\n", p.fail(fmt.Sprintf("%d failing", e.Failures)))
	}
	if e.Timing != nil && e.Timing.Count > 0 {
		fmt.Fprintf(w, "  %s\n", p.light(fmt.Sprintf("p50 %s, p95 %s, max %s",
			FormatDuration(e.Timing.P50), FormatDuration(e.Timing.P95), FormatDuration(e.Timing.Max))))
	}
	fmt.Fprintln(w)

	for i, ft := range e.Failed {
		p.writeFailure(w, i+1, ft)
	}
}

func (p *Presenter) writeFailure(w io.Writer, n int, ft FailedTest) {
	fmt.Fprintf(w, "  %d) %s:\n", n, ft.FullTitle)
	f := ft.Failure
	if f == nil {
		f = &events.Failure{}
	}
	msg := f.Message
	if msg == "" {
		msg = "Error"
	}
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(w, "     %s\n", p.fail(line))
	}
	if f.HasDiff() {
		if diff := p.Diff(*f.Actual, *f.Expected); diff != "" {
			for _, line := range strings.Split(diff, "\n") {
				if line == "" {
					fmt.Fprintln(w)
					continue
				}
				fmt.Fprintf(w, "     %s\n", line)
			}
		}
	}
	if f.Stack != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(strings.TrimRight(f.Stack, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", p.light(line))
		}
	}
	fmt.Fprintln(w)
}

// FormatDuration renders d as whole milliseconds, seconds or minutes.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	default:
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	}
}
