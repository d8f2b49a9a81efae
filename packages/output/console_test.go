package output

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/xunitspec/packages/events"
	"github.com/abdul-hamid-achik/xunitspec/packages/stats"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func plainPresenter(opts ...PresenterOption) *Presenter {
	return NewPresenter(append([]PresenterOption{WithNoColor(true)}, opts...)...)
}

func TestPresenter_Indent(t *testing.T) {
	p := plainPresenter()
	assert.Equal(t, "", p.Indent(0))
	assert.Equal(t, "", p.Indent(1))
	assert.Equal(t, "  ", p.Indent(2))
	assert.Equal(t, "    ", p.Indent(3))
}

func TestPresenter_Lines(t *testing.T) {
	p := plainPresenter()
	suite := &events.Suite{Title: "A"}

	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{
			name:     "suite",
			line:     p.SuiteLine(2, "A"),
			expected: "  A",
		},
		{
			name:     "fast pass has no duration",
			line:     p.PassLine(2, &events.Test{Title: "t1", Parent: suite, Duration: 5 * time.Millisecond}),
			expected: "    ✓ t1",
		},
		{
			name:     "medium pass shows duration",
			line:     p.PassLine(2, &events.Test{Title: "t1", Parent: suite, Duration: 50 * time.Millisecond}),
			expected: "    ✓ t1 (50ms)",
		},
		{
			name:     "slow pass shows duration",
			line:     p.PassLine(2, &events.Test{Title: "t1", Parent: suite, Duration: 120 * time.Millisecond}),
			expected: "    ✓ t1 (120ms)",
		},
		{
			name:     "custom threshold keeps pass fast",
			line:     p.PassLine(1, &events.Test{Title: "t1", Duration: 120 * time.Millisecond, Slow: time.Second}),
			expected: "  ✓ t1",
		},
		{
			name:     "failure",
			line:     p.FailLine(2, 3, &events.Test{Title: "t2"}),
			expected: "    3) t2",
		},
		{
			name:     "pending",
			line:     p.PendingLine(3, &events.Test{Title: "t3"}),
			expected: "      - t3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.line)
		})
	}
}

func TestPresenter_ASCIISymbols(t *testing.T) {
	p := plainPresenter(WithSymbols(ASCIISymbols))
	assert.Equal(t, "  ok t1", p.PassLine(1, &events.Test{Title: "t1"}))
}

func TestPresenter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	plainPresenter().FormatError(&buf, errors.New("boom"))
	assert.Equal(t, "✖ Error: boom\n", buf.String())
}

func TestUnifiedDiff(t *testing.T) {
	assert.Equal(t, "", UnifiedDiff("same", "same"))
	assert.Equal(t, "@@ -1 +1 @@\n-foo\n+bar", UnifiedDiff("foo", "bar"))
	assert.Equal(t, "@@ -1,3 +1,3 @@\n a\n-b\n+B\n c", UnifiedDiff("a\nb\nc", "a\nB\nc"))
	// removed lines that look like headers are kept
	assert.Equal(t, "@@ -1 +1 @@\n---x\n+y", UnifiedDiff("--x", "y"))
}

func TestPresenter_Diff(t *testing.T) {
	p := plainPresenter()
	assert.Equal(t, "", p.Diff("x", "x"))
	assert.Equal(t, "+ expected - actual\n\n-foo\n+bar", p.Diff("foo", "bar"))
}

func TestPresenter_WriteEpilogue(t *testing.T) {
	var buf bytes.Buffer
	plainPresenter().WriteEpilogue(&buf, Epilogue{
		Passes:   1,
		Pending:  1,
		Failures: 1,
		Duration: 7 * time.Millisecond,
		Failed: []FailedTest{
			{FullTitle: "A t2", Failure: &events.Failure{Message: "x<y", Stack: "Error: x<y\n    at foo\n"}},
		},
	})

	expected := `
  1 passing (7ms)
  1 pending
  1 failing

  1) A t2:
     x<y

  Error: x<y
      at foo

`
	assert.Equal(t, expected, buf.String())
}

func TestPresenter_WriteEpilogue_AllPassing(t *testing.T) {
	var buf bytes.Buffer
	plainPresenter().WriteEpilogue(&buf, Epilogue{Passes: 4, Duration: 2 * time.Second})
	assert.Equal(t, "\n  4 passing (2s)\n\n", buf.String())
}

func TestPresenter_WriteEpilogue_Diff(t *testing.T) {
	var buf bytes.Buffer
	plainPresenter().WriteEpilogue(&buf, Epilogue{
		Failures: 1,
		Failed: []FailedTest{
			{FullTitle: "cmp", Failure: &events.Failure{Message: "not equal", Actual: strPtr("foo"), Expected: strPtr("bar")}},
		},
	})

	expected := `
  0 passing (0ms)
  1 failing

  1) cmp:
     not equal
     + expected - actual

     -foo
     +bar

`
	assert.Equal(t, expected, buf.String())
}

func TestPresenter_WriteEpilogue_Timing(t *testing.T) {
	var buf bytes.Buffer
	plainPresenter().WriteEpilogue(&buf, Epilogue{
		Passes: 2,
		Timing: &stats.Summary{Count: 2, P50: 5 * time.Millisecond, P95: 40 * time.Millisecond, Max: 40 * time.Millisecond},
	})
	assert.Equal(t, "\n  2 passing (0ms)\n  p50 5ms, p95 40ms, max 40ms\n\n", buf.String())
}

func TestPresenter_WriteEpilogue_EmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	plainPresenter().WriteEpilogue(&buf, Epilogue{
		Failures: 1,
		Failed:   []FailedTest{{FullTitle: "t"}},
	})
	assert.Contains(t, buf.String(), "  1) t:\n     Error\n\n")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0ms", FormatDuration(0))
	assert.Equal(t, "999ms", FormatDuration(999*time.Millisecond))
	assert.Equal(t, "1s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m", FormatDuration(150*time.Second))
}
