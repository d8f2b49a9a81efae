package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout renders the suite timestamp the way HTTP dates look.
const TimestampLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// XUnitSuite holds the attributes of the testsuite root element
type XUnitSuite struct {
	Name      string
	Tests     int
	Errors    int
	Skipped   int
	Timestamp time.Time
	Duration  time.Duration
}

// XUnitCase is one testcase element
type XUnitCase struct {
	ClassName string
	Name      string
	Duration  time.Duration
	Failure   *XUnitFailure
	Skipped   bool
}

// XUnitFailure is the body of a failure element
type XUnitFailure struct {
	Message string
	Diff    string
	Stack   string
}

// XUnitWriter streams a testsuite document tag by tag. It keeps no
// document in memory; callers emit cases in the order they should appear.
type XUnitWriter struct {
	w   io.Writer
	err error
}

func NewXUnitWriter(w io.Writer) *XUnitWriter {
	return &XUnitWriter{w: w}
}

// Err returns the first write error, if any. Later writes are skipped once
// an error occurred.
func (x *XUnitWriter) Err() error {
	return x.err
}

func (x *XUnitWriter) printf(format string, args ...any) {
	if x.err != nil {
		return
	}
	_, x.err = fmt.Fprintf(x.w, format, args...)
}

// WriteSuiteStart writes the XML declaration and the opening testsuite tag.
// failures is always 0: failed tests are reported as errors.
func (x *XUnitWriter) WriteSuiteStart(s XUnitSuite) {
	x.printf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	x.printf("%s\n", tag("testsuite", [][2]string{
		{"name", s.Name},
		{"tests", strconv.Itoa(s.Tests)},
		{"failures", "0"},
		{"errors", strconv.Itoa(s.Errors)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"timestamp", s.Timestamp.UTC().Format(TimestampLayout)},
		{"time", seconds(s.Duration)},
	}, false, ""))
}

func (x *XUnitWriter) WriteTestCase(c XUnitCase) {
	attrs := [][2]string{
		{"classname", c.ClassName},
		{"name", c.Name},
		{"time", seconds(c.Duration)},
	}

	switch {
	case c.Failure != nil:
		parts := []string{EscapeText(c.Failure.Message)}
		if c.Failure.Diff != "" {
			parts = append(parts, EscapeText(c.Failure.Diff))
		}
		parts = append(parts, EscapeText(c.Failure.Stack))
		failure := tag("failure", nil, false, strings.Join(parts, "\n"))
		x.printf("%s\n", tag("testcase", attrs, false, failure))
	case c.Skipped:
		x.printf("%s\n", tag("testcase", attrs, false, tag("skipped", nil, true, "")))
	default:
		x.printf("%s\n", tag("testcase", attrs, true, ""))
	}
}

func (x *XUnitWriter) WriteSuiteEnd() {
	x.printf("</testsuite>\n")
}

// tag renders an element. content must already be escaped; attribute
// values are escaped here.
func tag(name string, attrs [][2]string, selfClose bool, content string) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a[0])
		b.WriteString(`="`)
		b.WriteString(EscapeAttr(a[1]))
		b.WriteByte('"')
	}
	if selfClose {
		b.WriteString("/>")
		return b.String()
	}
	b.WriteByte('>')
	if content != "" {
		b.WriteString(content)
		b.WriteString("</")
		b.WriteString(name)
		b.WriteByte('>')
	}
	return b.String()
}

func seconds(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
