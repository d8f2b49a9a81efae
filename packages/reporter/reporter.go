// Package reporter renders test lifecycle events as a console transcript and
// an XUnit XML report.
package reporter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/xunitspec/packages/core/config"
	"github.com/abdul-hamid-achik/xunitspec/packages/events"
	"github.com/abdul-hamid-achik/xunitspec/packages/output"
	"github.com/abdul-hamid-achik/xunitspec/packages/stats"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSuiteName labels the testsuite element when no name is configured
const DefaultSuiteName = config.DefaultSuiteName

// Outcome is the final state of a test
type Outcome int

const (
	Passed Outcome = iota
	Failed
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Pending:
		return "pending"
	default:
		return "passed"
	}
}

// TestRecord is the outcome snapshot of one executed test
type TestRecord struct {
	Title     string
	ClassName string
	FullTitle string
	Duration  time.Duration
	Outcome   Outcome
	Failure   *events.Failure
}

// RunSummary holds the counters computed at run end
type RunSummary struct {
	Tests    int
	Passes   int
	Failures int
	Pending  int
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// ReportWriter listens to test events, prints an indented transcript to
// the console and writes an XUnit document when the run ends. Events must
// be delivered from a single goroutine.
type ReportWriter struct {
	suiteName  string
	outputPath string
	slow       time.Duration
	withStats  bool
	env        *config.Env

	console   io.Writer
	fallback  io.Writer
	presenter *output.Presenter
	clock     Clock
	fs        FileSystem
	log       logrus.FieldLogger

	file     io.WriteCloser
	buf      *bufio.Writer
	sink     io.Writer
	ownsSink io.Closer

	depth     int
	rooted    bool
	failures  int
	records   []TestRecord
	failed    []output.FailedTest
	durations *stats.Durations
	start     time.Time
	summary   RunSummary
	finished  bool
	closed    bool
	err       error
}

var _ events.Listener = (*ReportWriter)(nil)

type Option func(*ReportWriter)

// WithOutput sets the XML report path. XUNIT_FILE takes precedence.
func WithOutput(path string) Option {
	return func(r *ReportWriter) {
		r.outputPath = path
	}
}

func WithSuiteName(name string) Option {
	return func(r *ReportWriter) {
		r.suiteName = name
	}
}

// WithConfig applies the output path, suite name, slow threshold and
// presentation settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(r *ReportWriter) {
		if cfg == nil {
			return
		}
		if cfg.Output != "" {
			r.outputPath = cfg.Output
		}
		if cfg.SuiteName != "" {
			r.suiteName = cfg.SuiteName
		}
		if cfg.Slow > 0 {
			r.slow = cfg.Slow
		}
		r.withStats = cfg.GetStats()
		if r.presenter == nil && cfg.GetNoColor() {
			r.presenter = output.NewPresenter(output.WithNoColor(true))
		}
	}
}

// WithEnv replaces the process environment as the source of XUNIT_FILE.
func WithEnv(env config.Env) Option {
	return func(r *ReportWriter) {
		r.env = &env
	}
}

// WithConsole sets the transcript destination.
func WithConsole(w io.Writer) Option {
	return func(r *ReportWriter) {
		r.console = w
	}
}

// WithFallback sets where the XML goes when no output path is configured.
func WithFallback(w io.Writer) Option {
	return func(r *ReportWriter) {
		r.fallback = w
	}
}

func WithClock(c Clock) Option {
	return func(r *ReportWriter) {
		r.clock = c
	}
}

func WithPresenter(p *output.Presenter) Option {
	return func(r *ReportWriter) {
		r.presenter = p
	}
}

// WithFileSystem sets the file capability. A nil FileSystem marks the
// environment as unable to write files.
func WithFileSystem(fs FileSystem) Option {
	return func(r *ReportWriter) {
		r.fs = fs
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *ReportWriter) {
		r.log = l
	}
}

func WithStats(enabled bool) Option {
	return func(r *ReportWriter) {
		r.withStats = enabled
	}
}

// New builds a ReportWriter. When an output path resolves, its file is
// created immediately and owned until Close.
func New(opts ...Option) (*ReportWriter, error) {
	r := &ReportWriter{
		suiteName: DefaultSuiteName,
		slow:      config.DefaultSlow,
		console:   os.Stdout,
		clock:     SystemClock,
		fs:        defaultFileSystem(),
		log:       logrus.StandardLogger(),
		durations: stats.NewDurations(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.presenter == nil {
		r.presenter = output.NewPresenter()
	}
	if r.console == nil {
		r.console = io.Discard
	}
	r.log = r.log.WithField("run_id", uuid.NewString())

	env := r.env
	if env == nil {
		e, err := config.FromEnv()
		if err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
		env = &e
	}
	if env.Output != "" {
		r.outputPath = env.Output
	}

	if r.outputPath != "" {
		f, err := openFile(r.fs, r.outputPath)
		if err != nil {
			return nil, err
		}
		r.file = f
		r.buf = bufio.NewWriter(f)
		r.sink = r.buf
		r.log.WithField("path", r.outputPath).Debug("Opened report file")
	} else {
		r.sink = r.fallback
		if r.sink == nil {
			r.sink = r.defaultFallback()
		}
	}

	r.start = r.clock.Now()
	return r, nil
}

// defaultFallback is stdout, or the logger when stdout is unavailable.
func (r *ReportWriter) defaultFallback() io.Writer {
	if os.Stdout != nil {
		return os.Stdout
	}
	pw := logrus.StandardLogger().Writer()
	r.ownsSink = pw
	return pw
}

// OutputPath returns the resolved report path, or "" when writing to the
// fallback sink.
func (r *ReportWriter) OutputPath() string {
	if r.file == nil {
		return ""
	}
	return r.outputPath
}

func (r *ReportWriter) println(s string) {
	fmt.Fprintln(r.console, s)
}

func (r *ReportWriter) OnRunBegin() {
	r.start = r.clock.Now()
	r.println("")
}

func (r *ReportWriter) OnSuiteBegin(s *events.Suite) {
	if s.Root {
		r.rooted = true
	}
	r.depth++
	r.println(r.presenter.SuiteLine(r.depth, s.Title))
}

// OnSuiteEnd prints a separator once indentation is back at the top level:
// depth 1 under a root suite, or depth 0 when the engine reports none.
func (r *ReportWriter) OnSuiteEnd(*events.Suite) {
	r.depth--
	top := 0
	if r.rooted {
		top = 1
	}
	if r.depth == top {
		r.println("")
	}
}

func (r *ReportWriter) OnTestPass(t *events.Test) {
	t = r.withSlow(t)
	r.record(t, Passed, nil)
	r.println(r.presenter.PassLine(r.depth, t))
}

func (r *ReportWriter) OnTestFail(t *events.Test, f *events.Failure) {
	t = r.withSlow(t)
	r.failures++
	rec := r.record(t, Failed, f)
	r.failed = append(r.failed, output.FailedTest{FullTitle: rec.FullTitle, Failure: rec.Failure})
	r.println(r.presenter.FailLine(r.depth, r.failures, t))
}

func (r *ReportWriter) OnTestPending(t *events.Test) {
	r.record(t, Pending, nil)
	r.println(r.presenter.PendingLine(r.depth, t))
}

// withSlow applies the configured threshold without touching the engine's
// test value.
func (r *ReportWriter) withSlow(t *events.Test) *events.Test {
	if t.Slow > 0 {
		return t
	}
	c := *t
	c.Slow = r.slow
	return &c
}

// record snapshots t and f; later changes by the engine do not reach the
// report.
func (r *ReportWriter) record(t *events.Test, o Outcome, f *events.Failure) TestRecord {
	if o == Failed {
		f = copyFailure(f)
	}
	rec := TestRecord{
		Title:     t.Title,
		ClassName: t.ClassName(),
		FullTitle: t.FullTitle(),
		Duration:  t.Elapsed(),
		Outcome:   o,
		Failure:   f,
	}
	r.records = append(r.records, rec)
	if o != Pending {
		r.durations.Record(rec.Duration)
	}
	return rec
}

func copyFailure(f *events.Failure) *events.Failure {
	if f == nil {
		return &events.Failure{}
	}
	c := *f
	if f.Actual != nil {
		v := *f.Actual
		c.Actual = &v
	}
	if f.Expected != nil {
		v := *f.Expected
		c.Expected = &v
	}
	if f.ShowDiff != nil {
		v := *f.ShowDiff
		c.ShowDiff = &v
	}
	return &c
}

// OnRunEnd writes the XML document and prints the epilogue. Only the first
// run end is honored.
func (r *ReportWriter) OnRunEnd() {
	if r.finished {
		r.log.Warn("Ignoring repeated run end")
		return
	}
	r.finished = true

	end := r.clock.Now()
	s := RunSummary{
		Tests:    len(r.records),
		Failures: r.failures,
		Start:    r.start,
		End:      end,
		Duration: end.Sub(r.start),
	}
	if s.Duration < 0 {
		s.Duration = 0
	}
	for _, rec := range r.records {
		if rec.Outcome == Passed {
			s.Passes++
		}
	}
	s.Pending = s.Tests - s.Failures - s.Passes
	r.summary = s

	r.writeReport()

	e := output.Epilogue{
		Passes:   s.Passes,
		Pending:  s.Pending,
		Failures: s.Failures,
		Duration: s.Duration,
		Failed:   r.failed,
	}
	if r.withStats {
		timing := r.durations.Summary()
		e.Timing = &timing
	}
	r.presenter.WriteEpilogue(r.console, e)

	r.log.WithFields(logrus.Fields{
		"tests":    s.Tests,
		"failures": s.Failures,
		"pending":  s.Pending,
	}).Debug("Run finished")
}

func (r *ReportWriter) writeReport() {
	xw := output.NewXUnitWriter(r.sink)
	xw.WriteSuiteStart(output.XUnitSuite{
		Name:      r.suiteName,
		Tests:     r.summary.Tests,
		Errors:    r.summary.Failures,
		Skipped:   r.summary.Pending,
		Timestamp: r.summary.End,
		Duration:  r.summary.Duration,
	})
	for _, rec := range r.records {
		xw.WriteTestCase(toCase(rec))
	}
	xw.WriteSuiteEnd()

	if err := xw.Err(); err != nil {
		r.setErr(fmt.Errorf("writing report: %w", err))
		r.log.WithError(err).Error("Failed to write report")
	}
}

func toCase(rec TestRecord) output.XUnitCase {
	c := output.XUnitCase{
		ClassName: rec.ClassName,
		Name:      rec.Title,
		Duration:  rec.Duration,
	}
	switch rec.Outcome {
	case Failed:
		f := rec.Failure
		xf := &output.XUnitFailure{Message: f.Message, Stack: f.Stack}
		if f.HasDiff() {
			xf.Diff = output.UnifiedDiff(*f.Actual, *f.Expected)
		}
		c.Failure = xf
	case Pending:
		c.Skipped = true
	}
	return c
}

func (r *ReportWriter) setErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Records returns the tests seen so far, in arrival order.
func (r *ReportWriter) Records() []TestRecord {
	out := make([]TestRecord, len(r.records))
	copy(out, r.records)
	for i := range out {
		if out[i].Failure != nil {
			out[i].Failure = copyFailure(out[i].Failure)
		}
	}
	return out
}

// Summary returns the counters computed at run end.
func (r *ReportWriter) Summary() RunSummary {
	return r.summary
}

// Failures returns the number of failed tests so far.
func (r *ReportWriter) Failures() int {
	return r.failures
}

// Close flushes and closes the report file, if one was opened. It is safe
// to call more than once and returns the first write or close error.
func (r *ReportWriter) Close() error {
	if r.closed {
		return r.err
	}
	r.closed = true

	if r.ownsSink != nil {
		if err := r.ownsSink.Close(); err != nil {
			r.setErr(err)
		}
	}
	if r.file == nil {
		return r.err
	}

	if err := r.buf.Flush(); err != nil {
		r.setErr(fmt.Errorf("flushing report: %w", err))
	}
	if err := r.file.Close(); err != nil {
		r.setErr(fmt.Errorf("closing report: %w", err))
	}
	r.log.WithField("path", r.outputPath).Debug("Closed report file")
	return r.err
}

// Done closes the reporter and then calls fn with the failure count. fn
// runs only after the report file is fully written and closed.
func (r *ReportWriter) Done(failures int, fn func(failures int)) error {
	err := r.Close()
	if fn != nil {
		fn(failures)
	}
	return err
}
