package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/xunitspec/packages/core/config"
	"github.com/abdul-hamid-achik/xunitspec/packages/events"
	"github.com/abdul-hamid-achik/xunitspec/packages/output"
	"github.com/abdul-hamid-achik/xunitspec/packages/reporter"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [file|-]",
	Short: "Render a test event stream as a transcript and XUnit XML",
	Long: `Replay a JSON-lines stream of test events through the reporter.
Each line is one event object, for example:

  {"event":"suite","title":"users"}
  {"event":"pass","title":"creates a user","duration":12}
  {"event":"fail","title":"deletes a user","err":{"message":"expected 204","stack":"..."}}
  {"event":"suite end"}
  {"event":"end"}

The stream is read from stdin when no file or "-" is given.

Examples:
  xunitspec report events.jsonl -o reports/xunit.xml
  my-runner --events | xunitspec report --suite-name "API Tests"
  XUNIT_FILE=out.xml xunitspec report events.jsonl
  xunitspec report events.jsonl -o out.xml --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: reportCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	outputFlag    string
	suiteNameFlag string
	configFlag    string
	noColorFlag   bool
	asciiFlag     bool
	slowFlag      string
	statsFlag     bool
	watchFlag     bool
)

func init() {
	reportCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "XUnit report path; XUNIT_FILE takes precedence (default: stdout)")
	reportCmd.Flags().StringVar(&suiteNameFlag, "suite-name", "", "Name of the testsuite element (env: XUNIT_SUITE_NAME)")
	reportCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file")
	reportCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output (env: XUNIT_NO_COLOR)")
	reportCmd.Flags().BoolVar(&asciiFlag, "ascii", false, "Use ASCII symbols instead of check marks")
	reportCmd.Flags().StringVar(&slowFlag, "slow", "", "Duration above which tests are reported as slow (e.g., 75ms, 1s)")
	reportCmd.Flags().BoolVar(&statsFlag, "stats", false, "Print duration percentiles in the summary")
	reportCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch the event file and re-render on change")
}

// flagConfig returns the settings given explicitly on the command line.
func flagConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{
		Output:    outputFlag,
		SuiteName: suiteNameFlag,
	}
	if cmd.Flags().Changed("no-color") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
	if cmd.Flags().Changed("stats") {
		cfg.Stats = config.BoolPtr(statsFlag)
	}
	if slowFlag != "" {
		slow, err := time.ParseDuration(slowFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid slow value %q: %w (use format like 75ms, 1s)", slowFlag, err)
		}
		cfg.Slow = slow
	}
	return cfg, nil
}

func reportCommand(cmd *cobra.Command, args []string) error {
	flags, err := flagConfig(cmd)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("loading config: %w", err)}
	}

	env, err := config.FromEnv()
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("reading environment: %w", err)}
	}

	cfg := config.Resolve(fileConfig, env, flags)

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchFlag {
		if path == "-" {
			return &ExitError{Code: ExitUsageError, Err: fmt.Errorf("--watch needs an event file, not stdin")}
		}
		return watchStream(ctx, cmd, path, cfg, env)
	}

	failures, err := replayPath(ctx, cmd, path, cfg, env)
	if err != nil {
		return err
	}
	if failures > 0 {
		return &ExitError{Code: ExitTestFailure}
	}
	return nil
}

func newPresenter(cfg *config.Config) *output.Presenter {
	opts := []output.PresenterOption{output.WithNoColor(cfg.GetNoColor())}
	if asciiFlag {
		opts = append(opts, output.WithSymbols(output.ASCIISymbols))
	}
	return output.NewPresenter(opts...)
}

func replayPath(ctx context.Context, cmd *cobra.Command, path string, cfg *config.Config, env config.Env) (int, error) {
	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return 0, &ExitError{Code: ExitUsageError, Err: fmt.Errorf("cannot open event stream: %w", err)}
		}
		defer f.Close()
		in = f
	}
	return replay(ctx, cmd, in, cfg, env)
}

// replay runs one event stream through a fresh reporter and returns the
// failure count once the report is closed.
func replay(ctx context.Context, cmd *cobra.Command, in io.Reader, cfg *config.Config, env config.Env) (int, error) {
	presenter := newPresenter(cfg)
	rw, err := reporter.New(
		reporter.WithConfig(cfg),
		reporter.WithEnv(env),
		reporter.WithPresenter(presenter),
		reporter.WithConsole(cmd.OutOrStdout()),
		reporter.WithFallback(cmd.OutOrStdout()),
	)
	if err != nil {
		return 0, &ExitError{Code: ExitConfigError, Err: err}
	}

	emitter := events.NewEmitter()
	sub := emitter.Subscribe(rw)
	replayErr := events.Replay(ctx, events.NewDecoder(in), emitter)
	emitter.Unsubscribe(sub)

	var failures int
	closeErr := rw.Done(rw.Failures(), func(n int) {
		failures = n
	})

	if replayErr != nil {
		presenter.FormatError(cmd.ErrOrStderr(), replayErr)
		return failures, &ExitError{Code: ExitParseError}
	}
	if closeErr != nil {
		return failures, closeErr
	}
	if p := rw.OutputPath(); p != "" {
		logrus.WithField("path", p).Info("Wrote XUnit report")
	}
	return failures, nil
}

// watchStream re-renders path each time it is written, until ctx is done.
func watchStream(ctx context.Context, cmd *cobra.Command, path string, cfg *config.Config, env config.Env) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	run := func() {
		if _, err := replayPath(ctx, cmd, path, cfg, env); err != nil {
			logrus.WithError(err).WithField("file", path).Warn("Replay failed")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
	}
	run()

	// Debounce timer for rapid file changes
	debounce := time.NewTimer(WatchDebounceDelay)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if name == abs && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				debounce.Reset(WatchDebounceDelay)
			}
		case <-debounce.C:
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-rendering...\n", path)
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Warn("Watcher error")
		}
	}
}
