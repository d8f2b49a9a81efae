package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/xunitspec/packages/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var logLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "xunitspec",
	Short: "Render test events as a console transcript and XUnit XML.",
	Long: `xunitspec replays a stream of test lifecycle events and renders an
indented console transcript together with a JUnit/XUnit XML report that
CI systems can ingest.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (env: XUNIT_LOG_LEVEL)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevelFlag
	if level == "" {
		env, err := config.FromEnv()
		if err != nil {
			return &ExitError{Code: ExitConfigError, Err: err}
		}
		level = env.LogLevel
	}
	if level == "" {
		level = "warn"
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("invalid log level %q: %w", level, err)}
	}
	logrus.SetOutput(cmd.ErrOrStderr())
	logrus.SetLevel(parsed)
	return nil
}
