package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failingStream = `{"event":"start"}
{"event":"suite","title":"users"}
{"event":"pass","title":"creates a user","duration":12}
{"event":"fail","title":"deletes a user","err":{"message":"expected 204","stack":"at users.js:9"}}
{"event":"suite end"}
{"event":"end"}
`

const passingStream = `{"event":"suite","title":"users"}
{"event":"pass","title":"lists users"}
{"event":"pending","title":"paginates"}
{"event":"suite end"}
{"event":"end"}
`

// clearEnv unsets the XUNIT_* variables for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"XUNIT_FILE", "XUNIT_SUITE_NAME", "XUNIT_NO_COLOR", "XUNIT_LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
	return exitErr.Code
}

func writeStream(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReport_Stdin(t *testing.T) {
	clearEnv(t)

	stdout, _, err := execute(t, failingStream, "report", "--no-color")
	assert.Equal(t, ExitTestFailure, exitCode(t, err))

	assert.Contains(t, stdout, "  users\n")
	assert.Contains(t, stdout, "    ✓ creates a user\n")
	assert.Contains(t, stdout, "    1) deletes a user\n")
	assert.Contains(t, stdout, `<testsuite name="Mocha Tests" tests="2" failures="0" errors="1" skipped="0"`)
	assert.Contains(t, stdout, "<failure>expected 204\nat users.js:9</failure>")
	assert.Contains(t, stdout, "  1) users deletes a user:\n")
}

func TestReport_OutputFile(t *testing.T) {
	clearEnv(t)
	events := writeStream(t, passingStream)
	out := filepath.Join(t.TempDir(), "reports", "xunit.xml")

	stdout, _, err := execute(t, "", "report", events, "-o", out, "--suite-name", "API Tests", "--ascii", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, stdout, "    ok lists users\n")
	assert.Contains(t, stdout, "    - paginates\n")
	assert.NotContains(t, stdout, "<testsuite")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuite name="API Tests" tests="2" failures="0" errors="0" skipped="1"`)
	assert.Contains(t, string(data), `<testcase classname="users" name="paginates" time="0.000"><skipped/></testcase>`)
}

func TestReport_EnvironmentFileWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envOut := filepath.Join(dir, "env.xml")
	flagOut := filepath.Join(dir, "flag.xml")
	t.Setenv("XUNIT_FILE", envOut)

	_, _, err := execute(t, passingStream, "report", "-o", flagOut)
	require.NoError(t, err)

	assert.FileExists(t, envOut)
	assert.NoFileExists(t, flagOut)
}

func TestReport_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "cfg.xml")
	cfgPath := filepath.Join(dir, "xunitspec.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: "+out+"\nsuiteName: From File\nnoColor: true\n"), 0644))

	_, _, err := execute(t, passingStream, "report", "--config", cfgPath)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name="From File"`)
}

func TestReport_ParseError(t *testing.T) {
	clearEnv(t)

	_, stderr, err := execute(t, "{\"event\":\"suite\",\"title\":\"a\"}\nnot json\n", "report", "--no-color")
	assert.Equal(t, ExitParseError, exitCode(t, err))
	assert.Contains(t, stderr, "Error: line 2")
}

func TestReport_IncompleteStream(t *testing.T) {
	clearEnv(t)

	_, stderr, err := execute(t, `{"event":"pass","title":"t"}`+"\n", "report", "--no-color")
	assert.Equal(t, ExitParseError, exitCode(t, err))
	assert.NotEmpty(t, stderr)
}

func TestReport_InvalidSlow(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(t, passingStream, "report", "--slow", "fast")
	assert.Equal(t, ExitUsageError, exitCode(t, err))
}

func TestReport_MissingFile(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(t, "", "report", filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Equal(t, ExitUsageError, exitCode(t, err))
}

func TestReport_WatchNeedsFile(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(t, "", "report", "--watch")
	assert.Equal(t, ExitUsageError, exitCode(t, err))
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	clearEnv(t)

	_, _, err := execute(t, "", "version", "--log-level", "loud")
	assert.Equal(t, ExitConfigError, exitCode(t, err))
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	valid := writeStream(t, failingStream)
	invalid := writeStream(t, `{"event":"fail","title":"no error"}`+"\n")

	stdout, _, err := execute(t, "", "validate", valid)
	require.NoError(t, err)
	assert.Equal(t, "Valid: "+valid+"\n", stdout)

	_, stderr, err := execute(t, "", "validate", valid, invalid)
	assert.Equal(t, ExitParseError, exitCode(t, err))
	assert.Contains(t, stderr, "Error in "+invalid+": line 1")
}

func TestVersion(t *testing.T) {
	clearEnv(t)

	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "xunitspec version dev")
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := &ExitError{Code: ExitConfigError, Err: inner}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "exit status 1", (&ExitError{Code: ExitTestFailure}).Error())
}
