package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/xunitspec/packages/events"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate event streams against the event schema",
	Long: `Validate JSON-lines event streams without rendering them.

Examples:
  xunitspec validate events.jsonl
  xunitspec validate run-1.jsonl run-2.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	hasErrors := false
	for _, file := range args {
		problems, err := validateFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		if len(problems) > 0 {
			for _, p := range problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s: %s\n", file, p)
			}
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if hasErrors {
		return &ExitError{Code: ExitParseError, Err: fmt.Errorf("validation failed")}
	}

	return nil
}

func validateFile(path string) ([]events.ValidationError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return events.ValidateStream(f)
}
