package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess          = 0
	ExitError            = 1
	ExitValidationFailed = 2
)

var (
	flagConfig   string
	flagDataDir  string
	flagFormat   string
	flagLogLevel string
	flagNoColor  bool
	flagOutput   string
)

// exitError carries a non-default exit code. A nil err means the output
// already explains the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity-intake",
		Short: "Turn activity announcements into validated records",
		Long: `A CLI tool that extracts conference, competition and activity
announcements from web pages, documents, images or plain text into
structured records, and validates them against the existing corpus.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file")
	pf.StringVar(&flagDataDir, "data-dir", "", "Corpus data directory (default ./data)")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text, json, yaml, markdown or workflow")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	pf.StringVarP(&flagOutput, "output", "o", "", "Write results to this file: records YAML for extract, iCalendar for ics")

	cmd.AddCommand(newExtractCmd(), newValidateCmd(), newICSCmd())
	return cmd
}

// exitCode maps a command error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	code := exitCode(err)
	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(code)
}
