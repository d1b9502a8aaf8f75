package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	verboseFlag   int
	noColorFlag   bool
	outputFlag    string
	logLevelFlag  string
	sessionDBFlag string
)

var rootCmd = &cobra.Command{
	Use:   "opensos",
	Short: "Talk to SOS school systems from the terminal.",
	Long: `opensos drives the SOS school information system API through a
request engine that manages headers, cookies and redirects itself.

Use "request" for raw engine calls against any URL and "call" for
encrypted SOS API calls that reuse a saved session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit code chosen by a command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("OPENSOS_CONFIG", ""), "Path to config file (env: OPENSOS_CONFIG)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v for details, -vv for debug logs)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("OPENSOS_NO_COLOR", false), "Disable colored output (env: OPENSOS_NO_COLOR)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", getEnvString("OPENSOS_OUTPUT", "console"), "Output format: console, json (env: OPENSOS_OUTPUT)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", getEnvString("OPENSOS_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: OPENSOS_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&sessionDBFlag, "session-db", getEnvString("OPENSOS_SESSION_DB", ""), "Session database, e.g. sqlite://sessions.db (env: OPENSOS_SESSION_DB)")

	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
