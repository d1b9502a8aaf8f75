package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/opensos/packages/core/config"
)

var (
	forceInit    bool
	initJSONFlag bool
)

var initCmd = &cobra.Command{
	Use:   "init [base-url]",
	Short: "Write a starter configuration file",
	Long: `Write a configuration file with default values to the current directory.

This creates .opensos.yml, or .opensos.json with --json.

Examples:
  opensos init https://sos.example.cz/api/
  opensos init --json --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing file")
	initCmd.Flags().BoolVar(&initJSONFlag, "json", false, "Write JSON instead of YAML")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	name := ".opensos.yml"
	if initJSONFlag {
		name = ".opensos.json"
	}
	configFile := filepath.Join(cwd, name)

	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile))
		}
	}

	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}
	cfg.Headers = map[string]string{
		"Accept-Language": "cs-CZ,cs;q=0.9,en;q=0.8",
	}

	if err := cfg.SaveConfig(configFile); err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("failed to create config file: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	return nil
}
