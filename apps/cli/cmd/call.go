package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/opensos/packages/output"
	"github.com/abdul-hamid-achik/opensos/packages/sos"
)

var callCmd = &cobra.Command{
	Use:   "call <endpoint> [function] [json-data]",
	Short: "Invoke an SOS API function",
	Long: `Invoke a function on an SOS endpoint. The function name is encrypted
with the session key, the payload is sent as JSON.

A saved session for --owner is reused while it is fresh, otherwise a new
handshake is performed. The session is saved again after the call.

Examples:
  opensos call login login '{"user":"jan","pass":"secret"}' --owner jan
  opensos call classification getMarks '{}' --owner jan
  opensos call logout --owner jan`,
	Args: cobra.RangeArgs(1, 3),
	RunE: callCommand,
}

var (
	ownerFlag   string
	baseURLFlag string
	freshFlag   bool
	noSaveFlag  bool
)

func init() {
	callCmd.Flags().StringVar(&ownerFlag, "owner", getEnvString("OPENSOS_OWNER", "default"), "Session owner (env: OPENSOS_OWNER)")
	callCmd.Flags().StringVar(&baseURLFlag, "base-url", getEnvString("OPENSOS_BASE_URL", ""), "SOS API base URL (env: OPENSOS_BASE_URL)")
	callCmd.Flags().BoolVar(&freshFlag, "fresh", false, "Ignore any saved session and perform a new handshake")
	callCmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "Do not save the session after the call")
}

func parseData(raw string) (any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON data: %w", err)
	}
	return data, nil
}

func callCommand(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	baseURL := baseURLFlag
	if baseURL == "" {
		baseURL = rt.cfg.BaseURL
	}
	if baseURL == "" {
		return withExitCode(ExitConfigError, errors.New("no base URL, set baseUrl in the config or pass --base-url"))
	}

	endpoint := args[0]
	var function, rawData string
	if len(args) > 1 {
		function = args[1]
	}
	if len(args) > 2 {
		rawData = args[2]
	}
	if endpoint != "logout" && function == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("endpoint %s needs a function name", endpoint))
	}

	data, err := parseData(rawData)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	store, err := rt.sessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	engine := rt.engine()
	defer engine.Close()
	client := sos.New(baseURL, sos.WithHTTPClient(engine), sos.WithLogger(rt.log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if freshFlag || !client.LoadSession(ctx, store, ownerFlag) {
		rt.log.Debug("starting new session", "owner", ownerFlag)
		if err := client.Start(ctx); err != nil {
			return withExitCode(resultExitCode(engine, err), err)
		}
	}

	var callErr error
	if endpoint == "logout" {
		_, callErr = client.Logout(ctx)
	} else {
		_, callErr = client.Call(ctx, endpoint, function, data)
	}

	formatter, err := rt.formatter(cmd.OutOrStdout(), false)
	if err != nil {
		return err
	}
	formatter.FormatResult(output.NewResult(engine, engineMethod(endpoint), callErr))

	if callErr != nil {
		return withExitCode(resultExitCode(engine, callErr), callErr)
	}

	switch {
	case endpoint == "logout":
		if err := store.Delete(ctx, ownerFlag); err != nil {
			return withExitCode(ExitSessionError, err)
		}
	case !noSaveFlag:
		if err := client.SaveSession(ctx, store, ownerFlag); err != nil {
			return withExitCode(ExitSessionError, err)
		}
	}
	return nil
}

func engineMethod(endpoint string) string {
	if endpoint == "logout" {
		return "GET"
	}
	return "POST"
}
