package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	ophttp "github.com/abdul-hamid-achik/opensos/packages/http"
	"github.com/abdul-hamid-achik/opensos/packages/output"
)

var requestCmd = &cobra.Command{
	Use:   "request <url>",
	Short: "Perform a single engine request",
	Long: `Perform one logical request, following redirects and replaying
cookies the way the SOS client does.

Examples:
  opensos request https://example.com/
  opensos request https://example.com/login -X POST -d 'user=jan&pass=x'
  opensos request https://example.com/api -H 'Accept: application/json' --path data.items.#
  opensos request https://example.com/ --no-follow -i`,
	Args: cobra.ExactArgs(1),
	RunE: requestCommand,
}

var (
	methodFlag       string
	dataFlag         string
	headerFlags      []string
	noFollowFlag     bool
	maxRedirectsFlag int
	includeFlag      bool
	pathFlag         string
	healthFlag       bool
	metricsFileFlag  string
	rateFlag         float64
)

func init() {
	requestCmd.Flags().StringVarP(&methodFlag, "method", "X", "GET", "HTTP method, unknown methods fall back to GET")
	requestCmd.Flags().StringVarP(&dataFlag, "data", "d", "", "Request body, sent only with POST")
	requestCmd.Flags().StringArrayVarP(&headerFlags, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	requestCmd.Flags().BoolVar(&noFollowFlag, "no-follow", false, "Do not follow redirects")
	requestCmd.Flags().IntVar(&maxRedirectsFlag, "max-redirects", getEnvInt("OPENSOS_MAX_REDIRECTS", 0), "Stop after this many hops, 0 follows without limit (env: OPENSOS_MAX_REDIRECTS)")
	requestCmd.Flags().BoolVarP(&includeFlag, "include", "i", false, "Print status line and response headers")
	requestCmd.Flags().StringVar(&pathFlag, "path", "", "Print only the value at this gjson path of a JSON body")
	requestCmd.Flags().BoolVar(&healthFlag, "health", false, "Print a health summary after the request")
	requestCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", getEnvString("OPENSOS_METRICS_FILE", ""), "Write Prometheus metrics to this file (env: OPENSOS_METRICS_FILE)")
	requestCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("OPENSOS_RATE", 0), "Max transport calls per second, redirects included (env: OPENSOS_RATE)")
}

// parseHeader splits a 'Name: value' flag
func parseHeader(raw string) (string, string, error) {
	name, value, ok := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q, expected 'Name: value'", raw)
	}
	return name, strings.TrimSpace(value), nil
}

// extractPath returns the value at path, or an error when it is absent
func extractPath(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("response body is not JSON")
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", fmt.Errorf("path %q not found in response", path)
	}
	if result.Type == gjson.String {
		return result.String(), nil
	}
	return result.Raw, nil
}

func requestCommand(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	var extra []ophttp.ClientOption
	for _, raw := range headerFlags {
		name, value, err := parseHeader(raw)
		if err != nil {
			return withExitCode(ExitUsageError, err)
		}
		extra = append(extra, ophttp.WithDefaultHeader(name, value))
	}
	if cmd.Flags().Changed("max-redirects") || maxRedirectsFlag > 0 {
		extra = append(extra, ophttp.WithMaxRedirects(maxRedirectsFlag))
	}
	if rateFlag > 0 {
		extra = append(extra, ophttp.WithRateLimit(rateFlag))
	}

	client := rt.engine(extra...)
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	follow := rt.cfg.GetFollowRedirects() && !noFollowFlag

	var body []byte
	if dataFlag != "" {
		body = []byte(dataFlag)
	}
	_, reqErr := client.Do(ctx, args[0], methodFlag, body, follow)
	if errors.Is(reqErr, ophttp.ErrInvalidURL) {
		return withExitCode(ExitUsageError, reqErr)
	}

	formatter, err := rt.formatter(cmd.OutOrStdout(), includeFlag)
	if err != nil {
		return err
	}

	result := output.NewResult(client, methodFlag, reqErr)
	if pathFlag != "" && reqErr == nil {
		value, err := extractPath(result.Body, pathFlag)
		if err != nil {
			return withExitCode(ExitRequestFailure, err)
		}
		result.Body = []byte(value)
	}
	formatter.FormatResult(result)

	if healthFlag {
		formatter.FormatHealth(rt.monitor.Summary())
	}
	if metricsFileFlag != "" {
		if err := writeMetrics(rt, metricsFileFlag); err != nil {
			return withExitCode(ExitConfigError, err)
		}
	}

	if code := resultExitCode(client, reqErr); code != ExitSuccess {
		if reqErr == nil {
			reqErr = fmt.Errorf("server responded with %d", client.StatusCode())
		}
		return withExitCode(code, reqErr)
	}
	return nil
}

func writeMetrics(rt *runtime, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create metrics file: %w", err)
	}
	defer f.Close()
	return rt.monitor.WritePrometheus(f)
}
