package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/opensos/packages/core/config"
	"github.com/abdul-hamid-achik/opensos/packages/health"
	ophttp "github.com/abdul-hamid-achik/opensos/packages/http"
	"github.com/abdul-hamid-achik/opensos/packages/logger"
	"github.com/abdul-hamid-achik/opensos/packages/output"
	"github.com/abdul-hamid-achik/opensos/packages/session"
)

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// runtime is what every command needs after flags are parsed
type runtime struct {
	cfg     *config.Config
	log     *logger.ZeroLogger
	monitor *health.Monitor
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	overrides := &config.Config{
		SessionDSN: sessionDBFlag,
	}
	if logLevelFlag != "" {
		overrides.Log.Level = logLevelFlag
	} else if verboseFlag > 1 {
		overrides.Log.Level = "debug"
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	cfg = cfg.Merge(overrides)

	log, err := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Writers: cfg.Log.Writers,
		File:    cfg.Log.File,
	})
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	return &runtime{
		cfg:     cfg,
		log:     log,
		monitor: health.NewMonitor(),
	}, nil
}

func (r *runtime) Close() {
	_ = r.log.Close()
}

// engine builds a request engine from the merged configuration
func (r *runtime) engine(extra ...ophttp.ClientOption) *ophttp.Client {
	opts := []ophttp.ClientOption{
		ophttp.WithLogger(r.log),
		ophttp.WithHealthReporter(r.monitor),
		ophttp.WithFollowRedirects(r.cfg.GetFollowRedirects()),
		ophttp.WithMaxRedirects(r.cfg.MaxRedirects),
		ophttp.WithDecompression(r.cfg.GetDecompress()),
		ophttp.WithRateLimit(r.cfg.RateLimit),
		ophttp.WithDefaultHeaders(r.cfg.Headers),
	}
	if r.cfg.Timeout > 0 {
		opts = append(opts, ophttp.WithTimeout(r.cfg.TimeoutDuration()))
	}
	return ophttp.NewClient(append(opts, extra...)...)
}

func (r *runtime) sessionStore() (*session.SQLiteStore, error) {
	store, err := session.NewSQLiteStore(r.cfg.SessionDSN)
	if err != nil {
		return nil, withExitCode(ExitSessionError, err)
	}
	return store, nil
}

func (r *runtime) formatter(w io.Writer, includeHeaders bool) (output.Formatter, error) {
	switch strings.ToLower(outputFlag) {
	case "json":
		return output.NewJSONFormatter(output.JSONWithWriter(w)), nil
	case "console", "":
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verboseFlag > 0),
			output.WithNoColor(r.cfg.GetNoColor()),
			output.WithIncludeHeaders(includeHeaders),
		), nil
	}
	return nil, withExitCode(ExitUsageError, fmt.Errorf("unknown output format: %s", outputFlag))
}

// resultExitCode maps the outcome of an engine call to a process exit code
func resultExitCode(c *ophttp.Client, err error) int {
	switch {
	case c.TransportErr() != nil:
		return ExitNetworkError
	case err != nil:
		return ExitRequestFailure
	case c.StatusCode() >= 400:
		return ExitRequestFailure
	}
	return ExitSuccess
}
