package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/opensos/packages/health"
	"github.com/abdul-hamid-achik/opensos/packages/session"
)

// formatValue truncates long values for display
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case map[string]string:
		return fmt.Sprintf("{map with %d entries}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer      io.Writer
	verbose     bool
	noColor     bool
	includeHead bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithIncludeHeaders prints the response headers before the body
func WithIncludeHeaders(include bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.includeHead = include
	}
}

func statusColor(status int) *color.Color {
	switch {
	case status == 0 || status >= 500:
		return color.New(color.FgRed, color.Bold)
	case status >= 400:
		return color.New(color.FgRed)
	case status >= 300:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func (f *ConsoleFormatter) FormatResult(r *Result) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if f.verbose || f.includeHead {
		status := statusColor(r.StatusCode).SprintFunc()
		fmt.Fprintf(f.writer, "%s %s %s %s\n",
			bold(r.Method), r.URL, status(r.StatusCode), cyan(fmt.Sprintf("(%dms)", r.Duration.Milliseconds())))
		if r.Redirects > 0 {
			fmt.Fprintf(f.writer, "  Redirects: %d\n", r.Redirects)
		}
	}

	if f.includeHead {
		names := make([]string, 0, len(r.Headers))
		for name := range r.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(name), r.Headers[name])
		}
		fmt.Fprintf(f.writer, "\n")
	}

	if r.Err != nil {
		f.FormatError(r.Err)
		return
	}

	f.writer.Write(r.Body)
	if len(r.Body) > 0 && r.Body[len(r.Body)-1] != '\n' {
		fmt.Fprintf(f.writer, "\n")
	}
}

func (f *ConsoleFormatter) FormatSession(owner string, s *session.Session, now time.Time) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold("Session:"), owner)
	if s == nil {
		fmt.Fprintf(f.writer, "  %s\n", red("none saved"))
		return
	}

	state := green("usable")
	if err := s.Check(now); err != nil {
		state = red(err.Error())
	}

	fmt.Fprintf(f.writer, "  ID:      %s\n", s.ID)
	fmt.Fprintf(f.writer, "  Saved:   %s\n", s.SavedAt.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "  Expires: %s\n", s.ExpiresAt().Format(time.RFC3339))
	fmt.Fprintf(f.writer, "  State:   %s\n", state)

	names := make([]string, 0, len(s.Cookies))
	for name := range s.Cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(f.writer, "  Cookies: %s\n", strings.Join(names, ", "))

	if f.verbose {
		for _, name := range names {
			fmt.Fprintf(f.writer, "    %s = %s\n", name, formatValue(s.Cookies[name], 60))
		}
	}
}

func (f *ConsoleFormatter) FormatHealth(s health.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	state := green("healthy")
	if !s.Healthy {
		state = red("unhealthy")
	}
	fmt.Fprintf(f.writer, "%s %s\n", bold("Health:"), state)
	fmt.Fprintf(f.writer, "  Requests: %d, failed: %d\n", s.Total, s.Failures)
	if s.LastError != "" {
		fmt.Fprintf(f.writer, "  Last error: %s\n", red(formatValue(s.LastError, 100)))
	}

	for _, h := range s.Hosts {
		fmt.Fprintf(f.writer, "  %s: %d requests, p50 %s, p95 %s, p99 %s, max %s\n",
			h.Host, h.Total, h.P50, h.P95, h.P99, h.Max)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("opensos"), version)
}
