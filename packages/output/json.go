package output

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/opensos/packages/health"
	"github.com/abdul-hamid-achik/opensos/packages/session"
)

// JSONResult represents one engine call
type JSONResult struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	BodyText   string            `json:"bodyText,omitempty"`
	Duration   float64           `json:"duration"`
	Redirects  int               `json:"redirects"`
	Error      string            `json:"error,omitempty"`
}

// JSONSession represents a stored session
type JSONSession struct {
	Owner     string   `json:"owner"`
	Found     bool     `json:"found"`
	ID        string   `json:"id,omitempty"`
	SavedAt   string   `json:"savedAt,omitempty"`
	ExpiresAt string   `json:"expiresAt,omitempty"`
	Usable    bool     `json:"usable"`
	Reason    string   `json:"reason,omitempty"`
	Cookies   []string `json:"cookies,omitempty"`
}

// JSONHealth represents a health summary
type JSONHealth struct {
	Healthy   bool             `json:"healthy"`
	Total     int64            `json:"total"`
	Failures  int64            `json:"failures"`
	LastError string           `json:"lastError,omitempty"`
	Hosts     []JSONHostHealth `json:"hosts,omitempty"`
}

type JSONHostHealth struct {
	Host     string  `json:"host"`
	Total    int64   `json:"total"`
	Failures int64   `json:"failures"`
	P50      float64 `json:"p50"`
	P95      float64 `json:"p95"`
	P99      float64 `json:"p99"`
	Max      float64 `json:"max"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func (f *JSONFormatter) FormatResult(r *Result) {
	out := JSONResult{
		Method:     r.Method,
		URL:        r.URL,
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Duration:   float64(r.Duration.Milliseconds()),
		Redirects:  r.Redirects,
	}

	// JSON bodies are embedded as is, anything else as text
	if len(r.Body) > 0 {
		if gjson.ValidBytes(r.Body) {
			out.Body = json.RawMessage(r.Body)
		} else {
			out.BodyText = string(r.Body)
		}
	}

	if r.Err != nil {
		out.Error = r.Err.Error()
	}

	f.encode(out)
}

func (f *JSONFormatter) FormatSession(owner string, s *session.Session, now time.Time) {
	out := JSONSession{Owner: owner}
	if s != nil {
		out.Found = true
		out.ID = s.ID
		out.SavedAt = s.SavedAt.Format(time.RFC3339)
		out.ExpiresAt = s.ExpiresAt().Format(time.RFC3339)
		if err := s.Check(now); err != nil {
			out.Reason = err.Error()
		} else {
			out.Usable = true
		}
		for name := range s.Cookies {
			out.Cookies = append(out.Cookies, name)
		}
		sort.Strings(out.Cookies)
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatHealth(s health.Summary) {
	out := JSONHealth{
		Healthy:   s.Healthy,
		Total:     s.Total,
		Failures:  s.Failures,
		LastError: s.LastError,
	}
	for _, h := range s.Hosts {
		out.Hosts = append(out.Hosts, JSONHostHealth{
			Host:     h.Host,
			Total:    h.Total,
			Failures: h.Failures,
			P50:      msFloat(h.P50),
			P95:      msFloat(h.P95),
			P99:      msFloat(h.P99),
			Max:      msFloat(h.Max),
		})
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) {
	f.encode(map[string]string{"error": err.Error()})
}

func msFloat(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
