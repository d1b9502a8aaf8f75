package output

import (
	"time"

	"github.com/abdul-hamid-achik/opensos/packages/health"
	ophttp "github.com/abdul-hamid-achik/opensos/packages/http"
	"github.com/abdul-hamid-achik/opensos/packages/session"
)

// Result is one completed engine call as shown to the user
type Result struct {
	Method     string
	URL        string
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
	Redirects  int
	Err        error
}

// NewResult captures the state an engine holds after a call
func NewResult(c *ophttp.Client, method string, err error) *Result {
	resp := c.Response()
	return &Result{
		Method:     ophttp.NormalizeMethod(method),
		URL:        c.LastURL(),
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers.Map(),
		Body:       resp.Body,
		Duration:   resp.Duration,
		Redirects:  c.Redirects(),
		Err:        err,
	}
}

// Formatter renders results for one output format
type Formatter interface {
	FormatResult(r *Result)
	FormatSession(owner string, s *session.Session, now time.Time)
	FormatHealth(s health.Summary)
	FormatError(err error)
}
