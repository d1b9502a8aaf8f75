package http

import (
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned when a request URL is not an absolute http or https URL
	ErrInvalidURL = errors.New("invalid URL")
	// ErrTooManyRedirects is returned when the configured hop limit is reached
	ErrTooManyRedirects = errors.New("too many redirects")
)

// TransportError wraps a connection, DNS or timeout failure. The client
// state after such a failure reports status 0 and an empty body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
	http.MethodPatch:   true,
}

// NormalizeMethod upper-cases method and degrades anything unknown to GET
func NormalizeMethod(method string) string {
	m := strings.ToUpper(strings.TrimSpace(method))
	if knownMethods[m] {
		return m
	}
	return http.MethodGet
}

// requestBody returns the payload actually sent. Only POST carries a body.
func requestBody(method string, body []byte) []byte {
	if method != http.MethodPost || len(body) == 0 {
		return nil
	}
	return body
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) (*neturl.URL, error) {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q (only http and https are allowed)", ErrInvalidURL, u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("%w: URL must have a host", ErrInvalidURL)
	}

	return u, nil
}
