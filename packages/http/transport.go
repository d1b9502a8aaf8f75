package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/abdul-hamid-achik/opensos/packages/logger"
)

// HeaderPair is one outbound header line
type HeaderPair struct {
	Name  string
	Value string
}

// Descriptor is everything needed to send a single request attempt.
// It is built fresh for every hop.
type Descriptor struct {
	URL     string
	Method  string
	Body    []byte
	Headers []HeaderPair
	Cookie  string
}

// RawResponse is what a Transport hands back: the status code, the byte
// length of the header block, and the header block followed by the body.
type RawResponse struct {
	StatusCode int
	HeaderSize int
	Raw        []byte
}

// Transport executes exactly one request and must never follow redirects
type Transport interface {
	RoundTrip(ctx context.Context, d *Descriptor) (*RawResponse, error)
	Close() error
}

// HTTPTransport is the net/http backed Transport. It owns a single client
// handle for its whole lifetime.
type HTTPTransport struct {
	client     *http.Client
	decompress bool
	log        logger.Logger
}

// NewHTTPTransport creates the default transport. Redirects are never
// followed, HTTP/2 is disabled and TLS uses default verification.
func NewHTTPTransport(timeout time.Duration, decompress bool, l logger.Logger) *HTTPTransport {
	if l == nil {
		l = logger.NewNop()
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		TLSHandshakeTimeout: 15 * time.Second,
		ForceAttemptHTTP2:   false,
		TLSNextProto:        make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
		// Accept-Encoding is owned by the header store
		DisableCompression: true,
	}

	return &HTTPTransport{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		decompress: decompress,
		log:        l,
	}
}

func (t *HTTPTransport) RoundTrip(ctx context.Context, d *Descriptor) (*RawResponse, error) {
	var body io.Reader
	if len(d.Body) > 0 {
		body = bytes.NewReader(d.Body)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, d.URL, body)
	if err != nil {
		return nil, err
	}

	for _, h := range d.Headers {
		if strings.EqualFold(h.Name, "Host") {
			if h.Value != "" {
				req.Host = h.Value
			}
			continue
		}
		if !httpguts.ValidHeaderFieldName(h.Name) || !httpguts.ValidHeaderFieldValue(h.Value) {
			t.log.Warn("dropping invalid request header", "name", h.Name)
			continue
		}
		setRawHeader(req.Header, h.Name, h.Value)
	}

	if d.Cookie != "" {
		setRawHeader(req.Header, "Cookie", d.Cookie)
	}

	if len(d.Body) > 0 && !hasHeader(req.Header, "Content-Type") {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if t.decompress && len(respBody) > 0 {
		encoding := resp.Header.Get("Content-Encoding")
		decoded, ok, err := decodeBytes(encoding, respBody)
		switch {
		case err != nil:
			// body stays as sent
			t.log.Warn("leaving body encoded", "url", d.URL, "encoding", encoding, "error", err.Error())
		case ok:
			respBody = decoded
			resp.Header.Del("Content-Encoding")
			resp.Header.Del("Content-Length")
		}
	}

	head := renderHead(resp)
	raw := make([]byte, 0, len(head)+len(respBody))
	raw = append(raw, head...)
	raw = append(raw, respBody...)

	return &RawResponse{
		StatusCode: resp.StatusCode,
		HeaderSize: len(head),
		Raw:        raw,
	}, nil
}

// Close releases idle connections held by the client handle
func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// renderHead writes the status line and one line per header value, so
// repeated headers such as Set-Cookie stay on separate lines.
func renderHead(resp *http.Response) []byte {
	var buf bytes.Buffer
	buf.WriteString(resp.Proto)
	buf.WriteByte(' ')
	buf.WriteString(resp.Status)
	buf.WriteString("\r\n")

	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, v := range resp.Header[name] {
			buf.WriteString(name)
			buf.WriteString(": ")
			buf.WriteString(v)
			buf.WriteString("\r\n")
		}
	}
	buf.WriteString("\r\n")
	return buf.Bytes()
}

// setRawHeader stores name without canonicalizing it, replacing any
// differently cased duplicate.
func setRawHeader(h http.Header, name, value string) {
	for k := range h {
		if strings.EqualFold(k, name) {
			delete(h, k)
		}
	}
	h[name] = []string{value}
}

func hasHeader(h http.Header, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}
