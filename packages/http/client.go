package http

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/opensos/packages/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultIdleConnTimeout is how long the idle connection stays open
	DefaultIdleConnTimeout = 90 * time.Second
)

// HealthReporter receives the outcome of every transport call.
// A status of 0 with a non-nil err marks a transport failure.
type HealthReporter interface {
	Report(url string, status int, d time.Duration, err error)
}

// Client performs requests while owning header assembly, cookie replay and
// redirect resolution itself. It keeps the state of the last response.
//
// A Client is not safe for concurrent use; run one request at a time or
// give each goroutine its own Client.
type Client struct {
	transport      Transport
	timeout        time.Duration
	followRedirect bool
	maxRedirects   int
	decompress     bool
	headers        *Headers
	cookies        *CookieJar
	log            logger.Logger
	health         HealthReporter
	limiter        *rate.Limiter

	response     *Response
	lastURL      string
	redirects    int
	transportErr error
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		headers:        DefaultHeaders(),
		cookies:        NewCookieJar(),
		log:            logger.NewNop(),
		response:       &Response{Headers: NewHeaders()},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewHTTPTransport(c.timeout, c.decompress, c.log)
	}

	return c
}

// WithTransport replaces the default net/http transport
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

// WithMaxRedirects bounds the number of hops followed by one call.
// Zero, the default, follows redirects without limit.
func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithDefaultHeaders sets multiple headers on the header store
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers.SetAll(headers)
	}
}

func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithHealthReporter(r HealthReporter) ClientOption {
	return func(c *Client) {
		c.health = r
	}
}

// WithRateLimit spaces transport calls, redirect hops included, to at most
// rps per second. A non-positive rps disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithDecompression makes the default transport decode gzip, deflate, br and zstd bodies
func WithDecompression(decompress bool) ClientOption {
	return func(c *Client) {
		c.decompress = decompress
	}
}

// Request performs method against rawURL, following redirects when the
// client is configured to, and returns the body of the terminal response.
func (c *Client) Request(ctx context.Context, rawURL, method string, body []byte) ([]byte, error) {
	return c.Do(ctx, rawURL, method, body, c.followRedirect)
}

// Do is Request with redirect following chosen per call.
//
// Only POST sends body. On a 301, 302 or 303 the next hop is a bodiless
// GET, any other redirect repeats method and body against the new URL.
// A transport failure leaves StatusCode at 0 and returns a *TransportError.
// ErrInvalidURL is only returned for rawURL itself; a redirect to a URL that
// cannot be requested is a transport failure of that hop.
func (c *Client) Do(ctx context.Context, rawURL, method string, body []byte, follow bool) ([]byte, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	method = NormalizeMethod(method)
	c.redirects = 0

	for {
		resp, err := c.roundTrip(ctx, rawURL, method, body)
		if err != nil {
			return nil, err
		}

		location := resp.Header("Location")
		if !follow || !resp.IsRedirect() || location == "" {
			return resp.Body, nil
		}

		if c.maxRedirects > 0 && c.redirects >= c.maxRedirects {
			c.log.Warn("redirect limit reached", "url", rawURL, "limit", c.maxRedirects)
			return resp.Body, fmt.Errorf("%w: stopped after %d hops at %s", ErrTooManyRedirects, c.redirects, rawURL)
		}

		next := ResolveLocation(rawURL, location)
		c.log.Debug("following redirect", "status", resp.StatusCode, "from", rawURL, "to", next)

		method, body = NextHop(resp.StatusCode, method, body)
		rawURL = next
		c.redirects++
	}
}

func (c *Client) roundTrip(ctx context.Context, rawURL, method string, body []byte) (*Response, error) {
	requestID := uuid.NewString()

	u, err := ValidateURL(rawURL)
	if err != nil {
		d := &Descriptor{URL: rawURL, Method: method}
		return nil, c.fail(requestID, d, 0, fmt.Errorf("redirect target: %v", err))
	}

	c.headers.Set("Referer", rawURL)
	c.headers.Set("Host", u.Host)
	c.headers.Set("Origin", Origin(rawURL))

	d := c.describe(rawURL, method, body)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(requestID, d, 0, err)
		}
	}

	start := time.Now()
	raw, err := c.transport.RoundTrip(ctx, d)
	elapsed := time.Since(start)
	c.lastURL = rawURL

	if err != nil {
		return nil, c.fail(requestID, d, elapsed, err)
	}

	resp := ParseResponse(raw)
	resp.URL = rawURL
	resp.Duration = elapsed

	c.response = resp
	c.transportErr = nil

	for _, sc := range resp.Cookies {
		c.cookies.Merge(sc)
	}

	c.log.Debug("request completed",
		"requestId", requestID,
		"method", d.Method,
		"url", rawURL,
		"status", resp.StatusCode,
		"durationMs", resp.DurationMs(),
	)
	c.report(rawURL, resp.StatusCode, elapsed, nil)

	return resp, nil
}

// describe builds the per-attempt request descriptor from the stores
func (c *Client) describe(rawURL, method string, body []byte) *Descriptor {
	d := &Descriptor{
		URL:     rawURL,
		Method:  method,
		Body:    requestBody(method, body),
		Headers: make([]HeaderPair, 0, c.headers.Len()),
		Cookie:  c.cookies.Header(),
	}
	c.headers.Each(func(name, value string) {
		d.Headers = append(d.Headers, HeaderPair{Name: name, Value: value})
	})
	return d
}

func (c *Client) fail(requestID string, d *Descriptor, elapsed time.Duration, err error) error {
	terr := &TransportError{URL: d.URL, Err: err}

	c.lastURL = d.URL
	c.response = &Response{Headers: NewHeaders(), URL: d.URL, Duration: elapsed}
	c.transportErr = terr

	c.log.Warn("transport failure",
		"requestId", requestID,
		"method", d.Method,
		"url", d.URL,
		"error", err.Error(),
	)
	c.report(d.URL, 0, elapsed, terr)

	return terr
}

func (c *Client) report(url string, status int, d time.Duration, err error) {
	if c.health != nil {
		c.health.Report(url, status, d, err)
	}
}

// Response returns the last observed response
func (c *Client) Response() *Response {
	return c.response
}

// StatusCode of the last response, 0 after a transport failure
func (c *Client) StatusCode() int {
	return c.response.StatusCode
}

func (c *Client) ResponseHeaders() map[string]string {
	return c.response.Headers.Map()
}

func (c *Client) ResponseHeader(name string) string {
	return c.response.Header(name)
}

func (c *Client) ResponseBody() []byte {
	return c.response.Body
}

// LastURL is the URL of the last attempt, the terminal hop after redirects
func (c *Client) LastURL() string {
	return c.lastURL
}

// Redirects returns how many hops the last call followed
func (c *Client) Redirects() int {
	return c.redirects
}

// TransportErr returns the failure of the last attempt, nil if it reached the server
func (c *Client) TransportErr() error {
	return c.transportErr
}

// Headers exposes the outbound header store
func (c *Client) Headers() *Headers {
	return c.headers
}

func (c *Client) SetHeader(name, value string) {
	c.headers.Set(name, value)
}

func (c *Client) RequestHeader(name string) string {
	v, _ := c.headers.Get(name)
	return v
}

// Cookies exposes the cookie jar
func (c *Client) Cookies() *CookieJar {
	return c.cookies
}

func (c *Client) SetFollowRedirects(follow bool) {
	c.followRedirect = follow
}

// Close releases the transport handle
func (c *Client) Close() error {
	return c.transport.Close()
}
