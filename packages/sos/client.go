package sos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	ophttp "github.com/abdul-hamid-achik/opensos/packages/http"
	"github.com/abdul-hamid-achik/opensos/packages/logger"
)

// HandshakeEndpoint hands out the public key for a new session
const HandshakeEndpoint = "6NpSdyj2TJw45LYb"

var (
	// ErrBadResponse is returned when a body is not the JSON object expected
	ErrBadResponse = errors.New("bad response")
	// ErrUnexpectedStatus is returned for 4xx and 5xx responses
	ErrUnexpectedStatus = errors.New("unexpected status")
)

const handshakeSchema = `{
	"type": "object",
	"required": ["e", "n"],
	"properties": {
		"e": {"type": "string", "pattern": "^(0x)?[0-9a-fA-F]+$"},
		"n": {"type": "string", "pattern": "^(0x)?[0-9a-fA-F]+$"}
	}
}`

// Client talks to one SOS installation through the request engine
type Client struct {
	baseURL string
	http    *ophttp.Client
	cipher  *Cipher
	now     func() time.Time
	log     logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the request engine, e.g. to share configuration
func WithHTTPClient(hc *ophttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithCipher(ci *Cipher) Option {
	return func(c *Client) {
		c.cipher = ci
	}
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Client{
		baseURL: baseURL,
		cipher:  NewCipher(),
		now:     time.Now,
		log:     logger.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = ophttp.NewClient(ophttp.WithLogger(c.log))
	}
	c.http.SetHeader("X-Qooxdoo-Response-Type", "application/json")

	return c
}

// HTTP exposes the underlying request engine
func (c *Client) HTTP() *ophttp.Client {
	return c.http
}

func (c *Client) Cipher() *Cipher {
	return c.cipher
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Start performs the handshake and loads the returned public key
func (c *Client) Start(ctx context.Context) error {
	body, err := c.http.Request(ctx, c.baseURL+HandshakeEndpoint+".php", http.MethodGet, nil)
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}
	if err := c.checkStatus("handshake"); err != nil {
		return err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(handshakeSchema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return fmt.Errorf("%w: handshake body: %v", ErrBadResponse, err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: handshake body: %s", ErrBadResponse, strings.Join(problems, "; "))
	}

	parsed := gjson.ParseBytes(body)
	if err := c.cipher.SetKey(parsed.Get("e").String(), parsed.Get("n").String()); err != nil {
		return err
	}

	c.log.Debug("session started", "baseUrl", c.baseURL)
	return nil
}

// Call invokes function on endpoint with data as its payload. The function
// name is encrypted and passed as a query parameter next to a cache buster.
func (c *Client) Call(ctx context.Context, endpoint, function string, data any) (map[string]any, error) {
	encrypted, err := c.cipher.Encrypt(function)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	query := "nocache=" + strconv.FormatInt(c.now().Unix(), 10) + "&function=" + url.QueryEscape(encrypted)
	target := c.baseURL + endpoint + ".php?" + query
	form := url.Values{"data": {string(payload)}}

	body, err := c.http.Request(ctx, target, http.MethodPost, []byte("&"+form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", endpoint, err)
	}
	if err := c.checkStatus(endpoint); err != nil {
		return nil, err
	}

	return decodeObject(endpoint, body)
}

func (c *Client) get(ctx context.Context, endpoint string) (map[string]any, error) {
	body, err := c.http.Request(ctx, c.baseURL+endpoint+".php", http.MethodGet, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", endpoint, err)
	}
	if err := c.checkStatus(endpoint); err != nil {
		return nil, err
	}
	return decodeObject(endpoint, body)
}

func (c *Client) checkStatus(endpoint string) error {
	if status := c.http.StatusCode(); status >= 400 {
		return fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, endpoint, status)
	}
	return nil
}

func decodeObject(endpoint string, body []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadResponse, endpoint, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %s returned no object", ErrBadResponse, endpoint)
	}
	return out, nil
}
