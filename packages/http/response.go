package http

import (
	"encoding/json"
	"strings"
	"time"
)

// Response is the decoded form of one transport round trip
type Response struct {
	StatusCode int
	// Headers holds one value per name; on duplicates the last line wins.
	Headers *Headers
	// Cookies holds every Set-Cookie value in the order received.
	Cookies  []string
	Body     []byte
	URL      string
	Duration time.Duration
}

// ParseResponse splits raw into header block and body at raw.HeaderSize and
// parses the header block. Lines without a colon, the status line among
// them, are skipped.
func ParseResponse(raw *RawResponse) *Response {
	resp := &Response{
		StatusCode: raw.StatusCode,
		Headers:    NewHeaders(),
	}

	size := raw.HeaderSize
	if size < 0 {
		size = 0
	}
	if size > len(raw.Raw) {
		size = len(raw.Raw)
	}
	resp.Body = raw.Raw[size:]

	for _, line := range strings.Split(string(raw.Raw[:size]), "\n") {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		resp.Headers.Set(name, value)
		if strings.EqualFold(name, "Set-Cookie") {
			resp.Cookies = append(resp.Cookies, value)
		}
	}

	return resp
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) BodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Header returns the value of the named header, matched case-insensitively
func (r *Response) Header(key string) string {
	if r.Headers == nil {
		return ""
	}
	v, _ := r.Headers.Get(key)
	return v
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return strings.Contains(ct, "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return IsRedirect(r.StatusCode)
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
