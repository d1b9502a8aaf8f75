package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(status int, head, body string) *RawResponse {
	return &RawResponse{
		StatusCode: status,
		HeaderSize: len(head),
		Raw:        []byte(head + body),
	}
}

func TestParseResponse_SplitsHeadersAndBody(t *testing.T) {
	head := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nX-Test:  spaced value \r\n\r\n"
	resp := ParseResponse(raw(200, head, `{"ok":true}`))

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, resp.BodyString())
	assert.Equal(t, "application/json", resp.Header("content-type"))
	assert.Equal(t, "spaced value", resp.Header("X-TEST"))
	assert.True(t, resp.IsJSON())
	assert.True(t, resp.IsSuccess())
}

func TestParseResponse_SkipsMalformedLines(t *testing.T) {
	head := "HTTP/1.1 200 OK\nno colon here\n\nX-Ok: yes\n\n"
	resp := ParseResponse(raw(200, head, "body"))

	assert.Equal(t, 1, resp.Headers.Len())
	assert.Equal(t, "yes", resp.Header("X-Ok"))
	assert.Equal(t, "body", resp.BodyString())
}

func TestParseResponse_LastValueWins(t *testing.T) {
	head := "HTTP/1.1 200 OK\r\nx-dup: first\r\nX-Dup: second\r\n\r\n"
	resp := ParseResponse(raw(200, head, ""))

	assert.Equal(t, "second", resp.Header("x-dup"))
	assert.Equal(t, 1, resp.Headers.Len())
}

func TestParseResponse_ValueKeepsLaterColons(t *testing.T) {
	head := "HTTP/1.1 302 Found\r\nLocation: https://example.com:8443/next\r\n\r\n"
	resp := ParseResponse(raw(302, head, ""))

	assert.Equal(t, "https://example.com:8443/next", resp.Header("location"))
	assert.True(t, resp.IsRedirect())
}

func TestParseResponse_CollectsEverySetCookie(t *testing.T) {
	head := "HTTP/1.1 200 OK\r\nSet-Cookie: a=1; Path=/\r\nset-cookie: b=2\r\n\r\n"
	resp := ParseResponse(raw(200, head, ""))

	assert.Equal(t, []string{"a=1; Path=/", "b=2"}, resp.Cookies)
	assert.Equal(t, "b=2", resp.Header("Set-Cookie"))
}

func TestParseResponse_HeaderSizeOutOfRange(t *testing.T) {
	resp := ParseResponse(&RawResponse{StatusCode: 200, HeaderSize: 100, Raw: []byte("X-A: 1\n")})
	assert.Empty(t, resp.Body)
	assert.Equal(t, "1", resp.Header("X-A"))

	resp = ParseResponse(&RawResponse{StatusCode: 200, HeaderSize: -1, Raw: []byte("body")})
	assert.Equal(t, "body", resp.BodyString())
}

func TestParseResponse_Empty(t *testing.T) {
	resp := ParseResponse(&RawResponse{})
	assert.Equal(t, 0, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.Equal(t, "", resp.Header("anything"))
}

func TestResponse_BodyJSON(t *testing.T) {
	resp := ParseResponse(raw(200, "\r\n", `{"e":"10001"}`))

	v, err := resp.BodyJSON()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"e": "10001"}, v)
}

func TestResponse_StatusClasses(t *testing.T) {
	assert.True(t, (&Response{StatusCode: 404}).IsClientError())
	assert.True(t, (&Response{StatusCode: 503}).IsServerError())
	assert.False(t, (&Response{StatusCode: 200}).IsRedirect())
}
