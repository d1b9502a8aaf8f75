package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaders_CaseInsensitive(t *testing.T) {
	h := NewHeaders()
	h.Set("content-type", "application/json")

	v, ok := h.Get("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", v)
}

func TestHeaders_LastWriteWins(t *testing.T) {
	h := NewHeaders()
	h.Set("content-type", "text/plain")
	h.Set("Content-Type", "application/json")

	assert.Equal(t, 1, h.Len())
	v, _ := h.Get("CONTENT-TYPE")
	assert.Equal(t, "application/json", v)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, h.Map())
}

func TestHeaders_Del(t *testing.T) {
	h := NewHeaders()
	h.Set("A", "1")
	h.Set("B", "2")
	h.Del("a")

	_, ok := h.Get("A")
	assert.False(t, ok)
	assert.Equal(t, 1, h.Len())

	// deleting an absent header is a no-op
	h.Del("missing")
	assert.Equal(t, 1, h.Len())
}

func TestHeaders_EachKeepsInsertionOrder(t *testing.T) {
	h := NewHeaders()
	h.Set("X-First", "1")
	h.Set("X-Second", "2")
	h.Set("x-first", "3")

	var names []string
	h.Each(func(name, value string) {
		names = append(names, name+"="+value)
	})

	assert.Equal(t, []string{"x-first=3", "X-Second=2"}, names)
}

func TestDefaultHeaders(t *testing.T) {
	h := DefaultHeaders()

	ua, ok := h.Get("user-agent")
	assert.True(t, ok)
	assert.Equal(t, DefaultUserAgent, ua)

	_, ok = h.Get("Host")
	assert.False(t, ok)
	_, ok = h.Get("Referer")
	assert.False(t, ok)

	v, _ := h.Get("dnt")
	assert.Equal(t, "1", v)
}

func TestHeaders_Clone(t *testing.T) {
	h := NewHeaders()
	h.Set("A", "1")

	c := h.Clone()
	c.Set("A", "2")

	v, _ := h.Get("A")
	assert.Equal(t, "1", v)
}
