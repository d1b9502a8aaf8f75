package http

import "strings"

// DefaultUserAgent is the browser identity sent with every request unless overridden
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/87.0.4280.88 Safari/537.36"

type headerEntry struct {
	name  string
	value string
}

// Headers is the outbound header store. Keys are matched case-insensitively,
// the casing of the most recent write is what goes on the wire.
type Headers struct {
	entries map[string]headerEntry
	order   []string
}

func NewHeaders() *Headers {
	return &Headers{
		entries: make(map[string]headerEntry),
	}
}

// DefaultHeaders returns a store seeded with the browser-like header set.
// Host and Referer are filled in per request.
func DefaultHeaders() *Headers {
	h := NewHeaders()
	h.Set("Connection", "keep-alive")
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache")
	h.Set("DNT", "1")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("User-Agent", DefaultUserAgent)
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3")
	h.Set("Sec-Fetch-Site", "same-site")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Accept-Language", "cs-CZ,cs;q=0.9,en;q=0.8")
	return h
}

// Set stores value under name, replacing any entry whose name differs only in case.
func (h *Headers) Set(name, value string) {
	key := strings.ToLower(name)
	if _, ok := h.entries[key]; !ok {
		h.order = append(h.order, key)
	}
	h.entries[key] = headerEntry{name: name, value: value}
}

// SetAll sets every header in headers
func (h *Headers) SetAll(headers map[string]string) {
	for k, v := range headers {
		h.Set(k, v)
	}
}

// Get returns the value stored for name and whether it is present
func (h *Headers) Get(name string) (string, bool) {
	e, ok := h.entries[strings.ToLower(name)]
	return e.value, ok
}

// Del removes name so it is no longer sent
func (h *Headers) Del(name string) {
	key := strings.ToLower(name)
	if _, ok := h.entries[key]; !ok {
		return
	}
	delete(h.entries, key)
	for i, k := range h.order {
		if k == key {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func (h *Headers) Len() int {
	return len(h.entries)
}

// Each calls fn for every header in insertion order
func (h *Headers) Each(fn func(name, value string)) {
	for _, key := range h.order {
		e := h.entries[key]
		fn(e.name, e.value)
	}
}

// Map returns a copy of the store keyed by display name
func (h *Headers) Map() map[string]string {
	m := make(map[string]string, len(h.entries))
	h.Each(func(name, value string) {
		m[name] = value
	})
	return m
}

// Clone returns an independent copy of the store
func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	h.Each(c.Set)
	return c
}
