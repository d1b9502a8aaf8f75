package http

import "strings"

// cookieAttributes are Set-Cookie attribute names that carry a value but are not cookies
var cookieAttributes = map[string]bool{
	"expires":  true,
	"max-age":  true,
	"domain":   true,
	"path":     true,
	"samesite": true,
}

// CookieJar is a flat name to value store replayed on every request.
// There is no domain, path or expiry scoping.
type CookieJar struct {
	cookies map[string]string
	order   []string
}

func NewCookieJar() *CookieJar {
	return &CookieJar{
		cookies: make(map[string]string),
	}
}

// Get returns the value of the named cookie, or "" if it is not set
func (j *CookieJar) Get(name string) string {
	return j.cookies[name]
}

// Set stores or overwrites a cookie
func (j *CookieJar) Set(name, value string) {
	if _, ok := j.cookies[name]; !ok {
		j.order = append(j.order, name)
	}
	j.cookies[name] = value
}

// SetAll imports cookies, overwriting existing names
func (j *CookieJar) SetAll(cookies map[string]string) {
	for k, v := range cookies {
		j.Set(k, v)
	}
}

// All exports a copy of the jar
func (j *CookieJar) All() map[string]string {
	m := make(map[string]string, len(j.cookies))
	for k, v := range j.cookies {
		m[k] = v
	}
	return m
}

func (j *CookieJar) Len() int {
	return len(j.cookies)
}

func (j *CookieJar) Clear() {
	j.cookies = make(map[string]string)
	j.order = nil
}

// Header renders the jar as a Cookie header value. It is empty for an empty jar.
func (j *CookieJar) Header() string {
	pairs := make([]string, 0, len(j.order))
	for _, name := range j.order {
		pairs = append(pairs, name+"="+j.cookies[name])
	}
	return strings.Join(pairs, "; ")
}

// Merge records the cookies carried by one Set-Cookie value. A value folded
// from several lines with commas is handled too: a comma only separates
// cookies when the text after it starts with "name=", so commas inside
// values and Expires dates survive. Attribute-free segments such as
// "HttpOnly" and "Secure" are skipped.
func (j *CookieJar) Merge(setCookie string) {
	for _, part := range strings.Split(setCookie, ";") {
		for _, segment := range splitFolded(part) {
			name, value, ok := strings.Cut(segment, "=")
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			if name == "" || cookieAttributes[strings.ToLower(name)] {
				continue
			}
			j.Set(name, strings.TrimSpace(value))
		}
	}
}

// splitFolded splits s at commas that are followed by a "name=" pair
func splitFolded(s string) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i < len(s); i++ {
		if s[i] != ',' || !startsWithPair(s[i+1:]) {
			continue
		}
		out = append(out, s[start:i])
		start = i + 1
	}
	return append(out, s[start:])
}

// startsWithPair reports whether s begins with a cookie name followed by "="
func startsWithPair(s string) bool {
	s = strings.TrimLeft(s, " \t")
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return false
	}
	return !strings.ContainsAny(s[:eq], " \t,")
}
