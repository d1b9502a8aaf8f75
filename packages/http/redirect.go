package http

import (
	"net/http"
	"strings"
)

// IsRedirect reports whether status is in the 3xx range
func IsRedirect(status int) bool {
	return status >= 300 && status < 400
}

// Origin returns scheme and authority of rawURL: everything before the
// first "/", "?" or "#" that follows "://". A bare "scheme://host" is
// returned as is.
func Origin(rawURL string) string {
	first := strings.Index(rawURL, "/")
	if first < 0 || first+2 > len(rawURL) {
		return rawURL
	}
	i := strings.IndexAny(rawURL[first+2:], "/?#")
	if i < 0 {
		return rawURL
	}
	return rawURL[:first+2+i]
}

// ResolveLocation computes the absolute URL a Location header points to
// when it was received in response to base.
//
//	?x=1, #frag   appended to base
//	//host/p      base scheme prepended
//	/p            base origin prepended
//	http...       used verbatim
//	p             replaces the last path segment of base
func ResolveLocation(base, location string) string {
	switch {
	case location == "":
		return base
	case location[0] == '?' || location[0] == '#':
		return base + location
	case strings.HasPrefix(location, "//"):
		switch {
		case strings.HasPrefix(base, "https"):
			return "https:" + location
		case strings.HasPrefix(base, "http:"):
			return "http:" + location
		}
		return location
	case location[0] == '/':
		return Origin(base) + location
	case strings.HasPrefix(location, "http"):
		return location
	}

	folder := strings.LastIndex(base, "/")
	if folder < 0 {
		return location
	}
	return base[:folder] + "/" + location
}

// NextHop returns the method and body for the request that follows a
// redirect with the given status. 301, 302 and 303 switch to a bodiless
// GET, any other status repeats the request unchanged.
func NextHop(status int, method string, body []byte) (string, []byte) {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
		return http.MethodGet, nil
	}
	return method, body
}
