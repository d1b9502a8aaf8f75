// Package http provides the request engine used by the opensos clients.
//
// Instead of letting net/http own the request lifecycle it manages:
//   - An outbound header store seeded with browser-like defaults
//   - A flat cookie jar filled from Set-Cookie and replayed on every request
//   - Manual redirect following with relative Location resolution
//   - Parsing of raw response header blocks
//
// The network itself is reached through the Transport interface; the
// default HTTPTransport wraps a single net/http client handle.
package http
