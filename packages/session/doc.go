// Package session persists and restores authenticated client state.
//
// A Session bundles the cookie jar contents, the serialized public key used
// to encrypt call names, and the time it was saved. Restoring refuses
// sessions older than Lifetime or missing either cookies or key material.
package session
