// Package sos is the client for the SOS school information system API.
//
// A session starts with a handshake that hands out an RSA public key. Every
// later call names its server-side function encrypted with that key, while
// the payload travels as plain JSON in a form encoded body.
package sos
