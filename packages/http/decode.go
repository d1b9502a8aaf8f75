package http

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// decodeBody wraps r in a decompressor for encoding. It returns nil for
// identity or unknown encodings, leaving the body untouched.
func decodeBody(encoding string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return zr, nil
	case "deflate":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("deflate body: %w", err)
		}
		return zr, nil
	case "br":
		return io.NopCloser(brotli.NewReader(r)), nil
	case "zstd":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd body: %w", err)
		}
		return zr.IOReadCloser(), nil
	}
	return nil, nil
}

// decodeBytes decodes a complete body. ok is false when encoding is not one
// the engine decodes; err is set when the body does not match its encoding.
func decodeBytes(encoding string, body []byte) ([]byte, bool, error) {
	r, err := decodeBody(encoding, bytes.NewReader(body))
	if err != nil || r == nil {
		return nil, false, err
	}
	defer r.Close()

	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("%s body: %w", encoding, err)
	}
	return decoded, true, nil
}
