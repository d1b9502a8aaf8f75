package sos

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	// chunkSize is the column width of encrypted output
	chunkSize = 64
	pemType   = "RSA PUBLIC KEY"
)

var (
	// ErrNoKey is returned when encrypting before a key was set
	ErrNoKey = errors.New("no public key loaded")
	// ErrInvalidKey is returned for unusable key material
	ErrInvalidKey = errors.New("invalid public key")
)

// Cipher encrypts function names with the server's RSA public key
type Cipher struct {
	key  *rsa.PublicKey
	rand io.Reader
}

func NewCipher() *Cipher {
	return &Cipher{rand: rand.Reader}
}

// SetKey loads a public key from its hex encoded exponent and modulus
func (c *Cipher) SetKey(eHex, nHex string) error {
	e, ok := new(big.Int).SetString(strings.TrimPrefix(eHex, "0x"), 16)
	if !ok {
		return fmt.Errorf("%w: exponent %q is not hex", ErrInvalidKey, eHex)
	}
	n, ok := new(big.Int).SetString(strings.TrimPrefix(nHex, "0x"), 16)
	if !ok {
		return fmt.Errorf("%w: modulus is not hex", ErrInvalidKey)
	}

	if !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
		return fmt.Errorf("%w: exponent out of range", ErrInvalidKey)
	}
	if n.Sign() <= 0 {
		return fmt.Errorf("%w: modulus must be positive", ErrInvalidKey)
	}

	c.key = &rsa.PublicKey{N: n, E: int(e.Int64())}
	return nil
}

// PublicKey returns the loaded key, nil before SetKey or ImportKey
func (c *Cipher) PublicKey() *rsa.PublicKey {
	return c.key
}

// Encrypt encrypts msg with RSA PKCS#1 v1.5 and returns lowercase hex
// broken into 64 column lines, each terminated by a newline.
func (c *Cipher) Encrypt(msg string) (string, error) {
	if c.key == nil {
		return "", ErrNoKey
	}

	out, err := rsa.EncryptPKCS1v15(c.rand, c.key, []byte(msg))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt: %w", err)
	}

	return chunk(hex.EncodeToString(out), chunkSize), nil
}

// ExportKey serializes the loaded key as a PEM encoded PKCS#1 public key
func (c *Cipher) ExportKey() (string, error) {
	if c.key == nil {
		return "", ErrNoKey
	}
	block := &pem.Block{
		Type:  pemType,
		Bytes: x509.MarshalPKCS1PublicKey(c.key),
	}
	return string(pem.EncodeToMemory(block)), nil
}

// ImportKey loads a key previously produced by ExportKey
func (c *Cipher) ImportKey(data string) error {
	block, _ := pem.Decode([]byte(data))
	if block == nil || block.Type != pemType {
		return fmt.Errorf("%w: expected %s PEM block", ErrInvalidKey, pemType)
	}

	key, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	c.key = key
	return nil
}

func chunk(s string, size int) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/size + 1)
	for len(s) > size {
		b.WriteString(s[:size])
		b.WriteByte('\n')
		s = s[size:]
	}
	if s != "" {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String()
}
