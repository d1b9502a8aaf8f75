package sos

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func keyHex(key *rsa.PrivateKey) (string, string) {
	return fmt.Sprintf("%x", key.E), key.N.Text(16)
}

func decrypt(t *testing.T, key *rsa.PrivateKey, encrypted string) string {
	t.Helper()
	raw, err := hex.DecodeString(strings.ReplaceAll(encrypted, "\n", ""))
	require.NoError(t, err)
	plain, err := rsa.DecryptPKCS1v15(rand.Reader, key, raw)
	require.NoError(t, err)
	return string(plain)
}

func TestCipher_EncryptRoundTrip(t *testing.T) {
	key := generateKey(t)
	e, n := keyHex(key)

	c := NewCipher()
	require.NoError(t, c.SetKey(e, n))

	out, err := c.Encrypt("login")
	require.NoError(t, err)
	assert.Equal(t, "login", decrypt(t, key, out))
}

func TestCipher_EncryptFormat(t *testing.T) {
	key := generateKey(t)
	e, n := keyHex(key)

	c := NewCipher()
	require.NoError(t, c.SetKey(e, n))

	out, err := c.Encrypt("classification")
	require.NoError(t, err)

	// 2048 bit key gives 256 bytes, 512 hex digits, 8 full lines
	assert.True(t, strings.HasSuffix(out, "\n"))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 8)
	for _, line := range lines {
		assert.Len(t, line, 64)
		assert.Equal(t, strings.ToLower(line), line)
	}
}

func TestCipher_NoKey(t *testing.T) {
	c := NewCipher()

	_, err := c.Encrypt("login")
	assert.ErrorIs(t, err, ErrNoKey)

	_, err = c.ExportKey()
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestCipher_SetKeyRejectsGarbage(t *testing.T) {
	c := NewCipher()

	assert.ErrorIs(t, c.SetKey("zz", "abcd"), ErrInvalidKey)
	assert.ErrorIs(t, c.SetKey("10001", "xyz"), ErrInvalidKey)
	assert.ErrorIs(t, c.SetKey("1", "abcd"), ErrInvalidKey)
	assert.Nil(t, c.PublicKey())
}

func TestCipher_ExportImport(t *testing.T) {
	key := generateKey(t)
	e, n := keyHex(key)

	src := NewCipher()
	require.NoError(t, src.SetKey(e, n))

	pemKey, err := src.ExportKey()
	require.NoError(t, err)
	assert.Contains(t, pemKey, "BEGIN RSA PUBLIC KEY")

	dst := NewCipher()
	require.NoError(t, dst.ImportKey(pemKey))
	assert.Equal(t, key.N, dst.PublicKey().N)
	assert.Equal(t, key.E, dst.PublicKey().E)

	out, err := dst.Encrypt("st")
	require.NoError(t, err)
	assert.Equal(t, "st", decrypt(t, key, out))

	assert.ErrorIs(t, dst.ImportKey("not a pem"), ErrInvalidKey)
}

func TestChunk(t *testing.T) {
	assert.Equal(t, "ab\ncd\n", chunk("abcd", 2))
	assert.Equal(t, "ab\ncd\ne\n", chunk("abcde", 2))
	assert.Equal(t, "", chunk("", 2))
}
