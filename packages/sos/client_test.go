package sos

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/opensos/packages/session"
)

type call struct {
	path     string
	method   string
	function string
	data     string
	nocache  string
	qooxdoo  string
	cookie   string
}

type fakeSOS struct {
	t     *testing.T
	key   *rsa.PrivateKey
	mu    sync.Mutex
	calls []call
}

func newFakeSOS(t *testing.T) (*fakeSOS, *httptest.Server) {
	f := &fakeSOS{t: t, key: generateKey(t)}
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeSOS) serve(w http.ResponseWriter, r *http.Request) {
	c := call{
		path:    r.URL.Path,
		method:  r.Method,
		nocache: r.URL.Query().Get("nocache"),
		qooxdoo: r.Header.Get("X-Qooxdoo-Response-Type"),
		cookie:  r.Header.Get("Cookie"),
	}
	if fn := r.URL.Query().Get("function"); fn != "" {
		c.function = decrypt(f.t, f.key, fn)
	}
	if r.Method == http.MethodPost {
		c.data = r.PostFormValue("data")
	}

	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/" + HandshakeEndpoint + ".php":
		e, n := keyHex(f.key)
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "s3ss10n", Path: "/"})
		_ = json.NewEncoder(w).Encode(map[string]string{"e": e, "n": n})
	case "/api/login.php":
		_, _ = w.Write([]byte(`{"status":"ok","user":"jan"}`))
	case "/api/logout.php":
		_, _ = w.Write([]byte(`{"status":"bye"}`))
	case "/api/broken.php":
		_, _ = w.Write([]byte(`not json`))
	case "/api/down.php":
		http.Error(w, `{"error":"down"}`, http.StatusServiceUnavailable)
	default:
		_, _ = w.Write([]byte(`{"endpoint":"` + r.URL.Path + `"}`))
	}
}

func (f *fakeSOS) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func fixedClock(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestClient_StartAndLogin(t *testing.T) {
	fake, server := newFakeSOS(t)
	ctx := context.Background()

	c := New(server.URL+"/api", WithClock(fixedClock(1_700_000_000)))
	require.NoError(t, c.Start(ctx))
	assert.Equal(t, fake.key.N, c.Cipher().PublicKey().N)
	assert.Equal(t, "s3ss10n", c.HTTP().Cookies().Get("PHPSESSID"))

	out, err := c.Login(ctx, "login", map[string]string{"user": "jan", "pass": "secret"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])

	got := fake.last()
	assert.Equal(t, "/api/login.php", got.path)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "login", got.function)
	assert.Equal(t, "1700000000", got.nocache)
	assert.JSONEq(t, `{"user":"jan","pass":"secret"}`, got.data)
	assert.Equal(t, "application/json", got.qooxdoo)
	assert.Equal(t, "PHPSESSID=s3ss10n", got.cookie)
}

func TestClient_Endpoints(t *testing.T) {
	fake, server := newFakeSOS(t)
	ctx := context.Background()

	c := New(server.URL + "/api/")
	require.NoError(t, c.Start(ctx))

	tests := []struct {
		name string
		call func() (map[string]any, error)
		path string
	}{
		{"classification", func() (map[string]any, error) { return c.Classification(ctx, "getMarks", nil) }, "/api/classification.php"},
		{"inout", func() (map[string]any, error) { return c.Inout(ctx, "getEntries", nil) }, "/api/inout.php"},
		{"st", func() (map[string]any, error) { return c.St(ctx, "getAbsence", nil) }, "/api/st.php"},
		{"tp", func() (map[string]any, error) { return c.Tp(ctx, "getSummary", nil) }, "/api/tp.php"},
		{"info", func() (map[string]any, error) { return c.Info(ctx, "getUser", map[string]string{"id": "1"}) }, "/api/info.php"},
		{"classbook", func() (map[string]any, error) { return c.Classbook(ctx, "getBook", nil) }, "/api/classbook.php"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.path, out["endpoint"])

			got := fake.last()
			assert.Equal(t, tt.path, got.path)
			assert.Equal(t, http.MethodPost, got.method)
		})
	}
}

func TestClient_Logout(t *testing.T) {
	fake, server := newFakeSOS(t)
	c := New(server.URL + "/api")

	out, err := c.Logout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bye", out["status"])

	got := fake.last()
	assert.Equal(t, http.MethodGet, got.method)
	assert.Empty(t, got.function)
}

func TestClient_CallWithoutKey(t *testing.T) {
	_, server := newFakeSOS(t)
	c := New(server.URL + "/api")

	_, err := c.Login(context.Background(), "login", nil)
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestClient_BadResponses(t *testing.T) {
	_, server := newFakeSOS(t)
	ctx := context.Background()

	c := New(server.URL + "/api")
	require.NoError(t, c.Start(ctx))

	_, err := c.Call(ctx, "broken", "x", nil)
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = c.Call(ctx, "down", "x", nil)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_StartRejectsInvalidHandshake(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"e":"10001"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrBadResponse)
	assert.Nil(t, c.Cipher().PublicKey())
}

func TestClient_SaveAndLoadSession(t *testing.T) {
	fake, server := newFakeSOS(t)
	ctx := context.Background()
	store := session.NewMemoryStore()

	saved := int64(1_700_000_000)
	first := New(server.URL+"/api", WithClock(fixedClock(saved)))
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.SaveSession(ctx, store, "jan"))

	second := New(server.URL+"/api", WithClock(fixedClock(saved+1919)))
	require.True(t, second.LoadSession(ctx, store, "jan"))
	assert.Equal(t, "s3ss10n", second.HTTP().Cookies().Get("PHPSESSID"))

	_, err := second.Info(ctx, "getUser", nil)
	require.NoError(t, err)
	got := fake.last()
	assert.Equal(t, "getUser", got.function)
	assert.Equal(t, "PHPSESSID=s3ss10n", got.cookie)

	expired := New(server.URL+"/api", WithClock(fixedClock(saved+1921)))
	assert.False(t, expired.LoadSession(ctx, store, "jan"))
	assert.Equal(t, 0, expired.HTTP().Cookies().Len())
	assert.Nil(t, expired.Cipher().PublicKey())
}

func TestClient_SaveSessionWithoutKey(t *testing.T) {
	c := New("http://localhost")
	err := c.SaveSession(context.Background(), session.NewMemoryStore(), "jan")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestClient_LoadSessionRejectsBadKey(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	require.NoError(t, store.Save(ctx, "jan", session.New(map[string]string{"a": "1"}, "garbage", now)))

	c := New("http://localhost", WithClock(func() time.Time { return now }))
	assert.False(t, c.LoadSession(ctx, store, "jan"))
	assert.Equal(t, 0, c.HTTP().Cookies().Len())
}
