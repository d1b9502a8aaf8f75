package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Lifetime is how long a saved session stays usable on the remote side
const Lifetime = 1920 * time.Second

var (
	// ErrNotFound is returned by stores when no session is saved for an owner
	ErrNotFound = errors.New("session not found")
	// ErrExpired means the session is older than Lifetime
	ErrExpired = errors.New("session expired")
	// ErrIncomplete means cookies or key material are missing
	ErrIncomplete = errors.New("session incomplete")
	// ErrNilSession is returned when saving a nil session
	ErrNilSession = errors.New("nil session")
)

// Session is an exported snapshot of client state
type Session struct {
	ID      string            `json:"id" yaml:"id"`
	Cookies map[string]string `json:"cookies" yaml:"cookies"`
	Key     string            `json:"key" yaml:"key"`
	SavedAt time.Time         `json:"savedAt" yaml:"savedAt"`
}

// New creates a session snapshot stamped with now. The cookie map is copied.
func New(cookies map[string]string, key string, now time.Time) *Session {
	copied := make(map[string]string, len(cookies))
	for k, v := range cookies {
		copied[k] = v
	}
	return &Session{
		ID:      uuid.NewString(),
		Cookies: copied,
		Key:     key,
		SavedAt: now,
	}
}

// ExpiresAt is the first second at which the session is no longer usable
func (s *Session) ExpiresAt() time.Time {
	return time.Unix(s.SavedAt.Unix(), 0).Add(Lifetime)
}

// Check returns nil when the session can be restored at now
func (s *Session) Check(now time.Time) error {
	if s == nil || s.SavedAt.IsZero() {
		return ErrNotFound
	}
	if now.Unix() >= s.ExpiresAt().Unix() {
		return ErrExpired
	}
	if len(s.Cookies) == 0 || s.Key == "" {
		return ErrIncomplete
	}
	return nil
}

// Usable reports whether Check passes
func (s *Session) Usable(now time.Time) bool {
	return s.Check(now) == nil
}

// Store persists one session per owner
type Store interface {
	Save(ctx context.Context, owner string, s *Session) error
	Load(ctx context.Context, owner string) (*Session, error)
	Delete(ctx context.Context, owner string) error
}

// Restore loads the owner's session and returns it only if it is usable at now
func Restore(ctx context.Context, store Store, owner string, now time.Time) (*Session, bool) {
	s, err := store.Load(ctx, owner)
	if err != nil {
		return nil, false
	}
	if !s.Usable(now) {
		return nil, false
	}
	return s, true
}
