package sos

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/opensos/packages/session"
)

// SaveSession stores the current cookies and public key for owner
func (c *Client) SaveSession(ctx context.Context, store session.Store, owner string) error {
	key, err := c.cipher.ExportKey()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	s := session.New(c.http.Cookies().All(), key, c.now())
	if err := store.Save(ctx, owner, s); err != nil {
		return err
	}

	c.log.Debug("session saved", "owner", owner, "sessionId", s.ID, "cookies", len(s.Cookies))
	return nil
}

// LoadSession restores a saved session for owner. It returns false when
// nothing usable is stored, leaving the client untouched.
func (c *Client) LoadSession(ctx context.Context, store session.Store, owner string) bool {
	s, ok := session.Restore(ctx, store, owner, c.now())
	if !ok {
		return false
	}

	if err := c.cipher.ImportKey(s.Key); err != nil {
		c.log.Warn("stored session key rejected", "owner", owner, "error", err.Error())
		return false
	}
	c.http.Cookies().SetAll(s.Cookies)

	c.log.Debug("session restored", "owner", owner, "sessionId", s.ID)
	return true
}
