// Package session holds the client's login token and decides whether the
// protected screens may be shown.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrAuthAbsent is returned when no usable token is held.
var ErrAuthAbsent = errors.New("session: not logged in")

// Gate is the process-wide holder of the current token. It is safe for
// concurrent use.
type Gate struct {
	mu    sync.RWMutex
	store Store
	rec   Record
	now   func() time.Time
}

// Open loads any persisted record. An expired record is discarded.
func Open(store Store) (*Gate, error) {
	g := &Gate{store: store, now: time.Now}
	rec, err := store.Load()
	if err != nil {
		return nil, err
	}
	if g.usable(rec) {
		g.rec = rec
	} else if rec.Token != "" {
		if err := store.Clear(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gate) usable(rec Record) bool {
	if strings.TrimSpace(rec.Token) == "" {
		return false
	}
	return rec.ExpiresAt.IsZero() || g.now().Before(rec.ExpiresAt)
}

// Login stores rec and makes it current.
func (g *Gate) Login(rec Record) error {
	if strings.TrimSpace(rec.Token) == "" {
		return fmt.Errorf("session: empty token")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Save(rec); err != nil {
		return err
	}
	g.rec = rec
	return nil
}

// Logout forgets the current token.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rec = Record{}
	return g.store.Clear()
}

// Present reports whether a usable token is held.
func (g *Gate) Present() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.usable(g.rec)
}

// Token returns the current token or ErrAuthAbsent.
func (g *Gate) Token() (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.usable(g.rec) {
		return "", ErrAuthAbsent
	}
	return g.rec.Token, nil
}

// Current returns the held record and whether it is usable.
func (g *Gate) Current() (Record, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rec, g.usable(g.rec)
}
