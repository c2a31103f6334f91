// Package session holds the caller's bearer token and keeps it in a durable
// Store so it survives restarts.
//
// A Session is an explicit object: it is created once, loaded at start-up,
// handed to whatever needs the token and cleared on sign-out.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultKey is the fixed key the token is stored under.
const DefaultKey = "auth_token"

// ErrNotFound is returned by a Store when nothing is stored under a key.
var ErrNotFound = errors.New("session: not found")

// Store is durable key/value storage for tokens.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, token string) error
	Delete(ctx context.Context, key string) error
}

type Session struct {
	store Store
	key   string
	now   func() time.Time

	mu    sync.RWMutex
	token string
}

// New creates a session bound to key in store. An empty key uses DefaultKey.
func New(store Store, key string) *Session {
	if key == "" {
		key = DefaultKey
	}

	return &Session{store: store, key: key, now: time.Now}
}

// Key is the storage key of this session.
func (s *Session) Key() string { return s.key }

// Load reads the stored token. An invalid or expired token is removed from the
// store and the session stays signed out.
func (s *Session) Load(ctx context.Context) error {
	tok, err := s.store.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.set("")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if !TokenValid(tok, s.now()) {
		s.set("")
		return s.store.Delete(ctx, s.key)
	}
	s.set(tok)

	return nil
}

// Token returns the current token or an empty string when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// IsAuthenticated reports whether the session holds a token that is still valid.
func (s *Session) IsAuthenticated() bool {
	return TokenValid(s.Token(), s.now())
}

// SetToken stores token. An invalid token signs the session out instead.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if !TokenValid(token, s.now()) {
		return s.Clear(ctx)
	}
	if err := s.store.Put(ctx, s.key, token); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.set(token)

	return nil
}

// Clear signs the session out and removes the stored token.
func (s *Session) Clear(ctx context.Context) error {
	s.set("")
	if err := s.store.Delete(ctx, s.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

func (s *Session) set(tok string) {
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// TokenValid reports whether token can be used at now. Any non-empty token is
// accepted; a JWT carrying an exp claim must not have expired. Signatures are
// not checked here, the backend does that.
func TokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// opaque token
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}

	return now.Before(claims.ExpiresAt.Time)
}
