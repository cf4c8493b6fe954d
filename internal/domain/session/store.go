// internal/domain/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agri-oasis/storefront/internal/pkg/auth"
)

// Persisted slot names
const (
	SlotUser  = "user"
	SlotToken = "token"
)

// Slots is the durable key-value storage scoped to one client instance
type Slots interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}

// Refresher is implemented by Slots whose entries expire. Refresh extends
// the lifetime of keys and reports whether all of them still exist.
type Refresher interface {
	Refresh(ctx context.Context, keys ...string) (bool, error)
}

// AuthResponse is the body returned by the login and signup endpoints
type AuthResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Authenticator is the remote authentication service
type Authenticator interface {
	Login(ctx context.Context, email, password string, role Role) (*AuthResponse, error)
	Signup(ctx context.Context, name, email, password string, role Role) (*AuthResponse, error)
}

// Store is the single source of truth for who is logged in on one client
// instance. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	current   *Session
	slots     Slots
	auth      Authenticator
	validator *IdentityValidator
	logger    *logrus.Entry
	now       func() time.Time
}

// NewStore creates an anonymous store. Call Restore to load persisted state.
func NewStore(slots Slots, authenticator Authenticator, validator *IdentityValidator, logger *logrus.Entry) *Store {
	return &Store{
		slots:     slots,
		auth:      authenticator,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Current returns a copy of the current session, or nil when anonymous
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// IsAuthenticated reports whether a session is present
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Token returns the bearer token of the current session, or ""
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Restore loads the persisted session. Missing data yields an anonymous
// session; corrupted data is purged and logged. Only storage read failures
// are returned, and the store is anonymous in that case too.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil

	rawUser, hasUser, err := s.slots.Get(ctx, SlotUser)
	if err != nil {
		return fmt.Errorf("failed to read persisted identity: %w", err)
	}
	token, hasToken, err := s.slots.Get(ctx, SlotToken)
	if err != nil {
		return fmt.Errorf("failed to read persisted token: %w", err)
	}

	if !hasUser && !hasToken {
		return nil
	}

	sess, reason := s.decodePersisted(rawUser, hasUser, token, hasToken)
	if reason != nil {
		s.logger.WithError(fmt.Errorf("%w: %v", ErrCorruptedSession, reason)).
			Warn("Discarding persisted session")
		s.purge(ctx)
		return nil
	}

	s.current = sess
	s.logger.WithFields(logrus.Fields{
		"user_id": sess.Identity.ID,
		"role":    sess.Identity.Role,
	}).Debug("Session restored")
	return nil
}

func (s *Store) decodePersisted(rawUser string, hasUser bool, token string, hasToken bool) (*Session, error) {
	if !hasUser || strings.TrimSpace(rawUser) == "" {
		return nil, errors.New("identity slot is empty")
	}
	if !hasToken || token == "" {
		return nil, errors.New("token slot is empty")
	}
	identity, err := s.validator.Parse([]byte(rawUser))
	if err != nil {
		return nil, err
	}
	if auth.TokenExpired(token, s.now()) {
		return nil, errors.New("token expired")
	}
	return &Session{Identity: identity, Token: token}, nil
}

// Login authenticates against the remote service and, on success, replaces
// and persists the session.
func (s *Store) Login(ctx context.Context, email, password string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	resp, err := s.auth.Login(ctx, email, password, role)
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Warn("Login failed")
		return newAuthServiceError("login", "Login failed", err)
	}

	return s.establish(ctx, "login", resp)
}

// Signup registers a new account and, on success, replaces and persists the
// session. The role of the new identity is whatever the server returns.
func (s *Store) Signup(ctx context.Context, name, email, password string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	resp, err := s.auth.Signup(ctx, name, email, password, role)
	if err != nil {
		s.logger.WithError(err).WithField("email", email).Warn("Signup failed")
		return newAuthServiceError("signup", "Signup failed", err)
	}

	return s.establish(ctx, "signup", resp)
}

func (s *Store) establish(ctx context.Context, op string, resp *AuthResponse) error {
	sess, err := s.sessionFromResponse(resp)
	if err != nil {
		s.logger.WithError(err).WithField("op", op).Error("Received invalid user data from authentication service")
		return fmt.Errorf("%w: %v", ErrInvalidCredentialsResponse, err)
	}

	identityJSON, err := json.Marshal(sess.Identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// a half-written pair is never left behind: on failure both memory and
	// storage fall back to anonymous
	if err := s.slots.Set(ctx, SlotUser, string(identityJSON)); err != nil {
		s.current = nil
		s.purge(ctx)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.slots.Set(ctx, SlotToken, sess.Token); err != nil {
		s.current = nil
		s.purge(ctx)
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.current = sess
	s.logger.WithFields(logrus.Fields{
		"op":      op,
		"user_id": sess.Identity.ID,
		"role":    sess.Identity.Role,
	}).Info("Session established")
	return nil
}

func (s *Store) sessionFromResponse(resp *AuthResponse) (*Session, error) {
	if resp == nil {
		return nil, errors.New("empty response")
	}
	if resp.Token == "" {
		return nil, errors.New("response missing token")
	}
	if len(resp.User) == 0 || string(resp.User) == "null" {
		return nil, errors.New("response missing user")
	}
	identity, err := s.validator.ParseResponse(resp.User)
	if err != nil {
		return nil, err
	}
	return &Session{Identity: identity, Token: resp.Token}, nil
}

// KeepAlive extends the persisted slots of the current session. When they
// have expired in storage the in-memory session is dropped as well.
func (s *Store) KeepAlive(ctx context.Context) error {
	refresher, ok := s.slots.(Refresher)
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	alive, err := refresher.Refresh(ctx, SlotUser, SlotToken)
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !alive {
		s.logger.WithField("user_id", s.current.Identity.ID).Info("Persisted session expired")
		s.current = nil
		s.purge(ctx)
	}
	return nil
}

// Logout drops the session and its persisted slots. It never contacts the
// server and never fails; storage errors are only logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.logger.WithField("user_id", s.current.Identity.ID).Info("Session cleared")
	}
	s.current = nil
	s.purge(ctx)
}

// purge must be called with s.mu held
func (s *Store) purge(ctx context.Context) {
	if err := s.slots.Remove(ctx, SlotUser, SlotToken); err != nil {
		s.logger.WithError(err).Error("Failed to remove persisted session")
	}
}
