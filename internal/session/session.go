// Package session owns the process-wide authentication state.
//
// A Store is created once at startup, bootstrapped once from the persisted
// credential, and afterwards changes only through Login and Logout. Those
// three operations are the only writers of the credential slot on behalf of
// the session; all mutations are serialized, so overlapping logins resolve
// as last write wins.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/naveenspark/biblio/internal/credential"
	"github.com/naveenspark/biblio/internal/nav"
	"github.com/naveenspark/biblio/internal/token"
	"github.com/naveenspark/biblio/pkg/domain"
)

// ErrInvalidCredential is returned by Login when the credential is rejected.
var ErrInvalidCredential = errors.New("invalid credential")

// Session is a snapshot of the authentication state.
// Principal is non-nil iff Authenticated.
type Session struct {
	Authenticated bool
	Principal     *domain.Principal
	Loading       bool
}

// Role returns the principal's role, or RoleAnonymous when logged out.
func (s Session) Role() domain.Role {
	if !s.Authenticated || s.Principal == nil {
		return domain.RoleAnonymous
	}
	return s.Principal.Role
}

// Decoder turns a raw credential into a principal.
type Decoder interface {
	Decode(raw string) (domain.Principal, error)
}

// Store holds the current Session.
type Store struct {
	creds credential.Store
	codec Decoder
	nav   nav.Navigator
	log   *slog.Logger

	mu    sync.RWMutex
	state Session
	boot  sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithNavigator sets where Logout sends its hard redirect.
func WithNavigator(n nav.Navigator) Option {
	return func(s *Store) { s.nav = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store in its initial loading state.
func New(creds credential.Store, codec Decoder, opts ...Option) *Store {
	s := &Store{
		creds: creds,
		codec: codec,
		nav:   nav.Func(func(string) {}),
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		state: Session{Loading: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bootstrap restores the session from the persisted credential. Only the
// first call does anything. It never fails: an absent, malformed or expired
// credential leaves the session unauthenticated, and an expired one is
// evicted from the slot.
func (s *Store) Bootstrap() {
	s.boot.Do(s.bootstrap)
}

func (s *Store) bootstrap() {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.state.Loading = false }()

	raw, ok, err := s.creds.Load()
	if err != nil {
		s.log.Warn("session bootstrap: read credential", "err", err)
		return
	}
	if !ok {
		s.log.Debug("session bootstrap: no credential")
		return
	}

	p, err := s.codec.Decode(raw)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			if clearErr := s.creds.Clear(); clearErr != nil {
				s.log.Warn("session bootstrap: evict expired credential", "err", clearErr)
			}
		}
		s.log.Info("session bootstrap: credential rejected", "err", err)
		return
	}

	s.state.Authenticated = true
	s.state.Principal = &p
	s.log.Info("session restored", "email", p.Email, "role", p.Role.String())
}

// Login adopts raw as the credential. On failure nothing changes.
func (s *Store) Login(raw string) (domain.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.codec.Decode(raw)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("session.Login: %w: %w", ErrInvalidCredential, err)
	}
	if err := s.creds.Save(raw); err != nil {
		return domain.Principal{}, fmt.Errorf("session.Login: %w", err)
	}

	s.state.Authenticated = true
	s.state.Principal = &p
	s.log.Info("login", "email", p.Email, "role", p.Role.String())
	return p, nil
}

// Logout evicts the credential, clears the session and hard-redirects to
// the login screen. The session is cleared even if eviction fails; the
// eviction error is returned.
func (s *Store) Logout() error {
	s.mu.Lock()
	err := s.creds.Clear()
	var email string
	if s.state.Principal != nil {
		email = s.state.Principal.Email
	}
	s.state.Authenticated = false
	s.state.Principal = nil
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("logout: evict credential", "err", err)
		err = fmt.Errorf("session.Logout: %w", err)
	}
	s.log.Info("logout", "email", email)
	s.nav.Redirect(nav.Login)
	return err
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	if snap.Principal != nil {
		p := *snap.Principal
		snap.Principal = &p
	}
	return snap
}
