// internal/session/session.go
//
// Session tracks whether the user is authenticated. The state is derived
// from a locally persisted token marker: presence of a stored token is
// treated as sufficient proof of authentication, with no expiry or
// refresh modeled.

package session

import (
	"context"
	"strings"

	"github.com/example/swiftcart/internal/catalog"
)

// Status is the resolution state of the session.
type Status int

const (
	// StatusUnresolved holds from boot until the persisted credential
	// check completes. Gated screens show a neutral loading indicator
	// instead of redirecting while unresolved.
	StatusUnresolved Status = iota
	StatusAnonymous
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unresolved"
	}
}

// TokenStore persists the opaque credential marker.
type TokenStore interface {
	Put(token string) error
	Get() (string, error)
	Delete() error
}

// LoginFunc exchanges credentials for a token. The catalog client's Login
// satisfies it.
type LoginFunc func(ctx context.Context, creds catalog.Credentials) (string, error)

// Logger receives persistence problems the session swallows.
type Logger interface {
	Warn(format string, args ...any)
}

// Session is the authentication state container.
type Session struct {
	status Status
	tokens TokenStore
	login  LoginFunc
	log    Logger
}

// New builds an unresolved session.
func New(tokens TokenStore, login LoginFunc, log Logger) *Session {
	return &Session{status: StatusUnresolved, tokens: tokens, login: login, log: log}
}

// ReadToken fetches the persisted credential marker without touching
// session state, so it is safe to call from a background goroutine. A
// read failure yields the empty marker; it is logged, not surfaced.
func (s *Session) ReadToken() string {
	token, err := s.tokens.Get()
	if err != nil {
		s.warn("session restore failed: %v", err)
		return ""
	}
	return token
}

// Resolve applies a credential marker: a non-empty token authenticates,
// anything else resolves to anonymous.
func (s *Session) Resolve(token string) {
	if strings.TrimSpace(token) != "" {
		s.status = StatusAuthenticated
		return
	}
	s.status = StatusAnonymous
}

// Initialize resolves the session from the persisted credential marker.
func (s *Session) Initialize() {
	s.Resolve(s.ReadToken())
}

// Exchange performs the credential exchange and persists the returned
// token without touching session state; the caller applies the result
// with Resolve. Like ReadToken, it is safe off the main loop.
func (s *Session) Exchange(ctx context.Context, creds catalog.Credentials) (string, error) {
	token, err := s.login(ctx, creds)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Put(token); err != nil {
		// The in-memory session still authenticates; only the next boot
		// will ask for credentials again.
		s.warn("session persist failed: %v", err)
	}
	return token, nil
}

// Login delegates to the catalog login operation. Success persists the
// token and marks the session authenticated; failure leaves it anonymous
// and returns the error for the login screen to display.
func (s *Session) Login(ctx context.Context, creds catalog.Credentials) error {
	token, err := s.Exchange(ctx, creds)
	if err != nil {
		s.status = StatusAnonymous
		return err
	}
	s.Resolve(token)
	return nil
}

// Logout clears the persisted token and marks the session anonymous.
// Logging out while anonymous is a no-op.
func (s *Session) Logout() {
	if err := s.tokens.Delete(); err != nil {
		s.warn("session token delete failed: %v", err)
	}
	s.status = StatusAnonymous
}

// Status reports the current resolution state.
func (s *Session) Status() Status { return s.status }

// Resolved reports whether the boot-time credential check has completed.
func (s *Session) Resolved() bool { return s.status != StatusUnresolved }

// Authenticated reports whether the session holds credentials.
func (s *Session) Authenticated() bool { return s.status == StatusAuthenticated }

func (s *Session) warn(format string, args ...any) {
	if s.log == nil {
		return
	}
	s.log.Warn(format, args...)
}
