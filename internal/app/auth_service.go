// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"usergate/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUsersExist indicates that the initial user has already been created.
	ErrUsersExist = errors.New("users already exist")
	// ErrPasswordAuthDisabled indicates that password accounts are not in use.
	ErrPasswordAuthDisabled = errors.New("password authentication disabled")
	// ErrMissingCredentials indicates that an email or password was left empty.
	ErrMissingCredentials = errors.New("email and password are required")
)

// DefaultSessionTTL is how long a session lives after login.
const DefaultSessionTTL = 24 * time.Hour

// AuthService handles login, logout and session lookup.
//
// Concurrent calls are not serialized: a logout does not cancel a login that
// is still waiting on its authenticator, and whichever write reaches the
// session repository last wins.
type AuthService struct {
	auth     Authenticator
	users    domain.UserRepository
	sessions domain.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new authentication service. users may be nil when
// password accounts are not used.
func NewAuthService(auth Authenticator, users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		auth:     auth,
		users:    users,
		sessions: sessions,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
}

// WithSessionTTL sets the lifetime of new sessions.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// Login authenticates the credentials and creates a session. On failure no
// session is written.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	profile, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.LoginWithProfile(ctx, profile)
}

// LoginWithProfile creates a session for a profile authenticated elsewhere,
// e.g. by an SSO provider.
func (s *AuthService) LoginWithProfile(ctx context.Context, profile domain.Profile) (*domain.Session, error) {
	if profile.Email == "" {
		return nil, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &domain.Session{
		Profile:   profile,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Logout invalidates a session. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// ValidateSession returns the live session for token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || !ConstantTimeCompare(session.Token, token) {
		return nil, ErrSessionNotFound
	}

	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// CleanupExpired removes every expired session.
func (s *AuthService) CleanupExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

// CreateInitialUser creates the first password user if no users exist.
func (s *AuthService) CreateInitialUser(ctx context.Context, profile domain.Profile, password string) (*domain.User, error) {
	if s.users == nil {
		return nil, ErrPasswordAuthDisabled
	}
	email := normalizeEmail(profile.Email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsersExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Nickname:     profile.Nickname,
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
