package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"usergate/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

const (
	// InvalidEmail is the one address the mock authenticator always rejects.
	InvalidEmail = "invalid@nothing.forever"
	// DefaultLoginDelay is the latency the mock authenticator simulates.
	DefaultLoginDelay = 1500 * time.Millisecond
)

// Authenticator turns credentials into a profile.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (domain.Profile, error)
}

// Delay blocks for d, returning early with ctx.Err() if ctx is done first.
type Delay func(ctx context.Context, d time.Duration) error

// Sleep is the production Delay.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MockAuthenticator stands in for a remote sign-in service. After Latency it
// accepts every address except InvalidEmail and answers with a fixed profile.
type MockAuthenticator struct {
	Latency time.Duration
	Delay   Delay
}

// NewMockAuthenticator returns a MockAuthenticator sleeping for latency.
func NewMockAuthenticator(latency time.Duration) *MockAuthenticator {
	return &MockAuthenticator{Latency: latency, Delay: Sleep}
}

// Authenticate implements Authenticator.
func (m *MockAuthenticator) Authenticate(ctx context.Context, email, _ string) (domain.Profile, error) {
	delay := m.Delay
	if delay == nil {
		delay = Sleep
	}
	if err := delay(ctx, m.Latency); err != nil {
		return domain.Profile{}, err
	}

	if email == InvalidEmail {
		return domain.Profile{}, fmt.Errorf("%w: invalid email address", ErrInvalidCredentials)
	}
	return domain.Profile{
		Email:     email,
		FirstName: "Lucius",
		LastName:  "Quintus",
		Nickname:  "Seraphina",
	}, nil
}

// PasswordAuthenticator checks credentials against stored bcrypt hashes.
type PasswordAuthenticator struct {
	users domain.UserRepository
}

// NewPasswordAuthenticator creates a PasswordAuthenticator over users.
func NewPasswordAuthenticator(users domain.UserRepository) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// Authenticate implements Authenticator.
func (p *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (domain.Profile, error) {
	user, err := p.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("lookup user: %w", err)
	}
	// SSO-provisioned users have no password and cannot sign in this way.
	if user == nil || user.PasswordHash == "" {
		return domain.Profile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.Profile{}, ErrInvalidCredentials
	}
	return user.Profile(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
