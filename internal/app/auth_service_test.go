package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"usergate/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	createFn     func(ctx context.Context, u *domain.User) (*domain.User, error)
	countFn      func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = 1
	return u, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, s *domain.Session) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func noDelay(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newMockAuth() *MockAuthenticator {
	return &MockAuthenticator{Latency: DefaultLoginDelay, Delay: noDelay}
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()

	var stored *domain.Session
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			stored = s
			return nil
		},
	}

	fixed := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc := NewAuthService(newMockAuth(), nil, sessions).WithSessionTTL(time.Hour)
	svc.now = func() time.Time { return fixed }

	sess, err := svc.Login(ctx, "just@sample.com", "anything")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !sess.Authenticated() || sess.Email != "just@sample.com" {
		t.Errorf("expected authenticated session for just@sample.com, got %+v", sess)
	}
	if sess.Token == "" {
		t.Error("expected token, got empty string")
	}
	if !sess.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Errorf("expected expiry %v, got %v", fixed.Add(time.Hour), sess.ExpiresAt)
	}
	if stored != sess {
		t.Error("expected session to be stored")
	}
}

func TestAuthService_Login_InvalidEmailWritesNothing(t *testing.T) {
	ctx := context.Background()

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			t.Error("no session should be created on failed login")
			return nil
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	sess, err := svc.Login(ctx, InvalidEmail, "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err.Error() != "invalid credentials: invalid email address" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if sess.Authenticated() {
		t.Error("failed login must leave the caller anonymous")
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			return errors.New("disk full")
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	if _, err := svc.Login(context.Background(), "a@b.c", "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAuthService_Login_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			t.Error("no session should be created after cancellation")
			return nil
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	_, err := svc.Login(ctx, "a@b.c", "x")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAuthService_LoginWithProfile_RequiresEmail(t *testing.T) {
	svc := NewAuthService(newMockAuth(), nil, &mockSessionRepo{})
	_, err := svc.LoginWithProfile(context.Background(), domain.Profile{Nickname: "anon"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	var deleted []string
	sessions := &mockSessionRepo{
		deleteFn: func(ctx context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	if err := svc.Logout(ctx, "tok"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(ctx, ""); err != nil {
		t.Fatalf("logout empty: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "tok" {
		t.Errorf("expected one delete of tok, got %v", deleted)
	}
}

func TestAuthService_ValidateSession_Valid(t *testing.T) {
	token := "validtoken"
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Profile:   domain.Profile{Email: "just@sample.com"},
				Token:     token,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	sess, err := svc.ValidateSession(context.Background(), token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sess.Email != "just@sample.com" {
		t.Errorf("expected just@sample.com, got %s", sess.Email)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	token := "expiredtoken"
	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return &domain.Session{
				Profile:   domain.Profile{Email: "just@sample.com"},
				Token:     token,
				ExpiresAt: time.Now().Add(-time.Hour),
			}, nil
		},
		deleteFn: func(ctx context.Context, tok string) error {
			deleted = true
			return nil
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	_, err := svc.ValidateSession(context.Background(), token)
	if err != ErrSessionExpired {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expired session should be deleted")
	}
}

func TestAuthService_ValidateSession_NotFound(t *testing.T) {
	svc := NewAuthService(newMockAuth(), nil, &mockSessionRepo{})

	for _, tok := range []string{"", "missing"} {
		if _, err := svc.ValidateSession(context.Background(), tok); err != ErrSessionNotFound {
			t.Errorf("token %q: expected ErrSessionNotFound, got %v", tok, err)
		}
	}
}

func TestAuthService_ValidateSession_RepoError(t *testing.T) {
	boom := errors.New("boom")
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, tok string) (*domain.Session, error) {
			return nil, boom
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	if _, err := svc.ValidateSession(context.Background(), "t"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestAuthService_CreateInitialUser(t *testing.T) {
	var created *domain.User
	users := &mockUserRepo{
		createFn: func(ctx context.Context, u *domain.User) (*domain.User, error) {
			created = u
			return u, nil
		},
	}

	svc := NewAuthService(NewPasswordAuthenticator(users), users, &mockSessionRepo{})
	_, err := svc.CreateInitialUser(context.Background(), domain.Profile{Email: " Admin@Sample.com ", Nickname: "boss"}, "secret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Email != "admin@sample.com" {
		t.Errorf("expected normalized email, got %q", created.Email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_CreateInitialUser_UsersExist(t *testing.T) {
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 1, nil },
	}

	svc := NewAuthService(NewPasswordAuthenticator(users), users, &mockSessionRepo{})
	_, err := svc.CreateInitialUser(context.Background(), domain.Profile{Email: "a@b.c"}, "pw")
	if !errors.Is(err, ErrUsersExist) {
		t.Errorf("expected ErrUsersExist, got %v", err)
	}
}

func TestAuthService_CreateInitialUser_Disabled(t *testing.T) {
	svc := NewAuthService(newMockAuth(), nil, &mockSessionRepo{})
	_, err := svc.CreateInitialUser(context.Background(), domain.Profile{Email: "a@b.c"}, "pw")
	if !errors.Is(err, ErrPasswordAuthDisabled) {
		t.Errorf("expected ErrPasswordAuthDisabled, got %v", err)
	}
}

func TestAuthService_CleanupExpired(t *testing.T) {
	called := false
	sessions := &mockSessionRepo{
		deleteExpiredFn: func(ctx context.Context) error {
			called = true
			return nil
		},
	}

	svc := NewAuthService(newMockAuth(), nil, sessions)
	if err := svc.CleanupExpired(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("expected DeleteExpired to be called")
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	a, err := generateToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := generateToken()
	if a == b {
		t.Error("tokens should differ")
	}
}
