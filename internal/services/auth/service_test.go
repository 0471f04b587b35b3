package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mangala-lk/backend/internal/domain/enums"
	"github.com/mangala-lk/backend/internal/domain/model"
	pgrepo "github.com/mangala-lk/backend/internal/repo/postgres"
	redrepo "github.com/mangala-lk/backend/internal/repo/redis"
	"github.com/mangala-lk/backend/internal/services/auth"
)

type stubUserStore struct {
	users  map[string]pgrepo.Credentials
	nextID int64
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: map[string]pgrepo.Credentials{}, nextID: 1}
}

func (s *stubUserStore) Create(ctx context.Context, email, passwordHash, firstName, lastName string) (model.User, error) {
	if _, ok := s.users[email]; ok {
		return model.User{}, pgrepo.ErrEmailTaken
	}
	user := model.User{
		ID:        s.nextID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      enums.RoleClient,
		Status:    enums.AccountStatusActive,
	}
	s.nextID++
	s.users[email] = pgrepo.Credentials{User: user, PasswordHash: passwordHash}
	return user, nil
}

func (s *stubUserStore) GetCredentialsByEmail(ctx context.Context, email string) (pgrepo.Credentials, error) {
	creds, ok := s.users[email]
	if !ok {
		return pgrepo.Credentials{}, pgrepo.ErrUserNotFound
	}
	return creds, nil
}

func (s *stubUserStore) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return nil
}

func newAuthServiceForTest(t *testing.T) (*auth.Service, *stubUserStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute)
	users := newStubUserStore()
	svc := auth.NewService(jwtManager, users, redrepo.NewSessionRepo(client), 30*24*time.Hour)
	return svc, users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, auth.RegisterInput{
		Email:     "Nimal@Example.com",
		Password:  "correct-horse",
		FirstName: "Nimal",
		LastName:  "Perera",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", res)
	}
	if res.Me.Email != "nimal@example.com" {
		t.Fatalf("expected lowercased email, got %q", res.Me.Email)
	}

	login, err := svc.Login(ctx, "nimal@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Me.ID != res.Me.ID {
		t.Fatalf("expected same user, got %d and %d", login.Me.ID, res.Me.ID)
	}

	if _, err := svc.Login(ctx, "nimal@example.com", "wrong"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   auth.RegisterInput
	}{
		{"bad email", auth.RegisterInput{Email: "not-an-email", Password: "long-enough", FirstName: "A", LastName: "B"}},
		{"short password", auth.RegisterInput{Email: "a@b.lk", Password: "short", FirstName: "A", LastName: "B"}},
		{"missing name", auth.RegisterInput{Email: "a@b.lk", Password: "long-enough", FirstName: "", LastName: "B"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.in); !errors.Is(err, auth.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	in := auth.RegisterInput{Email: "dup@example.com", Password: "long-enough", FirstName: "A", LastName: "B"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, auth.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginSuspendedAccount(t *testing.T) {
	svc, users := newAuthServiceForTest(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("long-enough"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users.users["frozen@example.com"] = pgrepo.Credentials{
		User: model.User{
			ID:     42,
			Email:  "frozen@example.com",
			Role:   enums.RoleClient,
			Status: enums.AccountStatusSuspended,
		},
		PasswordHash: string(hash),
	}

	if _, err := svc.Login(ctx, "frozen@example.com", "long-enough"); !errors.Is(err, auth.ErrAccountSuspended) {
		t.Fatalf("expected ErrAccountSuspended, got %v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, auth.RegisterInput{
		Email:     "rot@example.com",
		Password:  "long-enough",
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == res.RefreshToken {
		t.Fatal("expected rotated refresh token")
	}

	// The consumed token must be dead.
	if _, err := svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for reused token, got %v", err)
	}
	if _, err := svc.Refresh(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestValidateAccessTokenAndLogout(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, auth.RegisterInput{
		Email:     "val@example.com",
		Password:  "long-enough",
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != res.Me.ID {
		t.Fatalf("expected user %d, got %d", res.Me.ID, claims.UserID)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.ValidateAccessToken(ctx, res.AccessToken); !errors.Is(err, auth.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
}

func TestLogoutAll(t *testing.T) {
	svc, _ := newAuthServiceForTest(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, auth.RegisterInput{
		Email:     "many@example.com",
		Password:  "long-enough",
		FirstName: "A",
		LastName:  "B",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := svc.Login(ctx, "many@example.com", "long-enough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.LogoutAll(ctx, first.Me.ID); err != nil {
		t.Fatalf("logout all: %v", err)
	}
	for _, token := range []string{first.AccessToken, second.AccessToken} {
		if _, err := svc.ValidateAccessToken(ctx, token); !errors.Is(err, auth.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	}
}
