package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, clock *fakeClock) (*Service, *InMemory) {
	t.Helper()
	tokens, err := NewTokens("test-secret", WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	store := NewInMemory()
	return NewService(store, tokens), store
}

func TestRegisterAndLogin(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	user, err := svc.Register(ctx, "u1@example.com", "hunter22", "First User")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if user.PasswordHash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}

	token, expiresAt, err := svc.Login(ctx, "u1@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
	if !expiresAt.After(clock.t) {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, store := newTestService(t, clock)
	ctx := context.Background()

	first, err := svc.Register(ctx, "dup@example.com", "password1", "First")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "password2", "Second"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The original record is untouched.
	got, err := store.FindByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if got.ID != first.ID || got.FullName != "First" {
		t.Fatalf("existing record changed: %+v", got)
	}
}

func TestRegisterEmailCaseSensitive(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "User@example.com", "password1", "A"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Distinct case is a distinct email.
	if _, err := svc.Register(ctx, "user@example.com", "password1", "B"); err != nil {
		t.Fatalf("Register lower-case variant: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "u1@example.com", "hunter22", "First User"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "u1@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty credentials: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateResolvesUser(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "u1@example.com", "hunter22", "First User")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "u1@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	user, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != registered.ID || user.Email != "u1@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, store := newTestService(t, clock)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "gone@example.com", "hunter22", "Leaving Soon")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "gone@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	store.Delete(ctx, registered.ID)

	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for deleted user, got %v", err)
	}
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	svc, _ := newTestService(t, clock)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "u1@example.com", "hunter22", "First User"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(ctx, "u1@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	clock.Advance(DefaultTokenTTL + time.Minute)

	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
