package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"thelastshow.org/internal/ids"
)

// Service registers users, authenticates credentials, and resolves bearer
// tokens to user records. It is the single gate in front of every protected
// operation.
type Service struct {
	users  UserStore
	tokens *Tokens
	now    func() time.Time
}

// NewService constructs a Service around a user store and token service.
func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens, now: time.Now}
}

// Register creates a new user with a salted password hash. A duplicate email
// fails with ErrEmailTaken and leaves the existing record untouched.
// Emails are stored and compared case-sensitively.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		CreatedAt:    s.now().UTC(),
	}
	// The store maps a concurrent duplicate insert to ErrEmailTaken as well.
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues an access token for the user's email.
// Unknown email and wrong password collapse to the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(user.Email)
}

// Authenticate resolves a raw bearer token to the user it was issued for.
// A valid token whose subject no longer exists (user deleted after issuance)
// is rejected the same way as an invalid token. The lookup is pure: it does
// not refresh or extend the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
