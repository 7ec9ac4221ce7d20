package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidInput       = errors.New("auth: invalid input")

	// ErrInvalidToken covers every token failure: forged signature, expired,
	// malformed, missing subject. Callers must not distinguish the cause.
	ErrInvalidToken = errors.New("invalid token")
)
