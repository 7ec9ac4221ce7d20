package auth

import "time"

// User is a registered account. PasswordHash is never serialized; response
// shapes live in the HTTP layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	CreatedAt    time.Time
}
