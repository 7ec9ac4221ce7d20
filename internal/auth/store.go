package auth

import "context"

// UserStore describes persistence operations required by the auth subsystem.
// Absence is a typed outcome (ErrNotFound), not an exception.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
