package user

import "context"

// Directory is the read-only UserDirectory. Unknown users return errs.NotFound.
type Directory interface {
	FindByID(ctx context.Context, userID string) (*User, error)
	// FindByIdentifier accepts either the public user id or the email.
	FindByIdentifier(ctx context.Context, s string) (*User, error)
}
