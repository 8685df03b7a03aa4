package userdir

import (
	"context"

	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/user"
)

var _ user.Directory = (*Directory)(nil)

// Directory is a function-backed user.Directory. With no functions set it
// serves Users, keyed by user id, and matches FindByIdentifier on id or email.
type Directory struct {
	FindByIDFn         func(ctx context.Context, userID string) (*user.User, error)
	FindByIdentifierFn func(ctx context.Context, s string) (*user.User, error)

	Users map[string]user.User
}

// New seeds a static directory.
func New(users ...user.User) *Directory {
	d := &Directory{Users: make(map[string]user.User, len(users))}
	for _, u := range users {
		d.Users[u.UserID] = u
	}
	return d
}

func (d *Directory) FindByID(ctx context.Context, userID string) (*user.User, error) {
	if d.FindByIDFn != nil {
		return d.FindByIDFn(ctx, userID)
	}
	if u, ok := d.Users[userID]; ok {
		return &u, nil
	}
	return nil, errs.New(errs.NotFound, "user %s not found", userID)
}

func (d *Directory) FindByIdentifier(ctx context.Context, s string) (*user.User, error) {
	if d.FindByIdentifierFn != nil {
		return d.FindByIdentifierFn(ctx, s)
	}
	for _, u := range d.Users {
		if u.Email == s {
			return &u, nil
		}
	}
	return d.FindByID(ctx, s)
}
