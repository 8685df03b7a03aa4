package userdir

import (
	"context"
	"errors"
	"testing"

	"mortgage-backend/internal/domain/errs"
	"mortgage-backend/internal/domain/user"
)

func TestDirectory_Static(t *testing.T) {
	ctx := context.Background()
	d := New(user.User{UserID: "u-1", Email: "pat@lender.test", Role: user.RoleProcessor, Active: true})

	if u, err := d.FindByIdentifier(ctx, "pat@lender.test"); err != nil || u.UserID != "u-1" {
		t.Fatalf("by email: %+v, %v", u, err)
	}
	if u, err := d.FindByIdentifier(ctx, "u-1"); err != nil || u.Role != user.RoleProcessor {
		t.Fatalf("by id: %+v, %v", u, err)
	}
	if _, err := d.FindByID(ctx, "ghost"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing: want NotFound, got %v", err)
	}
}

func TestDirectory_Fn(t *testing.T) {
	boom := errors.New("directory down")
	d := &Directory{FindByIDFn: func(context.Context, string) (*user.User, error) { return nil, boom }}
	if _, err := d.FindByID(context.Background(), "u-1"); !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
}
