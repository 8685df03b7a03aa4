package mysql

import (
	"context"

	"gorm.io/gorm"

	userDomain "mortgage-backend/internal/domain/user"
)

var _ userDomain.Directory = (*UserDirectory)(nil)

// UserDirectory reads the users table; this service never writes it.
type UserDirectory struct{ db *gorm.DB }

func NewUserDirectory(db *gorm.DB) *UserDirectory { return &UserDirectory{db: db} }

func (r *UserDirectory) FindByID(ctx context.Context, userID string) (*userDomain.User, error) {
	var out userDomain.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, translate(err, "user %s", userID)
	}
	return &out, nil
}

func (r *UserDirectory) FindByIdentifier(ctx context.Context, s string) (*userDomain.User, error) {
	var out userDomain.User
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR email = ?", s, s).
		Order("id ASC").
		First(&out).Error
	if err != nil {
		return nil, translate(err, "user %s", s)
	}
	return &out, nil
}
