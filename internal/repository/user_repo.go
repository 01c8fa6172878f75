package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/db"
)

// UserRepository reads the user attributes the core needs (location).
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// GetUser loads a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id uint64) (db.User, error) {
	var u db.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return u, err
}

// Create inserts a user.
func (r *UserRepository) Create(ctx context.Context, u *db.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}
