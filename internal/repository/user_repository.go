package repository

import (
	"context"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
)

// UserRepository defines the persistence operations for users. Methods that
// participate in the bulk-import batch accept an optional transaction.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByNombre(ctx context.Context, tx *gorm.DB, nombre string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	FindByRol(ctx context.Context, rol string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// userRepository is the GORM implementation of UserRepository.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user row.
func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	return conn(ctx, r.db, tx).Create(user).Error
}

// FindByID retrieves a user by primary key.
func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves a user by its unique username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByNombre retrieves a user by exact full name. The bulk import uses it
// to resolve inspector columns inside the batch transaction.
func (r *userRepository) FindByNombre(ctx context.Context, tx *gorm.DB, nombre string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db, tx).Where("nombre = ?", nombre).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll retrieves every user.
func (r *userRepository) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&users).Error
	return users, err
}

// FindByRol retrieves every user holding the given role.
func (r *userRepository) FindByRol(ctx context.Context, rol string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Where("rol = ?", rol).Order("nombre ASC").Find(&users).Error
	return users, err
}

// Update persists changes to an existing user.
func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
