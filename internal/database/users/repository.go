// Package users provides database operations for account identities.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(email)
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/identity/internal/entities"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ExistsByEmail reports whether a user with the given email already exists.
func (r *Repository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new, unverified user. The caller supplies the password
// hash; this layer never sees plaintext passwords.
func (r *Repository) Create(email, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// MarkVerified flips the user's verified flag. Returns ErrNotFound when the
// update target no longer exists, so the caller can report the inconsistency.
func (r *Repository) MarkVerified(id uint) (*entities.User, error) {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("verified", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id)
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(id uint, passwordHash string) (*entities.User, error) {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(id)
}
