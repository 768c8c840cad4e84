// Package codes provides database operations for single-use verification codes.
package codes

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/identity/internal/entities"
)

// ErrNotFound is returned when no valid code matches the lookup.
var ErrNotFound = errors.New("verification code not found")

// Repository handles all verification-code database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new verification-code repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new code of the given type with a generated UUID.
func (r *Repository) Create(userID uint, codeType entities.VerificationCodeType, expiresAt time.Time) (*entities.VerificationCode, error) {
	code := &entities.VerificationCode{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      codeType,
		ExpiresAt: expiresAt,
	}

	if err := r.db.Create(code).Error; err != nil {
		return nil, err
	}

	return code, nil
}

// GetValid performs the single valid-use lookup: id + type + not expired.
// Expired or mistyped codes are indistinguishable from absent ones.
func (r *Repository) GetValid(id string, codeType entities.VerificationCodeType, now time.Time) (*entities.VerificationCode, error) {
	var code entities.VerificationCode
	err := r.db.
		Where("id = ? AND type = ? AND expires_at > ?", id, codeType, now).
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &code, nil
}

// Delete consumes a code. Single-use enforcement: a second lookup after
// deletion fails with ErrNotFound.
func (r *Repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entities.VerificationCode{}).Error
}

// CountSince counts codes of the given type created for the user after the
// window start. Feeds the password-reset rate limiter.
func (r *Repository) CountSince(userID uint, codeType entities.VerificationCodeType, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.VerificationCode{}).
		Where("user_id = ? AND type = ? AND created_at > ?", userID, codeType, since).
		Count(&count).Error
	return count, err
}

// DeleteExpired removes codes whose expiry has passed. Housekeeping only.
func (r *Repository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&entities.VerificationCode{})
	return result.RowsAffected, result.Error
}
