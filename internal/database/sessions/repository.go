// Package sessions provides database operations for server-side session records.
package sessions

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/identity/internal/entities"
)

// ErrNotFound is returned when no session matches the lookup.
var ErrNotFound = errors.New("session not found")

// Repository handles all session database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new session with a generated UUID.
func (r *Repository) Create(userID uint, userAgent string, expiresAt time.Time) (*entities.Session, error) {
	session := &entities.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserAgent: userAgent,
		ExpiresAt: expiresAt,
	}

	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}

	return session, nil
}

// GetByID retrieves a session by ID.
func (r *Repository) GetByID(id string) (*entities.Session, error) {
	var session entities.Session
	err := r.db.Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ExtendExpiry pushes the session's expiry forward with a conditional update
// keyed on the expiry the caller observed. When the condition no longer holds
// a concurrent refresh already extended the session; that is reported as
// extended=false with no error and the caller may treat it as success.
func (r *Repository) ExtendExpiry(id string, observedExpiry, newExpiry time.Time) (bool, error) {
	result := r.db.Model(&entities.Session{}).
		Where("id = ? AND expires_at = ?", id, observedExpiry).
		Update("expires_at", newExpiry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a session by ID. Deleting a missing session is not an error.
func (r *Repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entities.Session{}).Error
}

// DeleteAllForUser removes every session belonging to the user and returns
// the number deleted. This is the forced-global-logout primitive: every
// outstanding refresh token for the account dies with its session record.
func (r *Repository) DeleteAllForUser(userID uint) (int64, error) {
	result := r.db.Where("user_id = ?", userID).Delete(&entities.Session{})
	return result.RowsAffected, result.Error
}

// DeleteExpired removes sessions whose expiry has passed. Housekeeping only:
// validity checks never rely on this running.
func (r *Repository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&entities.Session{})
	return result.RowsAffected, result.Error
}
