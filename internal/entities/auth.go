package entities

import (
	"time"
)

// VerificationCodeType distinguishes the two out-of-band confirmation flows.
type VerificationCodeType string

const (
	CodeTypeEmailVerification VerificationCodeType = "email_verification"
	CodeTypePasswordReset     VerificationCodeType = "password_reset"
)

// User is an account identity. The password hash never leaves the server:
// it is excluded from JSON and users are never hard-deleted by this service.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	Verified     bool      `gorm:"default:false" json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the server-side record a refresh token is bound to. Deleting the
// session revokes the refresh token regardless of the token's own expiry.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"` // UUID
	UserID    uint      `gorm:"index" json:"user_id"`
	UserAgent string    `gorm:"size:512" json:"user_agent,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// VerificationCode is a single-use, typed, expiring code delivered via email.
// Its ID doubles as the opaque secret embedded in the emailed link, so IDs are
// UUIDs rather than sequential integers. Consumed codes are deleted; expired
// ones simply fail the valid-use lookup until the sweep removes them.
type VerificationCode struct {
	ID        string               `gorm:"primaryKey;size:36" json:"id"` // UUID
	UserID    uint                 `gorm:"index" json:"user_id"`
	Type      VerificationCodeType `gorm:"index;size:32" json:"type"`
	ExpiresAt time.Time            `json:"expires_at"`
	CreatedAt time.Time            `json:"created_at"`
}
