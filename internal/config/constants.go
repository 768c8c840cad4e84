package config

import "time"

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./identity.db"
)

// Token and session lifetime defaults. Every one of these is env-configurable;
// the constants are the fallbacks when the corresponding variable is unset.
const (
	// DefaultAccessTokenTTL is how long a signed access token stays valid.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is how long a refresh token and its session last.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	// DefaultSessionRotationWindow is the trailing window before session expiry
	// within which a refresh call extends the session and reissues the token.
	DefaultSessionRotationWindow = 24 * time.Hour

	// DefaultEmailVerifyTTL is how long an email-verification code stays
	// redeemable. Deliberately long: the link sits in an inbox.
	DefaultEmailVerifyTTL = 365 * 24 * time.Hour

	// DefaultPasswordResetTTL is how long a password-reset code stays redeemable.
	DefaultPasswordResetTTL = time.Hour
)
