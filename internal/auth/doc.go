// Package auth implements account and session lifecycle for the service:
// registration, login, access/refresh token issuance, session rotation,
// email verification and rate-limited password resets.
//
// Access tokens are short-lived JWTs carrying the user and session ids.
// Refresh tokens are long-lived JWTs carrying only a session id; validity of a
// refresh token is anchored in the server-side session record, so deleting the
// session revokes the token immediately. When a refresh arrives within the
// rotation window of the session's expiry, the session is extended and a new
// refresh token issued.
//
// # Configuration
//
//	JWT_ACCESS_SECRET=<secret>      # access-token signing secret
//	JWT_REFRESH_SECRET=<secret>     # refresh-token signing secret (must differ)
//	JWT_ACCESS_TTL=15m              # access token lifetime
//	JWT_REFRESH_TTL=720h            # refresh token / session lifetime
//	AUTH_ROTATION_WINDOW=24h        # refresh inside this window rotates the session
//	AUTH_BCRYPT_COST=12             # bcrypt cost factor
//	AUTH_RESET_WINDOW=5m            # password-reset rate-limit window
//	AUTH_RESET_THRESHOLD=1          # extra reset requests allowed per window
//
// # Usage
//
// Initialize in entrypoint:
//
//	tokens := auth.NewTokenService(cfg.Tokens)
//	service := auth.NewService(auth.ServiceConfig{...})
//	controller := auth.NewController(service, cookies)
//	controller.RegisterRoutes(router)
//
// Guard routes:
//
//	protected.Use(auth.NewMiddleware(tokens).Handler())
//	userID := auth.GetUserID(c)
package auth
