package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mrlokans/identity/internal/config"
)

// AccessClaims are the access-token claims: the authenticated user and the
// session the token was minted under.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID    uint   `json:"uid"`
	SessionID string `json:"sid"`
}

// RefreshClaims carry only the session id. The user is re-derived from the
// session record at refresh time, so deleting the session revokes the token
// even before its embedded expiry.
type RefreshClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenService signs and verifies the two token kinds with HS256. The kinds
// use distinct secrets and lifetimes: a leaked access token can never be
// replayed as a refresh token.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService creates a token service from configuration.
func NewTokenService(cfg config.Tokens) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the configured refresh-token lifetime.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// SignAccess mints an access token for the user within the session.
func (s *TokenService) SignAccess(userID uint, sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Audience:  jwt.ClaimStrings{"user"},
		},
		UserID:    userID,
		SessionID: sessionID,
	})

	return token.SignedString(s.accessSecret)
}

// SignRefresh mints a refresh token bound to the session.
func (s *TokenService) SignRefresh(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			Audience:  jwt.ClaimStrings{"user"},
		},
		SessionID: sessionID,
	})

	return token.SignedString(s.refreshSecret)
}

// VerifyAccess parses and validates an access token. Returns ErrTokenExpired
// for a well-formed token past its expiry and ErrInvalidToken for everything
// else (garbled input, wrong secret, wrong algorithm). Both deny access; the
// split exists for client messaging only.
func (s *TokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token against the refresh secret.
func (s *TokenService) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// DecodeAccessUnverified extracts claims from an access token without
// enforcing expiry. The signature is still checked. Used by logout, which
// should tear down the session even when the access token has already lapsed.
func (s *TokenService) DecodeAccessUnverified(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.accessSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	return nil
}
