package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/identity/internal/config"
	"github.com/mrlokans/identity/internal/database/codes"
	"github.com/mrlokans/identity/internal/database/sessions"
	"github.com/mrlokans/identity/internal/database/users"
	"github.com/mrlokans/identity/internal/entities"
	"github.com/mrlokans/identity/internal/mailer"
)

// VerificationEmailSender dispatches the account-verification email.
// Delivery is best-effort from the register flow's point of view; the task
// queue implementation retries in the background, and tests substitute fakes.
type VerificationEmailSender interface {
	SendVerificationEmail(email, url string) error
}

// ServiceConfig collects the collaborators the auth service composes.
type ServiceConfig struct {
	Users    *users.Repository
	Sessions *sessions.Repository
	Codes    *codes.Repository
	Tokens   *TokenService
	Mailer   mailer.Mailer
	// VerificationEmails handles the register-flow email. When nil the email
	// step is skipped (and logged); account creation never depends on it.
	VerificationEmails VerificationEmailSender
	ClientURL          string
	Auth               config.Auth
}

// Service composes the stores, the token service and the mailer into the
// account/session use cases. It holds no mutable state of its own: everything
// durable lives in the stores, everything else is fixed at construction.
type Service struct {
	users        *users.Repository
	sessions     *sessions.Repository
	codes        *codes.Repository
	tokens       *TokenService
	mailer       mailer.Mailer
	verifyEmails VerificationEmailSender
	clientURL    string
	cfg          config.Auth
	resetPolicy  WindowPolicy
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	policy := WindowPolicy{Window: cfg.Auth.ResetWindow, Threshold: cfg.Auth.ResetThreshold}
	if policy.Window <= 0 {
		policy = DefaultResetPolicy()
	}

	return &Service{
		users:        cfg.Users,
		sessions:     cfg.Sessions,
		codes:        cfg.Codes,
		tokens:       cfg.Tokens,
		mailer:       cfg.Mailer,
		verifyEmails: cfg.VerificationEmails,
		clientURL:    cfg.ClientURL,
		cfg:          cfg.Auth,
		resetPolicy:  policy,
	}
}

// RegisterParams carry a validated registration request.
type RegisterParams struct {
	Email     string
	Password  string
	UserAgent string
}

// LoginParams carry a validated login request.
type LoginParams struct {
	Email     string
	Password  string
	UserAgent string
}

// AuthResult is returned by Register and Login: the user view plus both tokens.
// Transport encoding (cookies) is the handler layer's job.
type AuthResult struct {
	User         *entities.User
	AccessToken  string
	RefreshToken string
}

// RefreshResult is returned by Refresh. NewRefreshToken is empty when the
// session was not rotated, in which case the caller keeps its existing cookie.
type RefreshResult struct {
	AccessToken     string
	NewRefreshToken string
}

// Register creates an account, issues an email-verification code, dispatches
// the verification email best-effort, and logs the user straight in with a
// fresh session and token pair. Email delivery failure never rolls back
// account creation.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	exists, err := s.users.ExistsByEmail(params.Email)
	if err != nil {
		return nil, fmt.Errorf("register: check existing email: %w", err)
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hash, err := HashPassword(params.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user, err := s.users.Create(params.Email, hash)
	if err != nil {
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	code, err := s.codes.Create(user.ID, entities.CodeTypeEmailVerification, time.Now().Add(s.cfg.EmailVerifyTTL))
	if err != nil {
		return nil, fmt.Errorf("register: create verification code: %w", err)
	}

	url := fmt.Sprintf("%s/email/verify/%s", s.clientURL, code.ID)
	if s.verifyEmails != nil {
		if err := s.verifyEmails.SendVerificationEmail(user.Email, url); err != nil {
			log.Printf("register: failed to dispatch verification email to %s: %v", user.Email, err)
		}
	} else {
		log.Printf("register: verification email sender not configured, skipping email to %s", user.Email)
	}

	return s.openSession(user, params.UserAgent)
}

// Login verifies credentials and opens a new session. Unknown email and wrong
// password fail identically.
func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	user, err := s.users.GetByEmail(params.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: find user: %w", err)
	}

	if err := CheckPassword(params.Password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: compare password: %w", err)
	}

	return s.openSession(user, params.UserAgent)
}

// openSession creates the session record and mints the token pair. Shared tail
// of Register and Login; a new session per login, never reused.
func (s *Service) openSession(user *entities.User, userAgent string) (*AuthResult, error) {
	session, err := s.sessions.Create(user.ID, userAgent, time.Now().Add(s.tokens.RefreshTTL()))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	refreshToken, err := s.tokens.SignRefresh(session.ID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	accessToken, err := s.tokens.SignAccess(user.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a refresh token for a fresh access token, extending the
// session and reissuing the refresh token only when the session is inside the
// rotation window of its expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session, err := s.sessions.GetByID(claims.SessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("refresh: load session: %w", err)
	}
	if session.Expired(now) {
		return nil, ErrSessionExpired
	}

	var newRefreshToken string
	if session.ExpiresAt.Sub(now) <= s.cfg.RotationWindow {
		// Conditional update keyed on the expiry we observed. When it misses,
		// a concurrent refresh already extended this session; either way the
		// session is live for another full term and reissuing is safe.
		extended, err := s.sessions.ExtendExpiry(session.ID, session.ExpiresAt, now.Add(s.tokens.RefreshTTL()))
		if err != nil {
			return nil, fmt.Errorf("refresh: extend session: %w", err)
		}
		if !extended {
			log.Printf("refresh: session %s already extended by a concurrent request", session.ID)
		}

		newRefreshToken, err = s.tokens.SignRefresh(session.ID)
		if err != nil {
			return nil, fmt.Errorf("refresh: sign refresh token: %w", err)
		}
	}

	accessToken, err := s.tokens.SignAccess(session.UserID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh: sign access token: %w", err)
	}

	return &RefreshResult{
		AccessToken:     accessToken,
		NewRefreshToken: newRefreshToken,
	}, nil
}

// VerifyEmail consumes an email-verification code and flips the owning user's
// verified flag. The code is single-use: it is deleted on success and a second
// attempt fails the valid-use lookup.
func (s *Service) VerifyEmail(ctx context.Context, codeID string) (*entities.User, error) {
	code, err := s.codes.GetValid(codeID, entities.CodeTypeEmailVerification, time.Now())
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("verify email: find code: %w", err)
	}

	user, err := s.users.MarkVerified(code.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// The code outlived its user. Data inconsistency, not a caller error.
			return nil, internalError("Failed to verify email")
		}
		return nil, fmt.Errorf("verify email: mark verified: %w", err)
	}

	if err := s.codes.Delete(code.ID); err != nil {
		return nil, fmt.Errorf("verify email: delete code: %w", err)
	}

	return user, nil
}

// RequestPasswordReset issues a reset code and emails the reset link. Unlike
// the register flow this send is failure-propagating: the user-visible
// contract is "email sent". The lookup reveals account existence; see the
// documented inconsistency on ErrUserNotFound.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("password reset: find user: %w", err)
	}

	now := time.Now()
	count, err := s.codes.CountSince(user.ID, entities.CodeTypePasswordReset, s.resetPolicy.WindowStart(now))
	if err != nil {
		return fmt.Errorf("password reset: count recent requests: %w", err)
	}
	if !s.resetPolicy.Allow(count) {
		return ErrTooManyRequests
	}

	expiresAt := now.Add(s.cfg.PasswordResetTTL)
	code, err := s.codes.Create(user.ID, entities.CodeTypePasswordReset, expiresAt)
	if err != nil {
		return fmt.Errorf("password reset: create code: %w", err)
	}

	// The exp parameter is display-only for the client; the server re-validates
	// independently at reset time.
	url := fmt.Sprintf("%s/password/reset?code=%s&exp=%d", s.clientURL, code.ID, expiresAt.UnixMilli())

	emailID, err := s.mailer.SendPasswordReset(ctx, user.Email, url)
	if err != nil {
		log.Printf("password reset: send email to %s: %v", user.Email, err)
		return internalError("Failed to send password reset email")
	}
	if emailID == "" {
		log.Printf("password reset: provider returned no delivery id for %s", user.Email)
		return internalError("Failed to send password reset email")
	}

	return nil
}

// ResetPassword consumes a reset code, replaces the user's password and wipes
// every session the user has, revoking all outstanding refresh tokens.
func (s *Service) ResetPassword(ctx context.Context, password, codeID string) error {
	code, err := s.codes.GetValid(codeID, entities.CodeTypePasswordReset, time.Now())
	if err != nil {
		if errors.Is(err, codes.ErrNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("reset password: find code: %w", err)
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("reset password: hash password: %w", err)
	}

	user, err := s.users.UpdatePassword(code.UserID, hash)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return internalError("Failed to reset password")
		}
		return fmt.Errorf("reset password: update user: %w", err)
	}

	if err := s.codes.Delete(code.ID); err != nil {
		return fmt.Errorf("reset password: delete code: %w", err)
	}

	// Forced global logout. Partial completion only weakens, never breaks,
	// the revoke-all guarantee.
	deleted, err := s.sessions.DeleteAllForUser(user.ID)
	if err != nil {
		return fmt.Errorf("reset password: delete sessions: %w", err)
	}
	log.Printf("password reset for user %d revoked %d session(s)", user.ID, deleted)

	return nil
}

// Logout tears down the session named by the access token. Best-effort: an
// expired or garbled token simply means there is no session to delete, and the
// handler clears cookies regardless.
func (s *Service) Logout(ctx context.Context, accessToken string) {
	claims, err := s.tokens.DecodeAccessUnverified(accessToken)
	if err != nil || claims.SessionID == "" {
		return
	}

	if err := s.sessions.Delete(claims.SessionID); err != nil {
		log.Printf("logout: delete session %s: %v", claims.SessionID, err)
	}
}
