package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller handles the authentication HTTP endpoints. It owns transport
// encoding (cookies, JSON, status codes); all decisions live in the Service.
type Controller struct {
	service *Service
	cookies *CookieWriter
}

// NewController creates a new authentication controller.
func NewController(service *Service, cookies *CookieWriter) *Controller {
	return &Controller{
		service: service,
		cookies: cookies,
	}
}

// RegisterRoutes registers the authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/auth")
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)
	group.GET("/refresh", ac.Refresh)
	group.GET("/logout", ac.Logout)
	group.GET("/email/verify/:code", ac.VerifyEmail)
	group.POST("/password/forgot", ac.ForgotPassword)
	group.POST("/password/reset", ac.ResetPassword)
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

type resetPasswordRequest struct {
	Password         string `json:"password" binding:"required,min=6,max=255"`
	VerificationCode string `json:"verificationCode" binding:"required,min=1,max=36"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// Register handles POST /auth/register.
func (ac *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := ac.service.Register(c.Request.Context(), RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	ac.cookies.SetAuthCookies(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{"user": result.User})
}

// Login handles POST /auth/login.
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := ac.service.Login(c.Request.Context(), LoginParams{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	ac.cookies.SetAuthCookies(c, result.AccessToken, result.RefreshToken)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Refresh handles GET /auth/refresh. The refresh cookie is re-set only when
// the session was rotated; otherwise the caller keeps its existing token.
// Failures clear both cookies so a dead refresh token is not retried forever.
func (ac *Controller) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		ac.cookies.ClearAuthCookies(c)
		respondError(c, ErrInvalidToken)
		return
	}

	result, err := ac.service.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		ac.cookies.ClearAuthCookies(c)
		respondError(c, err)
		return
	}

	if result.NewRefreshToken != "" {
		ac.cookies.SetRefreshToken(c, result.NewRefreshToken)
	}
	ac.cookies.SetAccessToken(c, result.AccessToken)
	c.JSON(http.StatusOK, gin.H{"message": "Access token refreshed"})
}

// Logout handles GET /auth/logout. Best-effort session teardown; cookies are
// cleared no matter what the access token looks like.
func (ac *Controller) Logout(c *gin.Context) {
	if accessToken, err := c.Cookie(AccessTokenCookie); err == nil && accessToken != "" {
		ac.service.Logout(c.Request.Context(), accessToken)
	}

	ac.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// VerifyEmail handles GET /auth/email/verify/:code.
func (ac *Controller) VerifyEmail(c *gin.Context) {
	code := c.Param("code")
	if code == "" || len(code) > 36 {
		respondError(c, ErrCodeNotFound)
		return
	}

	if _, err := ac.service.VerifyEmail(c.Request.Context(), code); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email was successfully verified"})
}

// ForgotPassword handles POST /auth/password/forgot.
func (ac *Controller) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := ac.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ResetPassword handles POST /auth/password/reset. A successful reset revokes
// every session, so both cookies are cleared and the user logs in again.
func (ac *Controller) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := ac.service.ResetPassword(c.Request.Context(), req.Password, req.VerificationCode); err != nil {
		respondError(c, err)
		return
	}

	ac.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// respondError maps a service failure to a structured JSON response. Anything
// that is not a typed *Error is logged and collapsed to a generic 500.
func respondError(c *gin.Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"message": appErr.Message, "errorCode": appErr.Code})
		return
	}

	log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": ErrInternal.Message, "errorCode": ErrInternal.Code})
}

// respondValidationError reports a request-body binding failure.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error(), "errorCode": "VALIDATION_ERROR"})
}
