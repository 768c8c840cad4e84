package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookie names used by the auth flows.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	// RefreshPath scopes the refresh cookie to the single endpoint that needs
	// it, so the long-lived token never rides along on other requests.
	RefreshPath = "/auth/refresh"
)

// CookieWriter applies the auth cookie contract: httpOnly, SameSite=Strict,
// Secure outside development. Access cookie is site-wide with the access TTL;
// refresh cookie is path-restricted to the refresh endpoint with the refresh TTL.
type CookieWriter struct {
	secure     bool
	accessTTL  int // seconds
	refreshTTL int // seconds
}

// NewCookieWriter creates a cookie writer. development disables the Secure flag.
func NewCookieWriter(development bool, accessTTLSeconds, refreshTTLSeconds int) *CookieWriter {
	return &CookieWriter{
		secure:     !development,
		accessTTL:  accessTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

// SetAccessToken writes the access-token cookie.
func (w *CookieWriter) SetAccessToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, token, w.accessTTL, "/", "", w.secure, true)
}

// SetRefreshToken writes the refresh-token cookie, scoped to the refresh path.
func (w *CookieWriter) SetRefreshToken(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshTokenCookie, token, w.refreshTTL, RefreshPath, "", w.secure, true)
}

// SetAuthCookies writes both cookies for a fresh login or registration.
func (w *CookieWriter) SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	w.SetAccessToken(c, accessToken)
	w.SetRefreshToken(c, refreshToken)
}

// ClearAuthCookies expires both cookies.
func (w *CookieWriter) ClearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", w.secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, RefreshPath, "", w.secure, true)
}
