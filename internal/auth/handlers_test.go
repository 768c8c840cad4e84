package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/identity/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *serviceFixture) {
	t.Helper()

	f := setupService(t)
	cookies := NewCookieWriter(true, 900, 2592000)
	controller := NewController(f.service, cookies)

	router := gin.New()
	controller.RegisterRoutes(router)

	return router, f
}

func doRequest(router *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func findCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"email":"alice@example.com"`) {
		t.Errorf("body = %s, want user payload", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Errorf("body = %s, must not leak password material", w.Body.String())
	}

	access := findCookie(t, w, AccessTokenCookie)
	if !access.HttpOnly || access.Path != "/" {
		t.Errorf("access cookie = %+v, want httpOnly with path /", access)
	}
	refresh := findCookie(t, w, RefreshTokenCookie)
	if !refresh.HttpOnly || refresh.Path != RefreshPath {
		t.Errorf("refresh cookie = %+v, want httpOnly with path %s", refresh, RefreshPath)
	}
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"missing email", `{"password":"password123"}`},
		{"not an email", `{"email":"not-an-email","password":"password123"}`},
		{"short password", `{"email":"alice@example.com","password":"short"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/auth/register", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "VALIDATION_ERROR") {
				t.Errorf("body = %s, want VALIDATION_ERROR", w.Body.String())
			}
		})
	}
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	router, _ := setupRouter(t)
	body := `{"email":"alice@example.com","password":"password123"}`

	doRequest(router, http.MethodPost, "/auth/register", body)
	w := doRequest(router, http.MethodPost, "/auth/register", body)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), CodeEmailInUse) {
		t.Errorf("body = %s, want %s", w.Body.String(), CodeEmailInUse)
	}
}

func TestLoginEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)

	w := doRequest(router, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"password123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	findCookie(t, w, AccessTokenCookie)
	findCookie(t, w, RefreshTokenCookie)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	router, _ := setupRouter(t)
	doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)

	w := doRequest(router, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"wrongpassword"}`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), CodeInvalidCredentials) {
		t.Errorf("body = %s, want %s", w.Body.String(), CodeInvalidCredentials)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	registered := doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)
	refresh := findCookie(t, registered, RefreshTokenCookie)

	w := doRequest(router, http.MethodGet, "/auth/refresh", "",
		&http.Cookie{Name: RefreshTokenCookie, Value: refresh.Value})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	access := findCookie(t, w, AccessTokenCookie)
	if access.Value == "" || access.MaxAge <= 0 {
		t.Errorf("access cookie = %+v, want a fresh token", access)
	}
	// A fresh session is far from its rotation window; the refresh cookie
	// stays untouched.
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == RefreshTokenCookie {
			t.Errorf("refresh cookie re-set without rotation: %+v", cookie)
		}
	}
}

func TestRefreshEndpoint_MissingCookie(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/auth/refresh", "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	// Both cookies get expired so the client stops retrying.
	if c := findCookie(t, w, AccessTokenCookie); c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("access cookie = %+v, want cleared", c)
	}
	if c := findCookie(t, w, RefreshTokenCookie); c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("refresh cookie = %+v, want cleared", c)
	}
}

func TestRefreshEndpoint_DeadSession(t *testing.T) {
	router, f := setupRouter(t)
	registered := doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)
	refresh := findCookie(t, registered, RefreshTokenCookie)

	claims, err := f.tokens.VerifyRefresh(refresh.Value)
	if err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
	if err := f.sessions.Delete(claims.SessionID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	w := doRequest(router, http.MethodGet, "/auth/refresh", "",
		&http.Cookie{Name: RefreshTokenCookie, Value: refresh.Value})

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), CodeSessionExpired) {
		t.Errorf("body = %s, want %s", w.Body.String(), CodeSessionExpired)
	}
	if c := findCookie(t, w, RefreshTokenCookie); c.MaxAge >= 0 {
		t.Errorf("refresh cookie = %+v, want cleared", c)
	}
}

func TestLogoutEndpoint(t *testing.T) {
	router, f := setupRouter(t)
	registered := doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)
	access := findCookie(t, registered, AccessTokenCookie)
	refresh := findCookie(t, registered, RefreshTokenCookie)

	w := doRequest(router, http.MethodGet, "/auth/logout", "",
		&http.Cookie{Name: AccessTokenCookie, Value: access.Value})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if c := findCookie(t, w, AccessTokenCookie); c.MaxAge >= 0 {
		t.Errorf("access cookie = %+v, want cleared", c)
	}

	// The session behind the refresh token is gone.
	claims, err := f.tokens.VerifyRefresh(refresh.Value)
	if err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
	if _, err := f.sessions.GetByID(claims.SessionID); err == nil {
		t.Error("expected session to be deleted after logout")
	}
}

func TestLogoutEndpoint_NoCookie(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/auth/logout", "")

	// Logout never fails; cookies are cleared regardless.
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if c := findCookie(t, w, AccessTokenCookie); c.MaxAge >= 0 {
		t.Errorf("access cookie = %+v, want cleared", c)
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	router, f := setupRouter(t)
	doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)
	code := f.latestCode(t, entities.CodeTypeEmailVerification)

	w := doRequest(router, http.MethodGet, "/auth/email/verify/"+code.ID, "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	// Second use of the code fails.
	w = doRequest(router, http.MethodGet, "/auth/email/verify/"+code.ID, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status on reuse = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), CodeCodeNotFound) {
		t.Errorf("body = %s, want %s", w.Body.String(), CodeCodeNotFound)
	}
}

func TestVerifyEmailEndpoint_UnknownCode(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodGet, "/auth/email/verify/no-such-code", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestForgotPasswordEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"password123"}`)

	w := doRequest(router, http.MethodPost, "/auth/password/forgot",
		`{"email":"alice@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	// Unknown address is reported as such.
	w = doRequest(router, http.MethodPost, "/auth/password/forgot",
		`{"email":"nobody@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	// Requests past the window threshold get throttled.
	doRequest(router, http.MethodPost, "/auth/password/forgot", `{"email":"alice@example.com"}`)
	w = doRequest(router, http.MethodPost, "/auth/password/forgot", `{"email":"alice@example.com"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429; body: %s", w.Code, w.Body.String())
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	router, f := setupRouter(t)
	doRequest(router, http.MethodPost, "/auth/register",
		`{"email":"alice@example.com","password":"oldpassword"}`)
	doRequest(router, http.MethodPost, "/auth/password/forgot",
		`{"email":"alice@example.com"}`)
	code := f.latestCode(t, entities.CodeTypePasswordReset)

	w := doRequest(router, http.MethodPost, "/auth/password/reset",
		`{"password":"newpassword","verificationCode":"`+code.ID+`"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}
	// Every session was revoked; the client must log in again.
	if c := findCookie(t, w, AccessTokenCookie); c.MaxAge >= 0 {
		t.Errorf("access cookie = %+v, want cleared", c)
	}
	if c := findCookie(t, w, RefreshTokenCookie); c.MaxAge >= 0 {
		t.Errorf("refresh cookie = %+v, want cleared", c)
	}

	login := doRequest(router, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"newpassword"}`)
	if login.Code != http.StatusOK {
		t.Errorf("login with new password: status = %d, want 200", login.Code)
	}
}

func TestResetPasswordEndpoint_BadCode(t *testing.T) {
	router, _ := setupRouter(t)

	w := doRequest(router, http.MethodPost, "/auth/password/reset",
		`{"password":"newpassword","verificationCode":"no-such-code"}`)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
