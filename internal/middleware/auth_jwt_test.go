package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shophub/internal/config"
	"shophub/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func callWithAuth(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := middleware.AdminJWT(config.Config{JWTSecret: testSecret})
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := handler(c)
	assert.NoError(t, err)
	return rec, c
}

func TestAdminJWT_MissingHeader(t *testing.T) {
	rec, _ := callWithAuth(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAdminJWT_NotBearer(t *testing.T) {
	rec, _ := callWithAuth(t, "Basic abcdef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminJWT_BadSignature(t *testing.T) {
	raw := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec, _ := callWithAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminJWT_Expired(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	rec, _ := callWithAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminJWT_Valid_SetsAdminContext(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "7",
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	rec, c := callWithAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(middleware.CtxAdminIDKey))
	assert.Equal(t, "admin@example.com", c.Get(middleware.CtxAdminEmailKey))
}

// subが数値claimとして入ってくるトークンも受け付ける
func TestAdminJWT_NumericSub(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	rec, c := callWithAuth(t, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(middleware.CtxAdminIDKey))
}
