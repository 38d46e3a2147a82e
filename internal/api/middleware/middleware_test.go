package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestIPRateLimiter_SweepsIdleVisitorsOncePerInterval(t *testing.T) {
	l := NewIPRateLimiter(10, 1)
	clock := time.Now()
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	for i := 0; i < 2000; i++ {
		l.Allow(fmt.Sprintf("10.1.%d.%d", i/256, i%256))
	}
	assert.Len(t, l.visitors, 2000)

	clock = clock.Add(time.Minute)
	l.Allow("10.9.9.9")
	assert.Len(t, l.visitors, 2001, "no sweep before the interval elapses")

	clock = clock.Add(3 * time.Minute)
	l.Allow("10.9.9.10")
	assert.Len(t, l.visitors, 2, "visitors idle past the window are dropped")
	assert.Contains(t, l.visitors, "10.9.9.9")
	assert.Equal(t, clock, l.lastSweep)
}

func signed(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTAuth(t *testing.T) {
	const secret = "s3cret"
	r := gin.New()
	r.POST("/w", JWTAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})

	valid := signed(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "editor",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := signed(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "editor",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	noExp := signed(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "editor"})
	wrongKey := signed(t, "other", jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", "Bearer " + valid, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"no expiry", "Bearer " + noExp, http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/w", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "editor", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())
}

func TestSentryRecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(Sentry())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}
