package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aira/config"
	"aira/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:5000", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.1:4321", "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(c))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(4, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		r.ServeHTTP(w, req)
		return w.Code
	}

	// Burst is a quarter of the per-minute rate.
	assert.Equal(t, http.StatusOK, call("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("192.0.2.1"))
	assert.Equal(t, http.StatusOK, call("192.0.2.2"))
}

func TestRateLimiterSweep(t *testing.T) {
	s := newRateLimiterStore(60)
	now := time.Now()
	s.getLimiter("a", now.Add(-10*time.Minute))
	s.getLimiter("b", now)
	s.sweep(now.Add(-time.Minute))
	assert.Len(t, s.visitors, 1)
	assert.Contains(t, s.visitors, "b")
}

func TestAdminAuthMiddleware(t *testing.T) {
	config.AppConfig.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = "" })

	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware("static-key"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("adminID"))
	})

	adminToken, err := utils.GenerateToken("ops", utils.AdminRole, time.Hour)
	require.NoError(t, err)
	staffToken, err := utils.GenerateToken("desk", "staff", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		value  string
		status int
	}{
		{"no credentials", "", "", http.StatusUnauthorized},
		{"api key", "X-API-Key", "static-key", http.StatusOK},
		{"wrong api key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"admin token", "Authorization", "Bearer " + adminToken, http.StatusOK},
		{"non admin token", "Authorization", "Bearer " + staffToken, http.StatusForbidden},
		{"garbage token", "Authorization", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
