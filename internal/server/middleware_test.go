package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rowmatch/internal/auth"
	"rowmatch/internal/config"
	"rowmatch/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware())

	router.GET("/test/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/test/:id", "200"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/test/:id", "200")))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLoggingMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test?x=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware("ip", 1, 2, ClientIPKey))

	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	before := testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues("ip"))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitedTotal.WithLabelValues("ip")))
}

func TestRateLimitMiddleware_PerMember(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(auth.AuthMiddleware("test-secret"), RateLimitMiddleware("member", 1, 1, MemberKey))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	efe, err := auth.GenerateAccessToken("efe", "efe@example.com", auth.RoleMember, "test-secret")
	require.NoError(t, err)
	alex, err := auth.GenerateAccessToken("alex", "alex@example.com", auth.RoleMember, "test-secret")
	require.NoError(t, err)

	call := func(token, addr string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call(efe, "10.0.0.1:1000"))
	// same net id from another address shares the bucket
	assert.Equal(t, http.StatusTooManyRequests, call(efe, "10.0.0.2:1000"))
	assert.Equal(t, http.StatusOK, call(alex, "10.0.0.1:1000"))
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware("member", 0, 0, MemberKey))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_ForgetsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("user:efe"))
	assert.False(t, rl.Allow("user:efe"))
	assert.True(t, rl.Allow("ip:10.0.0.1"))
	require.Equal(t, 2, rl.Len())

	now = now.Add(2 * time.Minute)
	rl.forgetIdle()
	assert.Equal(t, 0, rl.Len())
}

func TestCorsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware())

	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/test", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

type fixedQueue int64

func (q fixedQueue) QueueLength(context.Context) int64 { return int64(q) }

func testServer() *Server {
	gin.SetMode(gin.TestMode)
	return New(&config.Config{
		Port:           "0",
		JWTSecret:      "test-secret",
		RateLimitRPS:         1000,
		RateLimitBurst:       1000,
		MemberRateLimitRPS:   1000,
		MemberRateLimitBurst: 1000,
	}, Deps{Queue: fixedQueue(3)})
}

func TestRoutes_Public(t *testing.T) {
	srv := testServer()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","email_queue":3}`, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rowmatch_http_requests_total")
}

func TestRoutes_RoleSeparation(t *testing.T) {
	srv := testServer()

	member, err := auth.GenerateAccessToken("efe", "efe@example.com", auth.RoleMember, "test-secret")
	require.NoError(t, err)
	service, err := auth.GenerateServiceToken("activity", "test-secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"activities without token", "GET", "/activities", "", http.StatusUnauthorized},
		{"activities with service token", "GET", "/activities", service, http.StatusForbidden},
		{"notify without token", "POST", "/notify", "", http.StatusUnauthorized},
		{"notify with member token", "POST", "/notify", member, http.StatusForbidden},
		{"unknown route", "GET", "/nope", member, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}
