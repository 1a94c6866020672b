package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{"chrome-extension://kmnpqrstuvwx"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{"chrome-extension://*"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches first",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "multiple allowed origins - matches second",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"chrome-extension://*"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"chrome-extension://*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{},
			want:           false,
		},
		{
			name:           "partial wildcard match",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{"chrome-*"},
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		method         string
		wantStatus     int
		checkHeaders   bool
		wantCORS       bool
	}{
		{
			name:           "allowed origin - GET request",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{"chrome-extension://*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			checkHeaders:   true,
			wantCORS:       true,
		},
		{
			name:           "allowed origin - OPTIONS request",
			origin:         "chrome-extension://kmnpqrstuvwx",
			allowedOrigins: []string{"chrome-extension://*"},
			method:         "OPTIONS",
			wantStatus:     http.StatusNoContent,
			checkHeaders:   true,
			wantCORS:       true,
		},
		{
			name:           "disallowed origin",
			origin:         "http://evil.com",
			allowedOrigins: []string{"chrome-extension://*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			checkHeaders:   true,
			wantCORS:       false,
		},
		{
			name:           "no origin header",
			origin:         "",
			allowedOrigins: []string{"chrome-extension://*"},
			method:         "GET",
			wantStatus:     http.StatusOK,
			checkHeaders:   true,
			wantCORS:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup router
			router := gin.New()
			router.Use(CORSMiddleware(tt.allowedOrigins))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "OK")
			})

			// Create request
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			// Record response
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			// Check status
			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			// Check CORS headers
			if tt.checkHeaders {
				corsHeader := w.Header().Get("Access-Control-Allow-Origin")
				if tt.wantCORS {
					if corsHeader != tt.origin {
						t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
					}
					if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
						t.Errorf("Access-Control-Allow-Credentials not set to true")
					}
				} else {
					if corsHeader != "" {
						t.Errorf("Access-Control-Allow-Origin should not be set for disallowed origin, got %s", corsHeader)
					}
				}
			}
		})
	}
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORSMiddleware([]string{"chrome-extension://*"}))
	router.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Create preflight request
	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "chrome-extension://kmnpqrstuvwx")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Should return 204 No Content
	if w.Code != http.StatusNoContent {
		t.Errorf("Preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}

	// Check CORS headers
	if w.Header().Get("Access-Control-Allow-Origin") != "chrome-extension://kmnpqrstuvwx" {
		t.Errorf("Access-Control-Allow-Origin not set correctly")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("Access-Control-Allow-Methods not set")
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Errorf("Access-Control-Allow-Headers not set")
	}
	if w.Header().Get("Access-Control-Max-Age") == "" {
		t.Errorf("Access-Control-Max-Age not set")
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	original := log.Logger
	t.Cleanup(func() { log.Logger = original })
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	newRouter := func(seen *context.Context) *gin.Engine {
		router := gin.New()
		router.Use(RequestLoggerMiddleware())
		router.GET("/test", func(c *gin.Context) {
			*seen = c.Request.Context()
			c.String(http.StatusOK, "OK")
		})
		return router
	}

	t.Run("generates request id and attaches logger", func(t *testing.T) {
		buf.Reset()
		var ctx context.Context
		router := newRouter(&ctx)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		rid := w.Header().Get(requestIDHeader)
		require.Len(t, rid, 36)

		require.NotNil(t, ctx)
		zerolog.Ctx(ctx).Info().Msg("inside handler")
		assert.Contains(t, buf.String(), rid)
		assert.Contains(t, buf.String(), "inside handler")
		assert.Contains(t, buf.String(), "http request served")
	})

	t.Run("propagates incoming request id", func(t *testing.T) {
		buf.Reset()
		var ctx context.Context
		router := newRouter(&ctx)

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(requestIDHeader, "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
		assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	})
}

func TestIPRateLimiter(t *testing.T) {
	t.Run("disabled for non-positive limit", func(t *testing.T) {
		assert.Nil(t, NewIPRateLimiter(0))
		assert.Nil(t, NewIPRateLimiter(-5))
	})

	t.Run("buckets are per IP", func(t *testing.T) {
		limiter := NewIPRateLimiter(2)

		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.True(t, limiter.Allow("10.0.0.1"))
		assert.False(t, limiter.Allow("10.0.0.1"))

		assert.True(t, limiter.Allow("10.0.0.2"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("answers 429 when bucket is empty", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimitMiddleware(NewIPRateLimiter(1)))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Contains(t, second.Body.String(), "rate limit exceeded")
	})

	t.Run("nil limiter lets requests through", func(t *testing.T) {
		router := gin.New()
		router.Use(RateLimitMiddleware(nil))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
