package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/outfitlens/backend/config"
	"github.com/outfitlens/backend/internal/domain"
	"github.com/outfitlens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubRecommender records calls and returns a fixed result
type stubRecommender struct {
	mu       sync.Mutex
	result   usecase.RecommendResult
	messages []string
	limits   []int
}

func (s *stubRecommender) Recommend(ctx context.Context, message string, limit int) usecase.RecommendResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	s.limits = append(s.limits, limit)
	return s.result
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
		RateLimit: config.RateLimitConfig{
			PerIP: 0,
		},
	}
}

// setupTestRouter creates a test router around recommender
func setupTestRouter(recommender Recommender) *gin.Engine {
	return SetupRouter(testConfig(), NewHandler(recommender))
}

func sampleResult() usecase.RecommendResult {
	return usecase.RecommendResult{
		Outfits: []domain.OutfitCandidate{
			{
				Title:            "Glamorous One-Piece Look",
				OutfitType:       domain.OutfitCompleteLook,
				TotalPrice:       89,
				StyleExplanation: "A black dress that works on its own.",
				Items: []domain.FormattedItem{
					{SKU: "D-100", Title: "Black Sequin Party Dress", Price: 89, Category: domain.CategoryDress, RelevanceScore: 70},
				},
			},
		},
		Keywords: domain.NewKeywordBundle(domain.KeywordBundle{
			Keywords: []string{"party"},
			Colors:   []string{"black"},
		}),
	}
}

func postRecommend(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/api/v1/outfits/recommend", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(nil)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "outfitlens-backend" {
			t.Errorf("service = %v, want outfitlens-backend", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestRecommendEndpoint tests the outfit recommendation endpoint
func TestRecommendEndpoint(t *testing.T) {
	t.Run("returns outfits and keywords", func(t *testing.T) {
		stub := &stubRecommender{result: sampleResult()}
		router := setupTestRouter(stub)

		w := postRecommend(router, `{"message":"  going dancing tonight ","limit":2}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
		}
		if len(stub.messages) != 1 || stub.messages[0] != "going dancing tonight" {
			t.Errorf("recommender messages = %v, want trimmed message", stub.messages)
		}
		if stub.limits[0] != 2 {
			t.Errorf("recommender limit = %d, want 2", stub.limits[0])
		}

		var response RecommendResponse
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if len(response.Outfits) != 1 || response.Outfits[0].Items[0].SKU != "D-100" {
			t.Errorf("outfits = %+v, want the D-100 look", response.Outfits)
		}
		if response.Keywords.PriceRange != domain.PriceMidRange {
			t.Errorf("keywords.price_range = %q, want mid_range", response.Keywords.PriceRange)
		}
	})

	t.Run("empty result serializes as empty list", func(t *testing.T) {
		stub := &stubRecommender{}
		router := setupTestRouter(stub)

		w := postRecommend(router, `{"message":"anything"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), `"outfits":[]`) {
			t.Errorf("body = %s, want outfits:[]", w.Body.String())
		}
		if stub.limits[0] != 0 {
			t.Errorf("limit = %d, want 0 passed through for defaulting", stub.limits[0])
		}
	})

	t.Run("rejects invalid bodies", func(t *testing.T) {
		bodies := map[string]string{
			"missing message": `{"limit":2}`,
			"blank message":   `{"message":"   "}`,
			"not json":        `message=hello`,
			"too long":        `{"message":"` + strings.Repeat("a", maxMessageLength+1) + `"}`,
		}

		for name, body := range bodies {
			stub := &stubRecommender{}
			router := setupTestRouter(stub)

			w := postRecommend(router, body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: Status = %d, want %d", name, w.Code, http.StatusBadRequest)
			}
			if len(stub.messages) != 0 {
				t.Errorf("%s: recommender should not be called", name)
			}
		}
	})

	t.Run("returns not implemented without recommender", func(t *testing.T) {
		router := setupTestRouter(nil)

		w := postRecommend(router, `{"message":"dinner"}`)

		if w.Code != http.StatusNotImplemented {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotImplemented)
		}
		if !strings.Contains(w.Body.String(), "not configured") {
			t.Errorf("body = %s, want 'not configured'", w.Body.String())
		}
	})

	t.Run("requires correct path and method", func(t *testing.T) {
		router := setupTestRouter(&stubRecommender{})

		for _, path := range []string{"/api/v1/outfits", "/api/outfits/recommend", "/outfits/recommend"} {
			req, _ := http.NewRequest("POST", path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusNotFound {
				t.Errorf("Path %s: Status = %d, want %d", path, rec.Code, http.StatusNotFound)
			}
		}

		req, _ := http.NewRequest("GET", "/api/v1/outfits/recommend", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET: Status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("rate limits per client", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit.PerIP = 1
		router := SetupRouter(cfg, NewHandler(&stubRecommender{}))

		if w := postRecommend(router, `{"message":"x"}`); w.Code != http.StatusOK {
			t.Fatalf("first Status = %d, want %d", w.Code, http.StatusOK)
		}
		if w := postRecommend(router, `{"message":"x"}`); w.Code != http.StatusTooManyRequests {
			t.Errorf("second Status = %d, want %d", w.Code, http.StatusTooManyRequests)
		}
	})

	forwardedFrom := func(router *gin.Engine, forwardedFor string) int {
		req := httptest.NewRequest("POST", "/api/v1/outfits/recommend", strings.NewReader(`{"message":"x"}`))
		req.RemoteAddr = "203.0.113.7:41000"
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("forwarded header ignored without trusted proxies", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit.PerIP = 1
		router := SetupRouter(cfg, NewHandler(&stubRecommender{}))

		if code := forwardedFrom(router, "198.51.100.1"); code != http.StatusOK {
			t.Fatalf("first Status = %d, want %d", code, http.StatusOK)
		}
		if code := forwardedFrom(router, "198.51.100.2"); code != http.StatusTooManyRequests {
			t.Errorf("spoofed Status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})

	t.Run("forwarded header honoured behind trusted proxy", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit.PerIP = 1
		cfg.Server.TrustedProxies = []string{"203.0.113.0/24"}
		router := SetupRouter(cfg, NewHandler(&stubRecommender{}))

		if code := forwardedFrom(router, "198.51.100.1"); code != http.StatusOK {
			t.Fatalf("first client Status = %d, want %d", code, http.StatusOK)
		}
		if code := forwardedFrom(router, "198.51.100.2"); code != http.StatusOK {
			t.Errorf("second client Status = %d, want %d", code, http.StatusOK)
		}
		if code := forwardedFrom(router, "198.51.100.1"); code != http.StatusTooManyRequests {
			t.Errorf("repeat client Status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})

	t.Run("invalid trusted proxies fall back to remote address", func(t *testing.T) {
		cfg := testConfig()
		cfg.RateLimit.PerIP = 1
		cfg.Server.TrustedProxies = []string{"not-an-ip"}
		router := SetupRouter(cfg, NewHandler(&stubRecommender{}))

		forwardedFrom(router, "198.51.100.1")
		if code := forwardedFrom(router, "198.51.100.2"); code != http.StatusTooManyRequests {
			t.Errorf("spoofed Status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for extension", func(t *testing.T) {
		router := setupTestRouter(nil)

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "chrome-extension://kmnpqrstuvwx")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "chrome-extension://kmnpqrstuvwx" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
		}
		if w.Header().Get(requestIDHeader) == "" {
			t.Errorf("%s header not set", requestIDHeader)
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter(nil)
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
