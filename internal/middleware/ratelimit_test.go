package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func newRateLimitedHandler(t *testing.T, cfg RateLimiterConfig) (*RateLimiter, http.Handler) {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return rl, handler
}

func requestFrom(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	_, handler := newRateLimitedHandler(t, RateLimiterConfig{
		Rate:            2,
		Burst:           5,
		CleanupInterval: time.Minute,
	})

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.1:1000"))

		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestRateLimitMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	_, handler := newRateLimitedHandler(t, RateLimiterConfig{
		Rate:            1,
		Burst:           2,
		CleanupInterval: time.Minute,
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestFrom("192.0.2.2:1000"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.2:1000"))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}

// TestRateLimitMiddleware_429Response はRetry-AfterヘッダーとJSONボディを検証する。
func TestRateLimitMiddleware_429Response(t *testing.T) {
	_, handler := newRateLimitedHandler(t, RateLimiterConfig{
		Rate:            0.5, // 2秒で1トークン
		Burst:           1,
		CleanupInterval: time.Minute,
	})

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.3:1000"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.3:1000"))

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil {
		t.Fatalf("Retry-After is not an integer: %q", w.Header().Get("Retry-After"))
	}
	if retryAfter != 2 {
		t.Errorf("Retry-After = %d, want 2", retryAfter)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Error == "" {
		t.Error("error message should not be empty")
	}
}

// TestRateLimitMiddleware_IsolatesClients はクライアントIPごとに独立して制限されることを検証する。
func TestRateLimitMiddleware_IsolatesClients(t *testing.T) {
	rl, handler := newRateLimitedHandler(t, RateLimiterConfig{
		Rate:            1,
		Burst:           1,
		CleanupInterval: time.Minute,
	})

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.4:1000"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.4:2000"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("same host different port: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestFrom("192.0.2.5:1000"))
	if w.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want %d", w.Code, http.StatusOK)
	}

	if count := rl.LimiterCount(); count != 2 {
		t.Errorf("LimiterCount() = %d, want 2", count)
	}
}

func TestRateLimiter_CleanupRemovesExpiredEntries(t *testing.T) {
	rl, handler := newRateLimitedHandler(t, RateLimiterConfig{
		Rate:            2,
		Burst:           5,
		CleanupInterval: time.Minute,
	})

	handler.ServeHTTP(httptest.NewRecorder(), requestFrom("192.0.2.6:1000"))

	if rl.LimiterCount() != 1 {
		t.Fatalf("LimiterCount() = %d, want 1", rl.LimiterCount())
	}

	// TTLはCleanupIntervalの2倍
	rl.cleanup(time.Now().Add(time.Minute))
	if rl.LimiterCount() != 1 {
		t.Error("entry within TTL should be kept")
	}

	rl.cleanup(time.Now().Add(3 * time.Minute))
	if count := rl.LimiterCount(); count != 0 {
		t.Errorf("expected 0 limiter entries after cleanup, got %d", count)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	rl.Stop()
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if got := clientKey(req); got != tt.want {
			t.Errorf("clientKey(%q) = %q, want %q", tt.remoteAddr, got, tt.want)
		}
	}
}

func TestNewRateLimiterConfig(t *testing.T) {
	cfg := NewRateLimiterConfig(60, 10)

	if cfg.Rate != 1 {
		t.Errorf("Rate = %v, want 1", cfg.Rate)
	}
	if cfg.Burst != 10 {
		t.Errorf("Burst = %d, want 10", cfg.Burst)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want %v", cfg.CleanupInterval, 5*time.Minute)
	}
}

func TestNewRateLimiterConfig_NonPositiveValuesUseDefaults(t *testing.T) {
	for _, v := range []int{0, -1} {
		cfg := NewRateLimiterConfig(v, v)

		if cfg.Rate != 2 {
			t.Errorf("NewRateLimiterConfig(%d, %d).Rate = %v, want 2", v, v, cfg.Rate)
		}
		if cfg.Burst != 120 {
			t.Errorf("NewRateLimiterConfig(%d, %d).Burst = %d, want 120", v, v, cfg.Burst)
		}
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	cfg := DefaultRateLimiterConfig()

	if cfg.Rate != 2 {
		t.Errorf("Rate = %v, want 2", cfg.Rate)
	}
	if cfg.Burst != 120 {
		t.Errorf("Burst = %d, want 120", cfg.Burst)
	}
}
