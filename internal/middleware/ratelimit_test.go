package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	if got := RealIP(r); got != "192.0.2.10" {
		t.Errorf("RealIP = %q, want RemoteAddr host", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5")
	if got := RealIP(r); got != "203.0.113.5" {
		t.Errorf("RealIP = %q, want forwarded address", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.5, 198.51.100.1")
	if got := RealIP(r); got != "203.0.113.5" {
		t.Errorf("RealIP = %q, want first hop", got)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := range 3 {
		if !rl.Allow("a", 3, time.Minute) {
			t.Fatalf("request %d denied under limit", i)
		}
	}
	if rl.Allow("a", 3, time.Minute) {
		t.Error("fourth request allowed over limit")
	}

	// Separate keys get separate windows.
	if !rl.Allow("b", 3, time.Minute) {
		t.Error("fresh key denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	if !rl.Allow("a", 1, 10*time.Millisecond) {
		t.Fatal("first request denied")
	}
	if rl.Allow("a", 1, 10*time.Millisecond) {
		t.Fatal("second request allowed in window")
	}

	time.Sleep(20 * time.Millisecond)
	if !rl.Allow("a", 1, 10*time.Millisecond) {
		t.Error("request denied after window expired")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("stale", 5, 5*time.Millisecond)
	rl.Allow("fresh", 5, time.Minute)

	time.Sleep(10 * time.Millisecond)
	rl.Cleanup()

	rl.mu.Lock()
	_, staleKept := rl.entries["stale"]
	_, freshKept := rl.entries["fresh"]
	rl.mu.Unlock()

	if staleKept {
		t.Error("expired entry survived cleanup")
	}
	if !freshKept {
		t.Error("live entry removed by cleanup")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	handler := RateLimit(rl, RealIP, 2, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := range 2 {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		r.RemoteAddr = "192.0.2.1:1000"
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "192.0.2.1:1000"
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}

	// A different client is unaffected.
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "192.0.2.2:1000"
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}
