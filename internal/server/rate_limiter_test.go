package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	limiter := newRateLimiter(2, time.Hour)

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("first request denied")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("second request denied")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("third request allowed past the limit")
	}

	// Other keys have their own window.
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("independent key denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	limiter := newRateLimiter(1, time.Millisecond)

	if !limiter.Allow("1.2.3.4") {
		t.Fatal("first request denied")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("second request allowed within the window")
	}

	time.Sleep(5 * time.Millisecond)
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("request denied after the window elapsed")
	}
}

func TestRateLimiterEmptyKey(t *testing.T) {
	limiter := newRateLimiter(10, time.Hour)
	if limiter.Allow("") {
		t.Fatal("empty key allowed")
	}
}

func TestRateLimitedMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := &Server{}
	limiter := newRateLimiter(1, time.Hour)

	engine := gin.New()
	engine.POST("/guarded", s.rateLimited(limiter), func(c *gin.Context) {
		respondMessage(c, "ok")
	})

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/guarded", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/guarded", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
}
