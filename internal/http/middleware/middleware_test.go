package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- RequestID ---

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	r := newEngine()
	r.Use(RequestID())
	var inCtx string
	r.GET("/", func(c *gin.Context) {
		inCtx = RequestIDFrom(c)
		c.Status(http.StatusOK)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	rid := w.Header().Get("X-Request-ID")
	if rid == "" {
		t.Fatalf("no X-Request-ID on response")
	}
	if inCtx != rid {
		t.Fatalf("context id %q != header id %q", inCtx, rid)
	}
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	r := newEngine()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := do(r, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q, want abc-123", got)
	}
}

// --- AccessLogger / LoggerFrom ---

func TestLoggerFrom_AttachedByAccessLogger(t *testing.T) {
	r := newEngine()
	r.Use(RequestID(), AccessLogger())
	r.GET("/", func(c *gin.Context) {
		if LoggerFrom(c) == nil {
			t.Errorf("LoggerFrom returned nil inside handler")
		}
		c.Status(http.StatusOK)
	})
	do(r, httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestLoggerFrom_FallbackWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatalf("LoggerFrom must never return nil")
	}
}

// --- Recovery ---

func TestRecovery_RendersAndAborts(t *testing.T) {
	r := newEngine()
	rendered := 0
	r.Use(Recovery(func(c *gin.Context, status int) {
		rendered = status
		c.String(status, "oops")
	}))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if rendered != http.StatusInternalServerError {
		t.Fatalf("render called with %d", rendered)
	}
	if strings.Contains(w.Body.String(), "kaboom") {
		t.Fatalf("panic value leaked to the client: %s", w.Body.String())
	}
}

// --- PII redaction ---

func TestRedact(t *testing.T) {
	cases := []struct {
		in       string
		leaks    []string
		expected string
	}{
		{
			in:    "email=ada@example.com&x=1",
			leaks: []string{"ada@example.com"},
		},
		{
			in:    "call me at +1 555-123-4567 please",
			leaks: []string{"555-123-4567"},
		},
		{
			in:       "nothing sensitive here",
			expected: "nothing sensitive here",
		},
	}
	for _, tc := range cases {
		got := redact(tc.in)
		for _, leak := range tc.leaks {
			if strings.Contains(got, leak) {
				t.Fatalf("redact(%q) = %q still contains %q", tc.in, got, leak)
			}
		}
		if tc.expected != "" && got != tc.expected {
			t.Fatalf("redact(%q) = %q, want unchanged", tc.in, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abcd…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("short strings must pass through, got %q", got)
	}
}

// --- Rate limiter ---

func TestRateLimiter_BurstThenThrottle(t *testing.T) {
	rl := NewRateLimiter(0.01, 2)

	r := newEngine()
	r.POST("/", rl.Handler(func(c *gin.Context, status int) {
		c.String(status, "limited")
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		if w := do(r, httptest.NewRequest(http.MethodPost, "/", nil)); w.Code != http.StatusOK {
			t.Fatalf("request %d within burst got %d", i+1, w.Code)
		}
	}
	w := do(r, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over-burst request got %d, want 429", w.Code)
	}
	if w.Body.String() != "limited" {
		t.Fatalf("throttle render not used: %q", w.Body.String())
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(0.01, 1)

	if !rl.getVisitor("ip:10.0.0.1").Allow() {
		t.Fatalf("first request for key A should pass")
	}
	if rl.getVisitor("ip:10.0.0.1").Allow() {
		t.Fatalf("second request for key A should be throttled")
	}
	if !rl.getVisitor("ip:10.0.0.2").Allow() {
		t.Fatalf("key B must have its own bucket")
	}
}

func TestNewRateLimiter_CoercesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 0)
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1", rl.burst)
	}
}

// --- Security headers ---

func securityEngine(opt SecurityOptions) *gin.Engine {
	r := newEngine()
	r.Use(SecurityHeaders(opt))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	w := do(securityEngine(SecurityOptions{}), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("Referrer-Policy = %q", got)
	}
	if w.Header().Get("Content-Security-Policy") != "" {
		t.Fatalf("CSP must be off by default")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must be off by default")
	}
}

func TestSecurityHeaders_CSP(t *testing.T) {
	w := do(securityEngine(SecurityOptions{EnableCSP: true}), httptest.NewRequest(http.MethodGet, "/", nil))
	csp := w.Header().Get("Content-Security-Policy")
	for _, want := range []string{"default-src 'self'", "form-action 'self'", "frame-ancestors 'none'"} {
		if !strings.Contains(csp, want) {
			t.Fatalf("CSP %q missing %q", csp, want)
		}
	}
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	r := securityEngine(SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour})

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be emitted on plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = do(r, req)
	hsts := w.Header().Get("Strict-Transport-Security")
	if !strings.Contains(hsts, "max-age=3600") || !strings.Contains(hsts, "includeSubDomains") {
		t.Fatalf("HSTS header = %q", hsts)
	}
}
