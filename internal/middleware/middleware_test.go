package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/openwaterdata/waterrights/internal/logger"
	"github.com/openwaterdata/waterrights/internal/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// call wraps okHandler in mw and serves one request with the given method
// and Origin header.
func call(t *testing.T, mw func(http.Handler) http.Handler, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/WaterRights/find", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	mw(okHandler).ServeHTTP(rec, req)
	return rec
}

// TestCORS_AllowedOrigin verifies that an allow-listed origin is echoed back.
func TestCORS_AllowedOrigin(t *testing.T) {
	mw := middleware.CORS([]string{"https://maps.example.org"})

	rec := call(t, mw, http.MethodPost, "https://maps.example.org")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://maps.example.org" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Errorf("expected Vary: Origin, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// TestCORS_UnknownOrigin verifies that an origin off the list gets no
// allow header but the request still goes through.
func TestCORS_UnknownOrigin(t *testing.T) {
	mw := middleware.CORS([]string{"https://maps.example.org"})

	rec := call(t, mw, http.MethodPost, "https://evil.example.com")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got == "" {
		t.Error("expected expose-headers to be set regardless of origin")
	}
}

// TestCORS_Preflight verifies that OPTIONS short-circuits with 204.
func TestCORS_Preflight(t *testing.T) {
	mw := middleware.CORS([]string{"https://maps.example.org"})

	rec := call(t, mw, http.MethodOptions, "https://maps.example.org")

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// TestThrottle_RejectsOverBurst verifies that the shared bucket admits the
// burst and then answers 429 with a Retry-After header.
func TestThrottle_RejectsOverBurst(t *testing.T) {
	mw := middleware.Throttle(1, 2)
	h := mw(okHandler)

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/WaterRights/download", nil))
		codes[i] = rec.Code
		if i == 2 && rec.Header().Get("Retry-After") != "60" {
			t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected the first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected the third request to get 429, got %d", codes[2])
	}
}

// TestRateLimitByIP_SeparatesClients verifies that one client running out
// of requests does not affect another.
func TestRateLimitByIP_SeparatesClients(t *testing.T) {
	h := middleware.RateLimitByIP(1)(okHandler)

	serve := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := serve("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("expected second request from the same IP to get 429, got %d", code)
	}
	if code := serve("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("expected a different IP to pass, got %d", code)
	}
}

// TestRequestLogger_LogsRouteAndStatus verifies the completion log line and
// that handlers can reach the request logger through the context.
func TestRequestLogger_LogsRouteAndStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(zap.New(core)))
	r.Get("/WaterRights/{waterRightId}", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("handler")
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/WaterRights/abc", nil))

	if logs.FilterMessage("handler").Len() != 1 {
		t.Fatal("expected the handler to log through the context logger")
	}
	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log line, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["route"] != "/WaterRights/{waterRightId}" {
		t.Errorf("expected route pattern, got %v", fields["route"])
	}
	if fields["status"] != int64(http.StatusNotFound) {
		t.Errorf("expected status 404, got %v", fields["status"])
	}
	if fields["request_id"] == "" {
		t.Error("expected a request id")
	}
}
