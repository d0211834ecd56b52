package chassis

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/companygraph/pkg/mcpquic"
)

func TestDevelopmentTLSConfig(t *testing.T) {
	cfg, err := DevelopmentTLSConfig()
	if err != nil {
		t.Fatalf("DevelopmentTLSConfig: %v", err)
	}
	if len(cfg.NextProtos) != 2 || cfg.NextProtos[0] != ALPNHTTP3 || cfg.NextProtos[1] != mcpquic.ALPNProtocolMCP {
		t.Errorf("NextProtos = %v", cfg.NextProtos)
	}
	// Each config owns its ALPN slice.
	cfg.NextProtos[0] = "x"
	if quicProtos[0] != ALPNHTTP3 {
		t.Error("config shares the package ALPN slice")
	}
}

func TestProductionTLSConfig_Missing(t *testing.T) {
	if _, err := ProductionTLSConfig("/nonexistent/cert.pem", "/nonexistent/key.pem"); err == nil {
		t.Error("expected error for missing cert files")
	}
}

func TestNew_Headers(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	s, err := New(Config{Addr: "127.0.0.1:9443", Handler: api})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Alt-Svc"); got != `h3=":9443"; ma=86400` {
		t.Errorf("Alt-Svc = %q", got)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if s.mcpHandler != nil {
		t.Error("MCP handler created without an MCP server")
	}
}

func TestNew_NilHandler(t *testing.T) {
	if _, err := New(Config{Addr: ":0"}); err == nil {
		t.Error("expected error for nil handler")
	}
}
