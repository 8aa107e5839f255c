package webhook

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/autopr-dev/autopr/internal/config"
)

func TestRouterRoutesWebhook(t *testing.T) {
	secret := "test-secret"
	h := NewHandler(secret, "autopr", nil, nil)
	s := NewServer(config.ServerConfig{Port: 0}, h)

	body := []byte(`{"issue":{"number":1}}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(body, secret))
	req.Header.Set("X-GitHub-Event", "push")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	s := NewServer(config.ServerConfig{}, NewHandler("s", "autopr", nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	s := NewServer(config.ServerConfig{}, NewHandler("s", "autopr", nil, nil))

	big := strings.NewReader(strings.Repeat("a", (25<<20)+1))
	req := httptest.NewRequest(http.MethodPost, "/webhook", big)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK || rec.Code == http.StatusAccepted {
		t.Fatalf("oversized body accepted with status %d", rec.Code)
	}
}
