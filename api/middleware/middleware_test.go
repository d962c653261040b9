package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(requestIDHeader)
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || resp.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected generated request id, got %q", seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller id preserved, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); len(got) > maxRequestIDLen {
		t.Fatalf("oversized id should be replaced, got %d chars", len(got))
	}
}

func TestClientContextCopiesHeader(t *testing.T) {
	var got string
	h := ClientContext()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(clientIDHeader, "  tab-7 ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "tab-7" {
		t.Fatalf("expected trimmed client id, got %q", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "" {
		t.Fatalf("expected empty client id, got %q", got)
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	h := Logging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected status passthrough, got %d", resp.Code)
	}
}
