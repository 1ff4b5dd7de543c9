package proposalhttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-proposal/proposal"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const payload = `{
  "meta": {"title": "Acme Partnership", "preparedFor": "Acme"},
  "sections": [
    {"id": "c", "type": "cover", "title": "Hello"},
    {"id": "t", "type": "timeline", "title": "Plan", "steps": [{"date": "Q1", "title": "Kickoff"}]}
  ]
}`

type stubConverter struct{}

func (stubConverter) Convert(context.Context, []byte) ([]byte, error) {
	return []byte("%PDF-1.7"), nil
}

func newTestHandler(t *testing.T, basePath string) *Handler {
	t.Helper()
	store := proposal.NewMemoryStore()
	store.PutRaw("acme", []byte(payload))
	svc, err := proposal.NewService(proposal.ServiceConfig{Store: store, PDF: stubConverter{}})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	handler, err := NewHandler(Config{Service: svc, BasePath: basePath})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler
}

func TestHandler_ServeProposal(t *testing.T) {
	handler := newTestHandler(t, "")
	req := httptest.NewRequest(http.MethodGet, "/acme", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if !strings.Contains(rec.Body.String(), "<title>Acme Partnership</title>") {
		t.Fatalf("expected proposal title in body")
	}
}

func TestHandler_NotFoundPage(t *testing.T) {
	handler := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Proposal Not Found") {
		t.Fatalf("expected not found page, got %q", rec.Body.String())
	}
}

func TestHandler_PDFDownloadQuery(t *testing.T) {
	handler := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/pdf?download=true", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="acme.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Header().Get("Content-Length") != "8" {
		t.Fatalf("unexpected content length %q", rec.Header().Get("Content-Length"))
	}
}

func TestHandler_HealthJSON(t *testing.T) {
	handler := newTestHandler(t, "")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
}

func TestHandler_RegisterRoutesOnServeMux(t *testing.T) {
	handler := newTestHandler(t, "/proposals")
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := server.Client().Get(server.URL + "/proposals/acme/workbook")
	if err != nil {
		t.Fatalf("get workbook: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	server.Client().CloseIdleConnections()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(string(body), "PK") {
		t.Fatalf("expected xlsx body")
	}
}

func TestHandler_NilHandler(t *testing.T) {
	var handler *Handler
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
