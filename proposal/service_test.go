package proposal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	errorslib "github.com/goliatone/go-errors"
	"github.com/xuri/excelize/v2"
)

type stubConverter struct {
	mu    sync.Mutex
	calls int
	html  []byte
	out   []byte
	err   error
}

func (s *stubConverter) Convert(_ context.Context, html []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.html = append([]byte(nil), html...)
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

type recordingLogger struct {
	NopLogger
	mu     sync.Mutex
	errors int
}

func (l *recordingLogger) Errorf(string, ...any) {
	l.mu.Lock()
	l.errors++
	l.mu.Unlock()
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []byte) error {
	return errors.New("cache down")
}

func newFixtureStore(t *testing.T) *MemoryStore {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "acme.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	store := NewMemoryStore()
	store.PutRaw("acme", data)
	return store
}

func newTestService(t *testing.T, cfg ServiceConfig) Service {
	t.Helper()
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceDocument(t *testing.T) {
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t)})
	doc, err := svc.Document(context.Background(), "acme")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc.ID != "acme" || len(doc.Sections) != 11 {
		t.Fatalf("unexpected document %q with %d sections", doc.ID, len(doc.Sections))
	}
}

func TestServiceDocumentErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t)})

	_, err := svc.Document(ctx, "missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var ge *errorslib.Error
	if !errors.As(err, &ge) || ge.TextCode != "not_found" {
		t.Fatalf("expected go-errors not_found, got %v", err)
	}

	_, err = svc.Document(ctx, "  ")
	if !errors.As(err, &ge) || ge.Category != errorslib.CategoryValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	noStore := newTestService(t, ServiceConfig{})
	_, err = noStore.Document(ctx, "acme")
	if !errors.As(err, &ge) || ge.Category != errorslib.CategoryInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestServiceRenderHTML(t *testing.T) {
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t)})
	var buf bytes.Buffer
	if err := svc.Render(context.Background(), "acme", FormatHTML, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`data-section-id="s-back"`)) {
		t.Fatalf("expected back cover in output")
	}
}

func TestServiceRenderPDFNotConfigured(t *testing.T) {
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t)})
	err := svc.Render(context.Background(), "acme", FormatPDF, &bytes.Buffer{})
	var ge *errorslib.Error
	if !errors.As(err, &ge) || ge.TextCode != "not_implemented" {
		t.Fatalf("expected not_implemented, got %v", err)
	}
}

func TestServiceRenderPDFUsesCache(t *testing.T) {
	ctx := context.Background()
	converter := &stubConverter{out: []byte("%PDF-1.7 stub")}
	svc := newTestService(t, ServiceConfig{
		Store: newFixtureStore(t),
		PDF:   converter,
		Cache: NewMemoryCache(0),
	})

	for i := 0; i < 3; i++ {
		var buf bytes.Buffer
		if err := svc.Render(ctx, "acme", FormatPDF, &buf); err != nil {
			t.Fatalf("render pdf: %v", err)
		}
		if buf.String() != "%PDF-1.7 stub" {
			t.Fatalf("unexpected pdf bytes %q", buf.String())
		}
	}
	if converter.calls != 1 {
		t.Fatalf("expected one conversion, got %d", converter.calls)
	}
	if !bytes.Contains(converter.html, []byte("<!DOCTYPE html>")) {
		t.Fatalf("expected converter to receive composed html")
	}
}

func TestServiceRenderPDFCacheInvalidatedByContent(t *testing.T) {
	ctx := context.Background()
	store := newFixtureStore(t)
	converter := &stubConverter{out: []byte("pdf")}
	svc := newTestService(t, ServiceConfig{Store: store, PDF: converter, Cache: NewMemoryCache(0)})

	if err := svc.Render(ctx, "acme", FormatPDF, &bytes.Buffer{}); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	doc, err := store.Get(ctx, "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	doc.Meta.PreparedFor = "Globex"
	if err := store.Put(ctx, doc); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := svc.Render(ctx, "acme", FormatPDF, &bytes.Buffer{}); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if converter.calls != 2 {
		t.Fatalf("expected edited proposal to be converted again, got %d calls", converter.calls)
	}
}

func TestServiceRenderPDFCacheFailuresAreLogged(t *testing.T) {
	logger := &recordingLogger{}
	converter := &stubConverter{out: []byte("pdf")}
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t), PDF: converter, Cache: failingCache{}, Logger: logger})

	var buf bytes.Buffer
	if err := svc.Render(context.Background(), "acme", FormatPDF, &buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if buf.String() != "pdf" || logger.errors != 2 {
		t.Fatalf("expected pdf output and two logged cache errors, got %q / %d", buf.String(), logger.errors)
	}
}

func TestServiceRenderPDFConverterError(t *testing.T) {
	converter := &stubConverter{err: NewError(KindTimeout, "chromium timed out", nil)}
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t), PDF: converter})
	err := svc.Render(context.Background(), "acme", FormatPDF, &bytes.Buffer{})
	var ge *errorslib.Error
	if !errors.As(err, &ge) || ge.TextCode != "timeout" {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestServiceRenderWorkbook(t *testing.T) {
	svc := newTestService(t, ServiceConfig{Store: newFixtureStore(t)})
	var buf bytes.Buffer
	if err := svc.Render(context.Background(), "acme", FormatXLSX, &buf); err != nil {
		t.Fatalf("render xlsx: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	want := []string{SheetInvestment, SheetImpact, SheetGraph, SheetTimeline}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	rows, err := file.GetRows(SheetInvestment)
	if err != nil {
		t.Fatalf("investment rows: %v", err)
	}
	if len(rows) != 4 || rows[0][1] != "Item" || rows[1][1] != "Scholarships" || rows[3][2] != "$55,000" {
		t.Fatalf("unexpected investment rows %v", rows)
	}

	rows, err = file.GetRows(SheetImpact)
	if err != nil {
		t.Fatalf("impact rows: %v", err)
	}
	if len(rows) != 3 || rows[1][2] != "1200" || rows[1][3] != "+" {
		t.Fatalf("unexpected impact rows %v", rows)
	}

	rows, err = file.GetRows(SheetTimeline)
	if err != nil {
		t.Fatalf("timeline rows: %v", err)
	}
	if len(rows) != 3 || rows[2][2] != "Review" {
		t.Fatalf("unexpected timeline rows %v", rows)
	}
}

func TestServiceRenderDocumentValidation(t *testing.T) {
	svc := newTestService(t, ServiceConfig{})
	var ge *errorslib.Error
	if err := svc.RenderDocument(context.Background(), Document{}, FormatHTML, nil); !errors.As(err, &ge) || ge.Category != errorslib.CategoryValidation {
		t.Fatalf("expected validation error for nil writer, got %v", err)
	}
	if err := svc.RenderDocument(context.Background(), Document{}, Format("docx"), &bytes.Buffer{}); !errors.As(err, &ge) || ge.Category != errorslib.CategoryValidation {
		t.Fatalf("expected validation error for unknown format, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":         FormatHTML,
		"HTML":     FormatHTML,
		"pdf":      FormatPDF,
		" xlsx ":   FormatXLSX,
		"workbook": FormatXLSX,
	}
	for raw, want := range cases {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q): expected %s, got %s (%v)", raw, want, got, err)
		}
	}
	if _, err := ParseFormat("docx"); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if FormatPDF.ContentType() != "application/pdf" || FormatXLSX.Extension() != ".xlsx" {
		t.Fatalf("unexpected format metadata")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if data, ok, _ := cache.Get(ctx, "k"); !ok || string(data) != "v" {
		t.Fatalf("expected cached value")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry")
	}
}
