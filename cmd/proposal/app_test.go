package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-proposal/config"
	"github.com/goliatone/go-proposal/proposal"
)

func memoryConfig() config.Config {
	cfg := config.Defaults()
	cfg.Store = config.StoreConfig{Driver: config.StoreMemory}
	cfg.PDF.Engine = config.EngineNone
	cfg.Cache.Driver = config.CacheNone
	return cfg
}

func TestNewAppMemory(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close()

	doc := proposal.Document{ID: "acme", Meta: proposal.Meta{Title: "Acme"}}
	if err := app.Store.Put(context.Background(), doc); err != nil {
		t.Fatalf("put: %v", err)
	}
	var buf bytes.Buffer
	if err := app.Service.Render(context.Background(), "acme", proposal.FormatHTML, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "<title>Acme</title>") {
		t.Fatalf("expected rendered title")
	}
	err = app.Service.Render(context.Background(), "acme", proposal.FormatPDF, &buf)
	if ge := proposal.AsGoError(err); ge == nil || ge.TextCode != "not_implemented" {
		t.Fatalf("expected pdf to be disabled, got %v", err)
	}
}

func TestNewAppSQLiteAndFSCache(t *testing.T) {
	cfg := memoryConfig()
	cfg.Store = config.StoreConfig{Driver: config.StoreSQLite, DSN: "file:cmd_app_test?mode=memory&cache=shared"}
	cfg.Cache = config.CacheConfig{Driver: config.CacheFS, Dir: t.TempDir()}

	app, err := NewApp(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close()

	if err := app.Store.Put(context.Background(), proposal.Document{ID: "beta"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ids, err := app.Store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "beta" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestNewAppPDFEngines(t *testing.T) {
	for _, engine := range []string{config.EngineChromium, config.EngineRod, config.EngineWKHTMLTOPDF} {
		cfg := memoryConfig()
		cfg.PDF.Engine = engine
		cfg.PDF.ExternalAssetsPolicy = "block"
		app, err := NewApp(context.Background(), cfg, nil)
		if err != nil {
			t.Fatalf("%s: new app: %v", engine, err)
		}
		if converter := app.openPDF(); converter == nil || converter.Options.ExternalAssetsPolicy != "block" {
			t.Fatalf("%s: expected a configured converter", engine)
		}
		if err := app.Close(); err != nil {
			t.Fatalf("%s: close: %v", engine, err)
		}
	}
}

func TestRenderCommandFromFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "acme.json")
	data, err := os.ReadFile(filepath.Join("..", "..", "proposal", "testdata", "acme.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(input, data, 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	output := filepath.Join(dir, "acme.html")

	t.Setenv("PROPOSAL_PDF_ENGINE", config.EngineNone)
	t.Setenv("PROPOSAL_CACHE_DRIVER", config.CacheNone)
	rootCmd.SetArgs([]string{"render", input, "--format", "html", "-o", output})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render command: %v", err)
	}

	html, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(html), "Prepared For") {
		t.Fatalf("expected composed proposal in output")
	}
}

func TestIDFromPath(t *testing.T) {
	if got := idFromPath("/tmp/data/acme-2026.json"); got != "acme-2026" {
		t.Fatalf("unexpected id %q", got)
	}
}
