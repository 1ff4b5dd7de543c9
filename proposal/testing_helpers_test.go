package proposal

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFixture(t *testing.T, name string) Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return doc
}

func newTestComposer(t *testing.T, opts ...ComposerOption) *Composer {
	t.Helper()
	composer, err := NewComposer(opts...)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	return composer
}

func floatPtr(v float64) *float64 { return &v }
