package cachefs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-proposal/proposal"
)

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(t.TempDir(), 0)

	if _, ok, err := cache.Get(ctx, "proposal/acme/pdf/abc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := cache.Set(ctx, "proposal/acme/pdf/abc", []byte("%PDF")); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := cache.Get(ctx, "proposal/acme/pdf/abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != "%PDF" {
		t.Fatalf("unexpected payload %q", data)
	}

	if err := cache.Delete(ctx, "proposal/acme/pdf/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "proposal/acme/pdf/abc"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_KeysStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	cache := NewCache(root, 0)

	if err := cache.Set(ctx, "../../etc/passwd", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if strings.Contains(info.Name(), "passwd") {
			t.Fatalf("key text leaked into path %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewCache(t.TempDir(), time.Minute)
	cache.Now = func() time.Time { return now }

	if err := cache.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if _, err := os.Stat(cache.path("k")); !os.IsNotExist(err) {
		t.Fatalf("expected expired entry to be removed")
	}
}

func TestCache_Validation(t *testing.T) {
	ctx := context.Background()
	if err := (&Cache{}).Set(ctx, "k", nil); proposal.KindFromError(err) != proposal.KindValidation {
		t.Fatalf("expected validation error for missing root, got %v", err)
	}
	if _, _, err := NewCache(t.TempDir(), 0).Get(ctx, ""); proposal.KindFromError(err) != proposal.KindValidation {
		t.Fatalf("expected validation error for empty key, got %v", err)
	}
}
