package storepgx

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/goliatone/go-proposal/proposal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PROPOSAL_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("PROPOSAL_TEST_PG_DSN not set; skipping postgres store test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.CreateSchema(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return store
}

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := uuid.NewString()
	t.Cleanup(func() {
		_, _ = store.Pool.Exec(context.Background(), `DELETE FROM proposals WHERE id = $1`, id)
	})

	doc := proposal.Document{
		ID:   id,
		Meta: proposal.Meta{PreparedFor: "Acme"},
		Sections: []proposal.Section{
			proposal.TimelineSection{SectionBase: proposal.SectionBase{ID: "t"}, Steps: []proposal.TimelineStep{{Date: "Q1", Title: "Launch"}}},
		},
	}
	if err := store.Put(ctx, doc); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	timeline, ok := got.Sections[0].(proposal.TimelineSection)
	if !ok || len(timeline.Steps) != 1 || timeline.Steps[0].Title != "Launch" {
		t.Fatalf("unexpected sections %+v", got.Sections)
	}
	if got.Meta.PreparedFor != "Acme" || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected document %+v", got)
	}
}

func TestStore_ListIncludesPut(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id := uuid.NewString()
	t.Cleanup(func() {
		_, _ = store.Pool.Exec(context.Background(), `DELETE FROM proposals WHERE id = $1`, id)
	})
	if err := store.Put(ctx, proposal.Document{ID: id, Meta: proposal.Meta{Title: "Listed"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, got := range ids {
		if got == id {
			return
		}
	}
	t.Fatalf("expected %s in %v", id, ids)
}

func TestStore_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), uuid.NewString()); !proposal.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStore_Unconfigured(t *testing.T) {
	var store *Store
	if _, err := store.Get(context.Background(), "acme"); proposal.KindFromError(err) != proposal.KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", err)
	}
	if _, err := store.List(context.Background()); proposal.KindFromError(err) != proposal.KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", err)
	}
	empty := &Store{}
	if err := empty.Put(context.Background(), proposal.Document{ID: "x"}); proposal.KindFromError(err) != proposal.KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", err)
	}
}
