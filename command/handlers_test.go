package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/goliatone/go-proposal/query"
)

type stubService struct {
	mu      sync.Mutex
	renders []string
	render  func(ctx context.Context, id string, format proposal.Format, w io.Writer) error
}

func (s *stubService) Document(ctx context.Context, id string) (proposal.Document, error) {
	return proposal.Document{ID: id}, nil
}

func (s *stubService) Render(ctx context.Context, id string, format proposal.Format, w io.Writer) error {
	s.mu.Lock()
	s.renders = append(s.renders, id+":"+string(format))
	s.mu.Unlock()
	if s.render != nil {
		return s.render(ctx, id, format, w)
	}
	_, err := w.Write([]byte("ok"))
	return err
}

func (s *stubService) RenderDocument(ctx context.Context, doc proposal.Document, format proposal.Format, w io.Writer) error {
	return nil
}

func TestSaveProposalHandler(t *testing.T) {
	store := proposal.NewMemoryStore()
	handler := NewSaveProposalHandler(store)

	doc := proposal.Document{
		ID:       "acme",
		Meta:     proposal.Meta{Title: "Acme"},
		Sections: []proposal.Section{proposal.CoverSection{SectionBase: proposal.SectionBase{ID: "c", Type: proposal.SectionCover}, Title: "Hi"}},
	}
	if err := handler.Execute(context.Background(), SaveProposal{Document: doc}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	got, err := store.Get(context.Background(), "acme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Meta.Title != "Acme" || len(got.Sections) != 1 {
		t.Fatalf("unexpected stored document %+v", got)
	}

	if err := (&SaveProposalHandler{}).Execute(context.Background(), SaveProposal{Document: doc}); err == nil {
		t.Fatalf("expected error without writer")
	}
}

func TestSaveProposalValidate(t *testing.T) {
	err := SaveProposal{}.Validate()
	var ge *goerrors.Error
	if !errors.As(err, &ge) || ge.TextCode != "PROPOSAL_ID_REQUIRED" {
		t.Fatalf("expected PROPOSAL_ID_REQUIRED, got %v", err)
	}
}

func TestSaveProposalRejectsReservedID(t *testing.T) {
	store := proposal.NewMemoryStore()
	for _, id := range []string{proposal.HealthID, " HealthZ "} {
		msg := SaveProposal{Document: proposal.Document{ID: id}}
		var ge *goerrors.Error
		if err := msg.Validate(); !errors.As(err, &ge) || ge.TextCode != "PROPOSAL_ID_RESERVED" {
			t.Fatalf("%q: expected PROPOSAL_ID_RESERVED, got %v", id, err)
		}
		if err := NewSaveProposalHandler(store).Execute(context.Background(), msg); err == nil {
			t.Fatalf("%q: expected execute to refuse reserved id", id)
		}
	}
	ids, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected nothing stored, got %v", ids)
	}
}

func TestWarmCommand_RendersPDFForListedProposals(t *testing.T) {
	svc := &stubService{}
	loader := func(ctx context.Context) ([]string, error) {
		return []string{"a", "", "b"}, nil
	}
	cmd := NewWarmCommand(svc, loader)

	count, err := cmd.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 renders, got %d", count)
	}
	if len(svc.renders) != 2 || svc.renders[0] != "a:pdf" || svc.renders[1] != "b:pdf" {
		t.Fatalf("unexpected renders %v", svc.renders)
	}
}

func TestWarmCommand_HonorsLimits(t *testing.T) {
	svc := &stubService{}
	var slept int
	cmd := NewWarmCommand(svc, nil, WithWarmLimits(WarmLimits{MaxProposals: 1, MinInterval: time.Millisecond}))
	cmd.sleep = func(time.Duration) { slept++ }

	count, err := cmd.Run(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if count != 1 || slept != 1 {
		t.Fatalf("expected 1 render and 1 pause, got %d and %d", count, slept)
	}
}

func TestWarmCommand_SkipsMissingAndStopsOnFailure(t *testing.T) {
	svc := &stubService{render: func(ctx context.Context, id string, format proposal.Format, w io.Writer) error {
		switch id {
		case "missing":
			return proposal.AsGoError(proposal.NewError(proposal.KindNotFound, "missing", nil))
		case "broken":
			return proposal.NewError(proposal.KindInternal, "boom", nil)
		}
		return nil
	}}
	cmd := NewWarmCommand(svc, nil)

	count, err := cmd.Run(context.Background(), []string{"ok", "missing", "broken", "later"})
	if err == nil {
		t.Fatalf("expected failure")
	}
	if count != 1 {
		t.Fatalf("expected 1 warmed before the failure, got %d", count)
	}
	if len(svc.renders) != 3 {
		t.Fatalf("expected render to stop at the failure, got %v", svc.renders)
	}
}

func TestWarmCommand_RequiresLoaderWithoutIDs(t *testing.T) {
	cmd := NewWarmCommand(&stubService{}, nil)
	_, err := cmd.Run(context.Background(), nil)
	var ge *goerrors.Error
	if !errors.As(err, &ge) || ge.TextCode != "LOADER_REQUIRED" {
		t.Fatalf("expected LOADER_REQUIRED, got %v", err)
	}
}

func TestWarmCommand_CLIAndCronOptions(t *testing.T) {
	cmd := NewWarmCommand(&stubService{}, nil)
	if got := cmd.CLIOptions().Path; len(got) != 1 || got[0] != "proposals-warm" {
		t.Fatalf("unexpected cli path %v", got)
	}
	if cmd.CronOptions().Expression != "0 * * * *" {
		t.Fatalf("unexpected cron expression %q", cmd.CronOptions().Expression)
	}
}

func TestRegisterHandlers_DispatchesQueriesAndCommands(t *testing.T) {
	store := proposal.NewMemoryStore()
	store.PutRaw("acme", []byte(`{"meta": {"title": "Acme"}, "sections": [{"id": "c", "type": "cover"}]}`))
	svc, err := proposal.NewService(proposal.ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	subs, err := RegisterHandlers(nil, Dependencies{Service: svc, Writer: store, Lister: store})
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	err = dispatcher.Dispatch(context.Background(), SaveProposal{Document: proposal.Document{ID: "beta", Meta: proposal.Meta{Title: "Beta"}}})
	if err != nil {
		t.Fatalf("dispatch save: %v", err)
	}

	ids, err := dispatcher.Query[query.ListProposals, []string](context.Background(), query.ListProposals{})
	if err != nil {
		t.Fatalf("query list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "acme" || ids[1] != "beta" {
		t.Fatalf("unexpected ids %v", ids)
	}

	var buf bytes.Buffer
	result, err := dispatcher.Query[query.RenderProposal, query.RenderResult](context.Background(), query.RenderProposal{ID: "beta", Output: &buf})
	if err != nil {
		t.Fatalf("query render: %v", err)
	}
	if result.Bytes == 0 || result.Bytes != int64(buf.Len()) {
		t.Fatalf("unexpected render result %+v", result)
	}
}

func TestRegisterHandlers_RequiresService(t *testing.T) {
	if _, err := RegisterHandlers(nil, Dependencies{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
