package query

import (
	"context"
	"io"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
)

// Lister enumerates stored proposals.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// GetProposalHandler returns a single proposal.
type GetProposalHandler struct {
	Service proposal.Service
}

func NewGetProposalHandler(svc proposal.Service) *GetProposalHandler {
	return &GetProposalHandler{Service: svc}
}

func (h *GetProposalHandler) Query(ctx context.Context, msg GetProposal) (proposal.Document, error) {
	if h == nil || h.Service == nil {
		return proposal.Document{}, errors.New("proposal service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	return h.Service.Document(ctx, msg.ID)
}

// RenderProposalHandler renders a proposal in the requested format.
type RenderProposalHandler struct {
	Service proposal.Service
}

func NewRenderProposalHandler(svc proposal.Service) *RenderProposalHandler {
	return &RenderProposalHandler{Service: svc}
}

func (h *RenderProposalHandler) Query(ctx context.Context, msg RenderProposal) (RenderResult, error) {
	if h == nil || h.Service == nil {
		return RenderResult{}, errors.New("proposal service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	format, err := proposal.ParseFormat(string(msg.Format))
	if err != nil {
		return RenderResult{}, proposal.AsGoError(err)
	}
	out := &countingWriter{w: msg.Output}
	if err := h.Service.Render(ctx, msg.ID, format, out); err != nil {
		return RenderResult{}, err
	}
	return RenderResult{ID: msg.ID, Format: format, Bytes: out.n}, nil
}

// ListProposalsHandler returns stored proposal identifiers.
type ListProposalsHandler struct {
	Lister Lister
}

func NewListProposalsHandler(lister Lister) *ListProposalsHandler {
	return &ListProposalsHandler{Lister: lister}
}

func (h *ListProposalsHandler) Query(ctx context.Context, _ ListProposals) ([]string, error) {
	if h == nil || h.Lister == nil {
		return nil, errors.New("proposal lister is required", errors.CategoryInternal).
			WithTextCode("LISTER_REQUIRED")
	}
	return h.Lister.List(ctx)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
