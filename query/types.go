package query

import (
	"io"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
)

// GetProposal requests a decoded proposal.
type GetProposal struct {
	ID string
}

func (GetProposal) Type() string { return "proposal:get" }

func (msg GetProposal) Validate() error {
	if strings.TrimSpace(msg.ID) == "" {
		return errors.New("proposal ID is required", errors.CategoryValidation).
			WithTextCode("PROPOSAL_ID_REQUIRED")
	}
	return nil
}

// RenderProposal renders a proposal into Output.
type RenderProposal struct {
	ID     string
	Format proposal.Format
	Output io.Writer
}

func (RenderProposal) Type() string { return "proposal:render" }

func (msg RenderProposal) Validate() error {
	if strings.TrimSpace(msg.ID) == "" {
		return errors.New("proposal ID is required", errors.CategoryValidation).
			WithTextCode("PROPOSAL_ID_REQUIRED")
	}
	if msg.Output == nil {
		return errors.New("output writer is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_REQUIRED")
	}
	if msg.Format != "" {
		if _, err := proposal.ParseFormat(string(msg.Format)); err != nil {
			return errors.New("unsupported format "+string(msg.Format), errors.CategoryValidation).
				WithTextCode("FORMAT_UNSUPPORTED")
		}
	}
	return nil
}

// RenderResult summarizes a completed render.
type RenderResult struct {
	ID     string
	Format proposal.Format
	Bytes  int64
}

// ListProposals requests the stored proposal identifiers.
type ListProposals struct{}

func (ListProposals) Type() string { return "proposal:list" }

func (ListProposals) Validate() error { return nil }
