package command

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
)

// SaveProposal stores or replaces a proposal. It exists for development
// seeding from the CLI; the viewer itself never writes, and proposals are
// authored in the editing application.
type SaveProposal struct {
	Document proposal.Document
}

func (SaveProposal) Type() string { return "proposal:save" }

func (msg SaveProposal) Validate() error {
	if strings.TrimSpace(msg.Document.ID) == "" {
		return errors.New("proposal ID is required", errors.CategoryValidation).
			WithTextCode("PROPOSAL_ID_REQUIRED")
	}
	if proposal.IsReservedID(msg.Document.ID) {
		return errors.New("proposal ID "+msg.Document.ID+" is reserved by the viewer", errors.CategoryValidation).
			WithTextCode("PROPOSAL_ID_RESERVED")
	}
	return nil
}

// WarmProposals renders the PDF of each proposal so the artifact cache is
// populated before the first viewer asks for it. Empty IDs warms every
// stored proposal.
type WarmProposals struct {
	IDs []string
}

func (WarmProposals) Type() string { return "proposal:warm" }

func (WarmProposals) Validate() error { return nil }
