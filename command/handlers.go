package command

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
)

// SaveProposalHandler persists proposals. Only the seed CLI path wires it.
type SaveProposalHandler struct {
	Writer proposal.DocumentWriter
}

func NewSaveProposalHandler(writer proposal.DocumentWriter) *SaveProposalHandler {
	return &SaveProposalHandler{Writer: writer}
}

func (h *SaveProposalHandler) Execute(ctx context.Context, msg SaveProposal) error {
	if h == nil || h.Writer == nil {
		return errors.New("proposal writer is required", errors.CategoryInternal).
			WithTextCode("WRITER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return h.Writer.Put(ctx, msg.Document)
}

// WarmProposalsHandler pre-renders proposal PDFs.
type WarmProposalsHandler struct {
	cmd *WarmCommand
}

func NewWarmProposalsHandler(cmd *WarmCommand) *WarmProposalsHandler {
	return &WarmProposalsHandler{cmd: cmd}
}

func (h *WarmProposalsHandler) Execute(ctx context.Context, msg WarmProposals) error {
	if h == nil || h.cmd == nil {
		return errors.New("warm command is required", errors.CategoryInternal).
			WithTextCode("WARM_CMD_NIL")
	}
	_, err := h.cmd.warm(ctx, msg.IDs)
	return err
}
