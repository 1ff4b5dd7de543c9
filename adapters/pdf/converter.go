package proposalpdf

import (
	"context"
	"errors"

	"github.com/goliatone/go-proposal/proposal"
)

// DefaultMaxHTMLBytes bounds the markup handed to an engine.
const DefaultMaxHTMLBytes int64 = 8 * 1024 * 1024

// RenderRequest carries composed HTML and print options to an engine.
type RenderRequest struct {
	HTML    []byte
	Options Options
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}

// Converter implements proposal.PDFConverter on top of an Engine.
type Converter struct {
	Engine       Engine
	Options      Options
	MaxHTMLBytes int64
}

// NewConverter creates a Converter with DefaultOptions.
func NewConverter(engine Engine) *Converter {
	return &Converter{Engine: engine, Options: DefaultOptions()}
}

// Convert renders html into a PDF.
func (c *Converter) Convert(ctx context.Context, html []byte) ([]byte, error) {
	if c == nil || c.Engine == nil {
		return nil, proposal.NewError(proposal.KindNotImpl, "pdf engine is not configured", nil)
	}
	if len(html) == 0 {
		return nil, proposal.NewError(proposal.KindValidation, "pdf input is empty", nil)
	}
	limit := c.MaxHTMLBytes
	if limit <= 0 {
		limit = DefaultMaxHTMLBytes
	}
	if int64(len(html)) > limit {
		return nil, proposal.NewError(proposal.KindValidation, "pdf input exceeds max html bytes", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf, err := c.Engine.Render(ctx, RenderRequest{HTML: html, Options: c.Options})
	if err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, proposal.NewError(proposal.KindInternal, "pdf engine returned no output", nil)
	}
	return pdf, nil
}

// engineError keeps context failures distinguishable from engine failures.
func engineError(ctx context.Context, msg string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return proposal.NewError(proposal.KindTimeout, msg, context.DeadlineExceeded)
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return proposal.NewError(proposal.KindCanceled, msg, context.Canceled)
	default:
		return proposal.NewError(proposal.KindInternal, msg, err)
	}
}

var _ proposal.PDFConverter = (*Converter)(nil)
