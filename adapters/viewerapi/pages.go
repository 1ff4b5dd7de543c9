package viewerapi

import (
	_ "embed"
	"io"
	"net/http"

	"github.com/flosch/pongo2/v6"
)

//go:embed pages/layout.html
var layoutSource string

// Page copy for the fixed, non-proposal screens.
const (
	LandingTitle   = "GCU Proposals"
	LandingMessage = "Please use the proposal link provided to you."
	NotFoundTitle  = "Proposal Not Found"
	NotFoundText   = "This proposal link may be invalid or expired."
	ErrorTitle     = "Something went wrong"
)

// Pages renders the landing, not-found and error screens.
type Pages struct {
	layout *pongo2.Template
}

// NewPages compiles the embedded page layout.
func NewPages() (*Pages, error) {
	tpl, err := pongo2.FromString(layoutSource)
	if err != nil {
		return nil, err
	}
	return &Pages{layout: tpl}, nil
}

// Landing writes the root page.
func (p *Pages) Landing(w io.Writer) error {
	return p.render(w, pongo2.Context{
		"title":        LandingTitle,
		"heading":      LandingTitle,
		"heading_size": "30px",
		"message":      LandingMessage,
	})
}

// NotFound writes the unknown-proposal page.
func (p *Pages) NotFound(w io.Writer) error {
	return p.render(w, pongo2.Context{
		"title":        NotFoundTitle,
		"heading":      NotFoundTitle,
		"heading_size": "36px",
		"message":      NotFoundText,
	})
}

// Error writes a generic failure page for status.
func (p *Pages) Error(w io.Writer, status int, message, code string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return p.render(w, pongo2.Context{
		"title":        ErrorTitle,
		"heading":      ErrorTitle,
		"heading_size": "30px",
		"message":      message,
		"code":         code,
	})
}

func (p *Pages) render(w io.Writer, ctx pongo2.Context) error {
	return p.layout.ExecuteWriter(ctx, w)
}
