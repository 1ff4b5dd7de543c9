package proposalhttp

import (
	"net/http"

	"github.com/goliatone/go-proposal/adapters/viewerapi"
	"github.com/goliatone/go-proposal/proposal"
)

// Config configures the HTTP adapter.
type Config = viewerapi.Config

// Handler exposes the proposal viewer over net/http.
type Handler struct {
	controller *viewerapi.Controller
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) (*Handler, error) {
	controller, err := viewerapi.NewController(cfg)
	if err != nil {
		return nil, err
	}
	return &Handler{controller: controller}, nil
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath(), h)
		if h.basePath() != "/" {
			r.Handle(h.basePath()+"/", h)
		}
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath(), h.ServeHTTP)
		if h.basePath() != "/" {
			r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
		}
	}
}

// ServeHTTP routes viewer endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	if h == nil || h.controller == nil {
		viewerapi.WriteError(httpResponse{w: w}, proposal.NewError(proposal.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(httpRequest{r: r}, httpResponse{w: w})
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return "/"
	}
	path := h.controller.BasePath()
	if path == "" {
		return "/"
	}
	return path
}
