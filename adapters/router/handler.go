package proposalrouter

import (
	"github.com/goliatone/go-proposal/adapters/viewerapi"
	"github.com/goliatone/go-proposal/proposal"
	"github.com/goliatone/go-router"
)

// Config configures the go-router adapter.
type Config = viewerapi.Config

// Handler exposes the proposal viewer routes for go-router.
type Handler struct {
	controller *viewerapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) (*Handler, error) {
	controller, err := viewerapi.NewController(cfg)
	if err != nil {
		return nil, err
	}
	return &Handler{controller: controller}, nil
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()

	r.Get(base+"/", h.Handle)
	if base != "" {
		r.Get(base, h.Handle)
	}
	r.Get(base+"/"+proposal.HealthID, h.Handle)
	r.Get(base+"/:id", h.Handle)
	r.Get(base+"/:id/pdf", h.Handle)
	r.Get(base+"/:id/workbook", h.Handle)
}

// Handle executes the shared viewer workflow.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		viewerapi.WriteError(routerResponse{ctx: c}, proposal.NewError(proposal.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return ""
	}
	return h.controller.BasePath()
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
