package viewerapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-proposal/proposal"
)

// Config configures the shared viewer controller.
type Config struct {
	Service  proposal.Service
	Pages    *Pages
	BasePath string
	Logger   proposal.Logger
	Now      func() time.Time
}

// Controller exposes the viewer routes for multiple transports.
type Controller struct {
	service  proposal.Service
	pages    *Pages
	basePath string
	logger   proposal.Logger
	now      func() time.Time
}

// NewController creates a shared viewer controller. Pages are compiled from
// the embedded layout when cfg.Pages is nil.
func NewController(cfg Config) (*Controller, error) {
	pages := cfg.Pages
	if pages == nil {
		var err error
		pages, err = NewPages()
		if err != nil {
			return nil, proposal.NewError(proposal.KindInternal, "compile viewer pages", err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = proposal.NopLogger{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		service:  cfg.Service,
		pages:    pages,
		basePath: strings.TrimRight(cfg.BasePath, "/"),
		logger:   logger,
		now:      now,
	}, nil
}

// BasePath returns the configured mount point. Empty means the root.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes viewer endpoints using the shared controller.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, proposal.NewError(proposal.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, proposal.NewError(proposal.KindInternal, "request is nil", nil))
		return
	}
	if req.Method() != http.MethodGet {
		res.SetHeader("Allow", http.MethodGet)
		res.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	reqPath := req.Path()
	if c.basePath != "" {
		if reqPath != c.basePath && !strings.HasPrefix(reqPath, c.basePath+"/") {
			c.writeNotFound(res)
			return
		}
		reqPath = strings.TrimPrefix(reqPath, c.basePath)
	}
	trimmed := strings.Trim(reqPath, "/")
	parts := []string{}
	if trimmed != "" {
		parts = strings.Split(trimmed, "/")
	}

	start := c.now()
	switch {
	case len(parts) == 0:
		c.handleLanding(res)
	case len(parts) == 1 && parts[0] == proposal.HealthID:
		_ = res.WriteJSON(http.StatusOK, HealthResponse{Status: "ok"})
	case len(parts) == 1:
		c.handleProposal(req, res, parts[0])
	case len(parts) == 2 && parts[1] == "pdf":
		c.handleArtifact(req, res, parts[0], proposal.FormatPDF)
	case len(parts) == 2 && parts[1] == "workbook":
		c.handleArtifact(req, res, parts[0], proposal.FormatXLSX)
	default:
		c.writeNotFound(res)
		return
	}
	c.logger.Debugf("viewer: GET %s served in %s", req.Path(), c.now().Sub(start))
}

func (c *Controller) handleLanding(res Response) {
	var buf bytes.Buffer
	if err := c.pages.Landing(&buf); err != nil {
		WriteError(res, proposal.NewError(proposal.KindInternal, "render landing page", err))
		return
	}
	writeHTML(res, http.StatusOK, buf.Bytes())
}

func (c *Controller) handleProposal(req Request, res Response, id string) {
	if c.service == nil {
		c.writeErrorPage(res, proposal.NewError(proposal.KindNotImpl, "proposal service not configured", nil))
		return
	}
	var buf bytes.Buffer
	if err := c.service.Render(req.Context(), id, proposal.FormatHTML, &buf); err != nil {
		c.writeErrorPage(res, err)
		return
	}
	res.SetHeader("Cache-Control", "no-store")
	writeHTML(res, http.StatusOK, buf.Bytes())
}

func (c *Controller) handleArtifact(req Request, res Response, id string, format proposal.Format) {
	if c.service == nil {
		WriteError(res, proposal.NewError(proposal.KindNotImpl, "proposal service not configured", nil))
		return
	}
	var buf bytes.Buffer
	if err := c.service.Render(req.Context(), id, format, &buf); err != nil {
		if proposal.IsNotFound(err) {
			c.writeNotFound(res)
			return
		}
		c.logger.Errorf("viewer: render %s as %s: %v", id, format, err)
		WriteError(res, err)
		return
	}

	disposition := "attachment"
	if format == proposal.FormatPDF && !truthy(req.Query("download")) {
		disposition = "inline"
	}
	res.SetHeader("Content-Type", format.ContentType())
	res.SetHeader("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, SafeFilename(id)+format.Extension()))
	res.SetHeader("Content-Length", strconv.Itoa(buf.Len()))
	res.SetHeader("Cache-Control", "no-store")
	res.WriteHeader(http.StatusOK)
	_, _ = res.Write(buf.Bytes())
}

func (c *Controller) writeNotFound(res Response) {
	var buf bytes.Buffer
	if err := c.pages.NotFound(&buf); err != nil {
		WriteError(res, proposal.NewError(proposal.KindNotFound, NotFoundTitle, nil))
		return
	}
	writeHTML(res, http.StatusNotFound, buf.Bytes())
}

func (c *Controller) writeErrorPage(res Response, err error) {
	if proposal.IsNotFound(err) {
		c.writeNotFound(res)
		return
	}
	ge := proposal.AsGoError(err)
	status := statusForError(ge)
	if status >= http.StatusInternalServerError {
		c.logger.Errorf("viewer: %v", err)
	}

	message := ge.Message
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		message = ""
	}
	var buf bytes.Buffer
	if renderErr := c.pages.Error(&buf, status, message, ge.TextCode); renderErr != nil {
		WriteError(res, err)
		return
	}
	writeHTML(res, status, buf.Bytes())
}

func writeHTML(res Response, status int, body []byte) {
	res.SetHeader("Content-Type", "text/html; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(status)
	_, _ = res.Write(body)
}

// WriteError writes err as a JSON error body with the mapped status.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := proposal.AsGoError(err)
	_ = res.WriteJSON(statusForError(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// SafeFilename reduces an identifier to characters safe for a download name.
func SafeFilename(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), ".")
	if name == "" {
		return "proposal"
	}
	return name
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
