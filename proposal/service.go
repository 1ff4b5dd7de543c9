package proposal

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
)

// Format identifies an output representation.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalizes a format name. Empty means HTML.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "xlsx", "excel", "workbook":
		return FormatXLSX, nil
	default:
		return "", NewError(KindValidation, fmt.Sprintf("unsupported format %q", raw), nil)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/html; charset=utf-8"
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".html"
	}
}

// Service fetches proposals and renders them.
type Service interface {
	Document(ctx context.Context, id string) (Document, error)
	Render(ctx context.Context, id string, format Format, w io.Writer) error
	RenderDocument(ctx context.Context, doc Document, format Format, w io.Writer) error
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	Store    DocumentStore
	Composer *Composer
	Workbook Renderer
	PDF      PDFConverter
	Cache    ArtifactCache
	Logger   Logger
	Now      func() time.Time
}

type service struct {
	store    DocumentStore
	composer *Composer
	workbook Renderer
	pdf      PDFConverter
	cache    ArtifactCache
	logger   Logger
	now      func() time.Time
}

// NewService creates a Service. A nil composer uses the embedded templates.
func NewService(cfg ServiceConfig) (Service, error) {
	composer := cfg.Composer
	if composer == nil {
		var err error
		composer, err = NewComposer()
		if err != nil {
			return nil, err
		}
	}
	workbook := cfg.Workbook
	if workbook == nil {
		workbook = WorkbookRenderer{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:    cfg.Store,
		composer: composer,
		workbook: workbook,
		pdf:      cfg.PDF,
		cache:    cfg.Cache,
		logger:   logger,
		now:      now,
	}, nil
}

// Document fetches a proposal. The store is consulted on every call.
func (s *service) Document(ctx context.Context, id string) (Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Document{}, AsGoError(NewError(KindValidation, "proposal id is required", nil))
	}
	if s.store == nil {
		return Document{}, AsGoError(NewError(KindInternal, "proposal store is not configured", nil))
	}
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return Document{}, AsGoError(err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

// Render fetches and renders a proposal.
func (s *service) Render(ctx context.Context, id string, format Format, w io.Writer) error {
	start := s.now()
	doc, err := s.Document(ctx, id)
	if err != nil {
		return err
	}
	if err := s.RenderDocument(ctx, doc, format, w); err != nil {
		s.logger.Errorf("proposal: render %s as %s failed: %v", id, format, err)
		return err
	}
	s.logger.Debugf("proposal: rendered %s as %s in %s", id, format, s.now().Sub(start))
	return nil
}

// RenderDocument renders an already loaded proposal.
func (s *service) RenderDocument(ctx context.Context, doc Document, format Format, w io.Writer) error {
	if w == nil {
		return AsGoError(NewError(KindValidation, "output writer is required", nil))
	}
	switch format {
	case FormatHTML, "":
		return asGoErr(s.composer.Render(ctx, doc, w))
	case FormatXLSX:
		return asGoErr(s.workbook.Render(ctx, doc, w))
	case FormatPDF:
		return asGoErr(s.renderPDF(ctx, doc, w))
	default:
		return AsGoError(NewError(KindValidation, fmt.Sprintf("unsupported format %q", format), nil))
	}
}

func (s *service) renderPDF(ctx context.Context, doc Document, w io.Writer) error {
	if s.pdf == nil {
		return NewError(KindNotImpl, "pdf rendering is not configured", nil)
	}
	html, err := s.composer.RenderBytes(ctx, doc)
	if err != nil {
		return err
	}

	key := artifactKey(doc.ID, FormatPDF, html)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Errorf("proposal: pdf cache read %s: %v", key, err)
		} else if ok {
			_, err := io.Copy(w, bytes.NewReader(data))
			return err
		}
	}

	data, err := s.pdf.Convert(ctx, html)
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Errorf("proposal: pdf cache write %s: %v", key, err)
		}
	}
	_, err = w.Write(data)
	return err
}

// artifactKey ties a cached artifact to the exact markup it was built from.
func artifactKey(id string, format Format, html []byte) string {
	sum := sha256.Sum256(html)
	if id == "" {
		id = "anonymous"
	}
	return fmt.Sprintf("proposal/%s/%s/%s", id, format, hex.EncodeToString(sum[:12]))
}

func asGoErr(err error) error {
	if err == nil {
		return nil
	}
	return AsGoError(err)
}
