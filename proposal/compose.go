package proposal

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.gohtml templates/styles.css templates/calculator.js
var templatesFS embed.FS

// Page is one rendered section.
type Page struct {
	SectionID string
	Type      SectionType
	HTML      template.HTML
}

// ComposerOption customizes a Composer.
type ComposerOption func(*Composer)

// WithAssetBaseURL overrides the host used for root-relative images.
func WithAssetBaseURL(base string) ComposerOption {
	return func(c *Composer) {
		c.assets = AssetResolver{BaseURL: base}
	}
}

// WithComposerLogger sets the composer logger.
func WithComposerLogger(logger Logger) ComposerOption {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Composer turns documents into pages. Templates are parsed once and are
// safe for concurrent use.
type Composer struct {
	templates  *template.Template
	assets     AssetResolver
	logger     Logger
	stylesheet template.CSS
	script     template.JS
}

// NewComposer parses the embedded section templates.
func NewComposer(opts ...ComposerOption) (*Composer, error) {
	tmpl, err := template.New("proposal").Funcs(template.FuncMap{
		"icon":   icon,
		"number": FormatNumber,
		"count":  FormatCount,
		"plain":  FormatPlain,
		"pct":    func(v float64) template.CSS { return template.CSS(FormatPlain(v) + "%") },
	}).ParseFS(templatesFS, "templates/*.gohtml")
	if err != nil {
		return nil, NewError(KindInternal, "parse proposal templates", err)
	}
	styles, err := templatesFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, NewError(KindInternal, "read proposal stylesheet", err)
	}
	script, err := templatesFS.ReadFile("templates/calculator.js")
	if err != nil {
		return nil, NewError(KindInternal, "read calculator script", err)
	}

	c := &Composer{
		templates:  tmpl,
		logger:     NopLogger{},
		stylesheet: template.CSS(styles),
		script:     template.JS(script),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Compose renders each recognised section in order. Unrecognised section
// types produce no page.
func (c *Composer) Compose(doc Document) ([]Page, error) {
	effective := ResolveTheme(doc.Theme)
	theme := newViewTheme(effective)

	pages := make([]Page, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		name, data, ok := c.dispatch(section, doc.Meta, effective, theme)
		if !ok {
			if section != nil {
				c.logger.Debugf("proposal: skipping section %q of type %q", section.SectionID(), section.SectionType())
			}
			continue
		}
		var buf bytes.Buffer
		if err := c.templates.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, NewError(KindInternal, "render section "+section.SectionID(), err)
		}
		pages = append(pages, Page{
			SectionID: section.SectionID(),
			Type:      section.SectionType(),
			HTML:      template.HTML(buf.String()),
		})
	}
	return pages, nil
}

func (c *Composer) dispatch(section Section, meta Meta, effective EffectiveTheme, theme viewTheme) (string, any, bool) {
	switch s := section.(type) {
	case CoverSection:
		return "cover", c.coverView(s, meta, theme), true
	case SynopsisSection:
		return "synopsis", c.synopsisView(s, theme), true
	case StorySection:
		return "story", c.storyView(s, theme), true
	case ProblemSection:
		return "problem", c.problemView(s, theme), true
	case ContentSection:
		return "content", c.contentView(s, theme), true
	case ImpactSection:
		return "impact", c.impactView(s, effective, theme), true
	case InvestmentSection:
		return "investment", c.investmentView(s, theme), true
	case TeamSection:
		return "team", c.teamView(s, theme), true
	case TimelineSection:
		return "timeline", c.timelineView(s, theme), true
	case BackCoverSection:
		return "back_cover", c.backCoverView(s, theme), true
	default:
		return "", nil, false
	}
}

type documentView struct {
	Title       string
	Description string
	FontURL     string
	Stylesheet  template.CSS
	Script      template.JS
	Pages       []Page
	Footer      string
	HasScript   bool
}

// Render writes a complete print-ready HTML document.
func (c *Composer) Render(ctx context.Context, doc Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pages, err := c.Compose(doc)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(doc.Meta.Title)
	if title == "" {
		title = DefaultPageTitle
	}
	view := documentView{
		Title:       title,
		Description: InstitutionName + " Partnership Proposal",
		FontURL:     FontImportURL,
		Stylesheet:  c.stylesheet,
		Script:      c.script,
		Pages:       pages,
		Footer:      FooterText,
		HasScript:   hasCalculator(doc),
	}
	if err := c.templates.ExecuteTemplate(w, "document", view); err != nil {
		return NewError(KindInternal, "render proposal document", err)
	}
	return nil
}

// RenderBytes renders the document into memory.
func (c *Composer) RenderBytes(ctx context.Context, doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hasCalculator(doc Document) bool {
	for _, section := range doc.Sections {
		if impact, ok := section.(ImpactSection); ok && !impact.HasChart() {
			return true
		}
	}
	return false
}

var _ Renderer = (*Composer)(nil)
