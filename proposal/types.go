package proposal

import (
	"context"
	"io"
	"strings"
	"time"
)

// SectionType is the discriminant of a proposal section.
type SectionType string

const (
	SectionCover      SectionType = "cover"
	SectionSynopsis   SectionType = "synopsis"
	SectionStory      SectionType = "story"
	SectionProblem    SectionType = "problem"
	SectionContent    SectionType = "content"
	SectionImpact     SectionType = "impact"
	SectionInvestment SectionType = "investment"
	SectionTeam       SectionType = "team"
	SectionTimeline   SectionType = "timeline"
	SectionBackCover  SectionType = "back_cover"
)

// Document is a full proposal: metadata, theme and ordered sections.
type Document struct {
	ID        string    `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Meta      Meta      `json:"meta"`
	Theme     Theme     `json:"theme"`
	Sections  []Section `json:"sections"`
}

// Meta carries the cover metadata.
type Meta struct {
	Title       string `json:"title"`
	PreparedFor string `json:"preparedFor"`
	PreparedBy  string `json:"preparedBy"`
	Date        string `json:"date"`
	ClientLogo  string `json:"clientLogo,omitempty"`
}

// Theme is the stored, possibly partial, theme. Empty strings and a nil
// opacity fall back to defaults during resolution.
type Theme struct {
	PrimaryColor    string   `json:"primaryColor"`
	SecondaryColor  string   `json:"secondaryColor"`
	TextColor       string   `json:"textColor"`
	BackgroundColor string   `json:"backgroundColor"`
	FontFamily      string   `json:"fontFamily"`
	OverlayOpacity  *float64 `json:"overlayOpacity,omitempty"`
}

// Section is the closed set of proposal section variants.
type Section interface {
	SectionID() string
	SectionType() SectionType
	isSection()
}

// SectionBase holds the fields shared by every section.
type SectionBase struct {
	ID   string      `json:"id"`
	Type SectionType `json:"type"`
}

func (b SectionBase) SectionID() string { return b.ID }

func (SectionBase) isSection() {}

type CoverSection struct {
	SectionBase
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
}

func (CoverSection) SectionType() SectionType { return SectionCover }

// SummaryPillar is one of the synopsis highlights.
type SummaryPillar struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type SynopsisSection struct {
	SectionBase
	Title          string          `json:"title"`
	Content        string          `json:"content"`
	SummaryPillars []SummaryPillar `json:"summaryPillars"`
	Image          string          `json:"image,omitempty"`
}

func (SynopsisSection) SectionType() SectionType { return SectionSynopsis }

type StorySection struct {
	SectionBase
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Content  string `json:"content"`
	Image    string `json:"image,omitempty"`
	Quote    string `json:"quote,omitempty"`
}

func (StorySection) SectionType() SectionType { return SectionStory }

// ProblemPoint is a numbered challenge on the problem page.
type ProblemPoint struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ProblemSection struct {
	SectionBase
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Points      []ProblemPoint `json:"points"`
	Image       string         `json:"image,omitempty"`
}

func (ProblemSection) SectionType() SectionType { return SectionProblem }

// Deliverable is a card on the content page.
type Deliverable struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

type ContentSection struct {
	SectionBase
	Title    string        `json:"title"`
	Elements []Deliverable `json:"elements"`
	Image    string        `json:"image,omitempty"`
}

func (ContentSection) SectionType() SectionType { return SectionContent }

// StatItem is a headline figure. Value is display text, not a number.
type StatItem struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Suffix      string `json:"suffix,omitempty"`
	Description string `json:"description,omitempty"`
}

// GraphType selects the chart rendering.
type GraphType string

const (
	GraphBar  GraphType = "bar"
	GraphPie  GraphType = "pie"
	GraphLine GraphType = "line"
)

// GraphPoint is one datum. Value is nil when the stored point omits it.
// Extra keeps any additional keys of the stored point.
type GraphPoint struct {
	Name  string         `json:"name"`
	Value *float64       `json:"value,omitempty"`
	Extra map[string]any `json:"-"`
}

// GraphData describes the impact chart.
type GraphData struct {
	Type       GraphType    `json:"type"`
	Data       []GraphPoint `json:"data"`
	YAxisLabel string       `json:"yAxisLabel,omitempty"`
	XAxisLabel string       `json:"xAxisLabel,omitempty"`
}

// CalculatorConfig configures the impact calculator. Nil bounds and
// non-positive costs use defaults.
type CalculatorConfig struct {
	CostPerScholarship float64  `json:"costPerScholarship"`
	CostPerServiceHour float64  `json:"costPerServiceHour"`
	MinDonation        *float64 `json:"minDonation,omitempty"`
	MaxDonation        *float64 `json:"maxDonation,omitempty"`
	Step               *float64 `json:"step,omitempty"`
}

type ImpactSection struct {
	SectionBase
	Title       string            `json:"title"`
	DisplayType string            `json:"displayType"`
	Stats       []StatItem        `json:"stats"`
	Graph       *GraphData        `json:"graph,omitempty"`
	Calculator  *CalculatorConfig `json:"calculator,omitempty"`
}

func (ImpactSection) SectionType() SectionType { return SectionImpact }

// HasChart reports whether the impact body renders a chart instead of the
// calculator.
func (s ImpactSection) HasChart() bool {
	return s.Graph != nil && len(s.Graph.Data) > 0
}

// PricingItem is an investment row. Totals are authored, never computed.
type PricingItem struct {
	Item    string `json:"item"`
	Cost    string `json:"cost"`
	IsTotal bool   `json:"isTotal,omitempty"`
}

type InvestmentSection struct {
	SectionBase
	Title    string        `json:"title"`
	Elements []PricingItem `json:"elements"`
}

func (InvestmentSection) SectionType() SectionType { return SectionInvestment }

// TeamMember is a person on the team page.
type TeamMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Bio   string `json:"bio"`
	Image string `json:"image"`
}

type TeamSection struct {
	SectionBase
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle,omitempty"`
	Members  []TeamMember `json:"members"`
}

func (TeamSection) SectionType() SectionType { return SectionTeam }

// TimelineStep is a milestone.
type TimelineStep struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TimelineSection struct {
	SectionBase
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle,omitempty"`
	Steps    []TimelineStep `json:"steps"`
}

func (TimelineSection) SectionType() SectionType { return SectionTimeline }

type BackCoverSection struct {
	SectionBase
	Title         string `json:"title"`
	Content       string `json:"content"`
	CopyrightText string `json:"copyrightText,omitempty"`
	Image         string `json:"image,omitempty"`
}

func (BackCoverSection) SectionType() SectionType { return SectionBackCover }

// UnknownSection keeps a section whose discriminant is not recognised.
// It produces no page.
type UnknownSection struct {
	SectionBase
	Raw []byte `json:"-"`
}

func (s UnknownSection) SectionType() SectionType { return s.Type }

// HealthID is the path segment the viewer answers with its health check.
// A proposal stored under it could never be viewed.
const HealthID = "healthz"

// IsReservedID reports whether id collides with a viewer route.
func IsReservedID(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), HealthID)
}

// DocumentStore fetches proposals by identifier.
type DocumentStore interface {
	Get(ctx context.Context, id string) (Document, error)
}

// DocumentWriter persists proposals.
type DocumentWriter interface {
	Put(ctx context.Context, doc Document) error
}

// PDFConverter turns composed HTML into PDF bytes.
type PDFConverter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

// ArtifactCache stores rendered artifacts by key.
type ArtifactCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Renderer writes a rendered document.
type Renderer interface {
	Render(ctx context.Context, doc Document, w io.Writer) error
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards log output.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
