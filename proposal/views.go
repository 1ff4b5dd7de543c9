package proposal

import (
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"
)

// viewTheme carries theme values already cleared for the CSS context.
type viewTheme struct {
	PrimaryColor   string
	SecondaryColor string
	Primary        template.CSS
	Secondary      template.CSS
	Font           template.CSS
	Frame          template.CSS
	Opacity        template.CSS
	DotPattern     template.CSS
}

func newViewTheme(t EffectiveTheme) viewTheme {
	primary := cssColor(t.PrimaryColor, DefaultPrimaryColor)
	secondary := cssColor(t.SecondaryColor, DefaultSecondaryColor)
	text := cssColor(t.TextColor, DefaultTextColor)
	background := cssColor(t.BackgroundColor, DefaultBackgroundColor)
	font := cssFont(t.FontFamily)
	return viewTheme{
		PrimaryColor:   primary,
		SecondaryColor: secondary,
		Primary:        template.CSS(primary),
		Secondary:      template.CSS(secondary),
		Font:           template.CSS(font),
		Frame:          template.CSS(fmt.Sprintf("font-family: %s; background-color: %s; color: %s", font, background, text)),
		Opacity:        template.CSS(FormatPlain(clampUnit(t.OverlayOpacity))),
		DotPattern:     template.CSS(fmt.Sprintf("background-image: radial-gradient(%s 2px, transparent 2px); background-size: 30px 30px", primary)),
	}
}

// sanitized returns t with every color and the font passed through the
// CSS filters.
func (t EffectiveTheme) sanitized() EffectiveTheme {
	t.PrimaryColor = cssColor(t.PrimaryColor, DefaultPrimaryColor)
	t.SecondaryColor = cssColor(t.SecondaryColor, DefaultSecondaryColor)
	t.TextColor = cssColor(t.TextColor, DefaultTextColor)
	t.BackgroundColor = cssColor(t.BackgroundColor, DefaultBackgroundColor)
	t.FontFamily = cssFont(t.FontFamily)
	return t
}

func (t viewTheme) accent(index int) template.CSS {
	if index%2 == 0 {
		return t.Primary
	}
	return t.Secondary
}

// cssColor admits hex, named and functional color notations and nothing
// that could close the declaration.
func cssColor(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 64 {
		return fallback
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#%.,() -/", r):
		default:
			return fallback
		}
	}
	if strings.Contains(strings.ToLower(value), "url") {
		return fallback
	}
	return value
}

// cssFont admits a font-family list.
func cssFont(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 128 {
		return DefaultFontFamily
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(` ,-_'"`, r):
		default:
			return DefaultFontFamily
		}
	}
	return value
}

func clampUnit(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

type coverView struct {
	Theme       viewTheme
	Title       string
	Subtitle    string
	Image       string
	Logo        string
	PreparedFor string
	PreparedBy  string
	Date        string
	ClientLogo  string
}

type pillarView struct {
	Title       string
	Description string
	Glyph       template.HTML
	Label       string
}

type synopsisView struct {
	Theme    viewTheme
	Title    string
	Subtitle string
	Content  string
	Pillars  []pillarView
	Image    string
}

type storyView struct {
	Theme   viewTheme
	Title   string
	Heading string
	Content string
	Image   string
	Caption string
}

type pointView struct {
	Number      int
	Title       string
	Description string
}

type problemView struct {
	Theme       viewTheme
	Title       string
	Subtitle    string
	Description string
	Points      []pointView
	Image       string
}

type deliverableView struct {
	Number      int
	Title       string
	Description string
	Items       []string
}

type contentView struct {
	Theme    viewTheme
	Title    string
	Subtitle string
	Elements []deliverableView
	Image    string
}

type statView struct {
	Label       string
	Value       string
	Suffix      string
	Description string
	Border      template.CSS
	ValueClass  string
	SuffixClass string
}

type impactView struct {
	Theme      viewTheme
	Title      string
	Subtitle   string
	Stats      []statView
	HasChart   bool
	Panel      string
	Chart      Chart
	Calculator CalculatorView
}

type pricingView struct {
	Item    string
	Cost    string
	IsTotal bool
}

type investmentView struct {
	Theme    viewTheme
	Title    string
	Subtitle string
	Rows     []pricingView
}

type memberView struct {
	Name  string
	Role  string
	Bio   string
	Image string
}

type teamView struct {
	Theme    viewTheme
	Title    string
	Subtitle string
	Members  []memberView
}

type stepView struct {
	Date        string
	Title       string
	Description string
	Reverse     bool
}

type timelineView struct {
	Theme    viewTheme
	Title    string
	Subtitle string
	Steps    []stepView
}

type backCoverView struct {
	Theme     viewTheme
	Title     string
	Content   string
	Copyright string
	Image     string
	Logo      string
	Name      string
	Address   string
	Website   string
}

// Stat value size tiers.
const (
	statValueCompact = "text-xl lg:text-2xl"
	statValueLong    = "text-3xl"
	statValueDefault = "text-4xl"
	statSuffixSmall  = "text-[10px]"
	statSuffixNormal = "text-sm"

	compactStatCount = 4
	longStatValue    = 4
)

// StatTier returns the value and suffix classes for a stat card given how
// many stats share the row and the value text.
func StatTier(count int, value string) (valueClass, suffixClass string) {
	if count >= compactStatCount {
		return statValueCompact, statSuffixSmall
	}
	if utf8.RuneCountInString(value) > longStatValue {
		return statValueLong, statSuffixNormal
	}
	return statValueDefault, statSuffixNormal
}

func (c *Composer) coverView(s CoverSection, meta Meta, theme viewTheme) coverView {
	return coverView{
		Theme:       theme,
		Title:       s.Title,
		Subtitle:    s.Subtitle,
		Image:       c.assets.Resolve(s.Image),
		Logo:        c.assets.Resolve(InstitutionLogo),
		PreparedFor: meta.PreparedFor,
		PreparedBy:  meta.PreparedBy,
		Date:        meta.Date,
		ClientLogo:  c.assets.Resolve(meta.ClientLogo),
	}
}

func (c *Composer) synopsisView(s SynopsisSection, theme viewTheme) synopsisView {
	pillars := make([]pillarView, 0, len(s.SummaryPillars))
	for _, p := range s.SummaryPillars {
		view := pillarView{Title: p.Title, Description: p.Description}
		if name, ok := pillarIcons[p.Icon]; ok {
			view.Glyph = icon(name, 28)
		} else {
			view.Label = p.Icon
		}
		pillars = append(pillars, view)
	}
	return synopsisView{
		Theme:    theme,
		Title:    s.Title,
		Subtitle: "Executive Summary",
		Content:  s.Content,
		Pillars:  pillars,
		Image:    c.assets.Resolve(s.Image),
	}
}

func (c *Composer) storyView(s StorySection, theme viewTheme) storyView {
	return storyView{
		Theme:   theme,
		Title:   s.Title,
		Heading: orDefault(s.Subtitle, "Building a Legacy Together"),
		Content: s.Content,
		Image:   c.assets.Resolve(s.Image),
		Caption: orDefault(s.Quote, "Our Shared Vision"),
	}
}

func (c *Composer) problemView(s ProblemSection, theme viewTheme) problemView {
	points := make([]pointView, 0, len(s.Points))
	for i, p := range s.Points {
		points = append(points, pointView{Number: i + 1, Title: p.Title, Description: p.Description})
	}
	return problemView{
		Theme:       theme,
		Title:       s.Title,
		Subtitle:    "Understanding the Landscape",
		Description: s.Description,
		Points:      points,
		Image:       c.assets.Resolve(s.Image),
	}
}

func (c *Composer) contentView(s ContentSection, theme viewTheme) contentView {
	elements := make([]deliverableView, 0, len(s.Elements))
	for i, el := range s.Elements {
		items := el.Items
		if items == nil {
			items = []string{}
		}
		elements = append(elements, deliverableView{Number: i + 1, Title: el.Title, Description: el.Description, Items: items})
	}
	return contentView{
		Theme:    theme,
		Title:    s.Title,
		Subtitle: "Strategic Roadmap",
		Elements: elements,
		Image:    c.assets.Resolve(s.Image),
	}
}

func (c *Composer) impactView(s ImpactSection, effective EffectiveTheme, theme viewTheme) impactView {
	stats := make([]statView, 0, len(s.Stats))
	for i, stat := range s.Stats {
		valueClass, suffixClass := StatTier(len(s.Stats), stat.Value)
		stats = append(stats, statView{
			Label:       stat.Label,
			Value:       stat.Value,
			Suffix:      stat.Suffix,
			Description: stat.Description,
			Border:      theme.accent(i),
			ValueClass:  valueClass,
			SuffixClass: suffixClass,
		})
	}
	view := impactView{
		Theme:    theme,
		Title:    s.Title,
		Subtitle: "Measurable Outcomes",
		Stats:    stats,
		HasChart: s.HasChart(),
	}
	if view.HasChart {
		view.Panel = "Data Analysis"
		view.Chart = RenderChart(s.ID, *s.Graph, effective)
	} else {
		view.Panel = "Impact Calculator"
		view.Calculator = NewCalculator(s.Calculator).View(theme.PrimaryColor)
	}
	return view
}

func (c *Composer) investmentView(s InvestmentSection, theme viewTheme) investmentView {
	rows := make([]pricingView, 0, len(s.Elements))
	for _, el := range s.Elements {
		cost := el.Cost
		if cost == "" && !el.IsTotal {
			cost = MissingCost
		}
		rows = append(rows, pricingView{Item: el.Item, Cost: cost, IsTotal: el.IsTotal})
	}
	return investmentView{
		Theme:    theme,
		Title:    s.Title,
		Subtitle: "Partnership Commitment",
		Rows:     rows,
	}
}

func (c *Composer) teamView(s TeamSection, theme viewTheme) teamView {
	members := make([]memberView, 0, len(s.Members))
	for _, m := range s.Members {
		image := m.Image
		if image == "" {
			image = AvatarPlaceholder
		}
		members = append(members, memberView{Name: m.Name, Role: m.Role, Bio: m.Bio, Image: c.assets.Resolve(image)})
	}
	return teamView{
		Theme:    theme,
		Title:    s.Title,
		Subtitle: orDefault(s.Subtitle, "Meet the Experts"),
		Members:  members,
	}
}

func (c *Composer) timelineView(s TimelineSection, theme viewTheme) timelineView {
	steps := make([]stepView, 0, len(s.Steps))
	for i, step := range s.Steps {
		steps = append(steps, stepView{Date: step.Date, Title: step.Title, Description: step.Description, Reverse: i%2 == 0})
	}
	return timelineView{
		Theme:    theme,
		Title:    s.Title,
		Subtitle: orDefault(s.Subtitle, "Implementation Roadmap"),
		Steps:    steps,
	}
}

func (c *Composer) backCoverView(s BackCoverSection, theme viewTheme) backCoverView {
	return backCoverView{
		Theme:     theme,
		Title:     s.Title,
		Content:   s.Content,
		Copyright: s.CopyrightText,
		Image:     c.assets.Resolve(s.Image),
		Logo:      c.assets.Resolve(InstitutionLogo),
		Name:      InstitutionName,
		Address:   InstitutionAddress,
		Website:   InstitutionWebsite,
	}
}
