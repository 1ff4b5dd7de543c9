package proposal

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strconv"
	"strings"
)

// ChartKind is the rendered visualisation.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
	ChartArea ChartKind = "area"
)

// ChartKindFor maps a stored graph type to its visualisation. Anything that
// is not bar or pie, line included, renders as a smoothed area.
func ChartKindFor(t GraphType) ChartKind {
	switch t {
	case GraphBar:
		return ChartBar
	case GraphPie:
		return ChartPie
	default:
		return ChartArea
	}
}

// Chart is an inline SVG visualisation ready for a template.
type Chart struct {
	Kind ChartKind
	SVG  template.HTML
}

// ChartConfig holds SVG geometry.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	FontSize     int
}

const (
	chartGridColor = "#e5e7eb"
	chartTickColor = "#6b7280"
	chartBarSize   = 50.0
	chartBarRadius = 6.0
	pieInnerRadius = 80.0
	pieOuterRadius = 120.0
	piePadding     = 5.0
	areaStroke     = 3
	yTickCount     = 5
)

// DefaultChartConfig sizes charts for the impact panel.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        624,
		Height:       320,
		MarginTop:    10,
		MarginRight:  30,
		MarginBottom: 40,
		MarginLeft:   56,
		FontSize:     12,
	}
}

func (c ChartConfig) plotArea() (x, y, w, h float64) {
	return float64(c.MarginLeft), float64(c.MarginTop),
		float64(c.Width - c.MarginLeft - c.MarginRight),
		float64(c.Height - c.MarginTop - c.MarginBottom)
}

// RenderChart draws graph with the theme palette. id scopes the SVG
// definitions so several charts can share a page. Theme colors pass the
// same filter as the page styles, so a rejected color falls back to its
// default in both.
func RenderChart(id string, graph GraphData, theme EffectiveTheme) Chart {
	theme = theme.sanitized()
	cfg := DefaultChartConfig()
	kind := ChartKindFor(graph.Type)
	if len(graph.Data) == 0 {
		return Chart{Kind: kind, SVG: template.HTML(svgHeader(cfg, string(kind)) + `</svg>`)}
	}
	var svg string
	switch kind {
	case ChartBar:
		svg = barChart(cfg, graph, theme)
	case ChartPie:
		svg = pieChart(cfg, graph, theme)
	default:
		svg = areaChart(cfg, svgID(id), graph, theme)
	}
	return Chart{Kind: kind, SVG: template.HTML(svg)}
}

func pointValue(p GraphPoint) float64 {
	if p.Value == nil || math.IsNaN(*p.Value) || math.IsInf(*p.Value, 0) {
		return 0
	}
	return *p.Value
}

func barChart(cfg ChartConfig, graph GraphData, theme EffectiveTheme) string {
	var sb strings.Builder
	sb.WriteString(svgHeader(cfg, "bar"))

	px, py, pw, ph := cfg.plotArea()
	lo, hi, step := valueDomain(graph.Data)
	toY := func(v float64) float64 { return py + ph - (v-lo)/(hi-lo)*ph }

	writeValueAxis(&sb, cfg, lo, hi, step, toY)

	n := len(graph.Data)
	band := pw / float64(n)
	width := math.Min(chartBarSize, band*0.8)
	base := toY(math.Max(lo, math.Min(0, hi)))
	for i, point := range graph.Data {
		cx := px + band*float64(i) + band/2
		y := toY(pointValue(point))
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="%s"/>`, barPath(cx-width/2, y, width, base), html.EscapeString(theme.PrimaryColor)))
		writeCategoryTick(&sb, cfg, cx, py+ph, point.Name)
	}

	writeAxisCaptions(&sb, cfg, graph)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// barPath rounds the two corners away from the baseline.
func barPath(x, top, width, base float64) string {
	height := base - top
	if height == 0 {
		return fmt.Sprintf("M%s,%sH%s", f2(x), f2(base), f2(x+width))
	}
	if height < 0 {
		return fmt.Sprintf("M%s,%sH%sV%sH%sZ", f2(x), f2(base), f2(x+width), f2(top), f2(x))
	}
	r := math.Min(chartBarRadius, math.Min(width/2, height))
	return fmt.Sprintf("M%s,%sV%sQ%s,%s %s,%sH%sQ%s,%s %s,%sV%sZ",
		f2(x), f2(base),
		f2(top+r),
		f2(x), f2(top), f2(x+r), f2(top),
		f2(x+width-r),
		f2(x+width), f2(top), f2(x+width), f2(top+r),
		f2(base))
}

func pieChart(cfg ChartConfig, graph GraphData, theme EffectiveTheme) string {
	var sb strings.Builder
	sb.WriteString(svgHeader(cfg, "pie"))

	palette := theme.Palette()
	legendHeight := 36.0
	cx := float64(cfg.Width) / 2
	cy := (float64(cfg.Height) - legendHeight) / 2

	total := 0.0
	for _, point := range graph.Data {
		total += math.Max(0, pointValue(point))
	}

	if total > 0 {
		n := len(graph.Data)
		padding := piePadding
		if n < 2 {
			padding = 0
		}
		available := 360 - padding*float64(n)
		angle := 0.0
		for i, point := range graph.Data {
			sweep := available * math.Max(0, pointValue(point)) / total
			if sweep > 0 {
				sb.WriteString(fmt.Sprintf(`<path d="%s" fill="%s"/>`,
					ringSegment(cx, cy, pieInnerRadius, pieOuterRadius, angle, angle+sweep),
					html.EscapeString(palette[i%len(palette)])))
			}
			angle += sweep + padding
		}
	} else {
		sb.WriteString(fmt.Sprintf(`<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s"/>`,
			f2(cx), f2(cy), f2((pieInnerRadius+pieOuterRadius)/2), chartGridColor, f2(pieOuterRadius-pieInnerRadius)))
	}

	writeLegend(&sb, cfg, graph.Data, palette, float64(cfg.Height)-legendHeight/2)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// ringSegment draws an annular sector. Angles are degrees counter-clockwise
// from three o'clock.
func ringSegment(cx, cy, inner, outer, from, to float64) string {
	if to-from >= 359.999 {
		mid := from + 180
		return ringSegment(cx, cy, inner, outer, from, mid) + ringSegment(cx, cy, inner, outer, mid, to)
	}
	large := 0
	if to-from > 180 {
		large = 1
	}
	ox0, oy0 := polar(cx, cy, outer, from)
	ox1, oy1 := polar(cx, cy, outer, to)
	ix1, iy1 := polar(cx, cy, inner, to)
	ix0, iy0 := polar(cx, cy, inner, from)
	return fmt.Sprintf("M%s,%sA%s,%s 0 %d 0 %s,%sL%s,%sA%s,%s 0 %d 1 %s,%sZ",
		f2(ox0), f2(oy0),
		f2(outer), f2(outer), large, f2(ox1), f2(oy1),
		f2(ix1), f2(iy1),
		f2(inner), f2(inner), large, f2(ix0), f2(iy0))
}

func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return cx + r*math.Cos(rad), cy - r*math.Sin(rad)
}

func writeLegend(sb *strings.Builder, cfg ChartConfig, data []GraphPoint, palette []string, y float64) {
	const swatch, gap = 10.0, 8.0
	widths := make([]float64, len(data))
	total := 0.0
	for i, point := range data {
		widths[i] = swatch + 4 + float64(len([]rune(point.Name)))*float64(cfg.FontSize)*0.6
		total += widths[i]
	}
	total += gap * float64(max(len(data)-1, 0))
	x := (float64(cfg.Width) - total) / 2
	for i, point := range data {
		color := html.EscapeString(palette[i%len(palette)])
		sb.WriteString(fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
			f2(x), f2(y-swatch/2), f2(swatch), f2(swatch), color))
		sb.WriteString(fmt.Sprintf(`<text x="%s" y="%s" font-size="%d" fill="%s" dominant-baseline="middle">%s</text>`,
			f2(x+swatch+4), f2(y), cfg.FontSize, color, html.EscapeString(point.Name)))
		x += widths[i] + gap
	}
}

func areaChart(cfg ChartConfig, id string, graph GraphData, theme EffectiveTheme) string {
	var sb strings.Builder
	sb.WriteString(svgHeader(cfg, "area"))

	gradientID := "area-fill-" + id
	primary := html.EscapeString(theme.PrimaryColor)
	sb.WriteString(fmt.Sprintf(`<defs><linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`+
		`<stop offset="5%%" stop-color="%s" stop-opacity="0.3"/>`+
		`<stop offset="95%%" stop-color="%s" stop-opacity="0"/>`+
		`</linearGradient></defs>`, gradientID, primary, primary))

	px, py, pw, ph := cfg.plotArea()
	lo, hi, step := valueDomain(graph.Data)
	toY := func(v float64) float64 { return py + ph - (v-lo)/(hi-lo)*ph }

	writeValueAxis(&sb, cfg, lo, hi, step, toY)

	n := len(graph.Data)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, point := range graph.Data {
		if n == 1 {
			xs[i] = px + pw/2
		} else {
			xs[i] = px + pw*float64(i)/float64(n-1)
		}
		ys[i] = toY(pointValue(point))
		writeCategoryTick(&sb, cfg, xs[i], py+ph, point.Name)
	}

	if n == 1 {
		sb.WriteString(fmt.Sprintf(`<circle cx="%s" cy="%s" r="4" fill="%s"/>`, f2(xs[0]), f2(ys[0]), primary))
	} else {
		line := monotonePath(xs, ys)
		base := toY(math.Max(lo, math.Min(0, hi)))
		area := line + fmt.Sprintf("L%s,%sL%s,%sZ", f2(xs[n-1]), f2(base), f2(xs[0]), f2(base))
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="url(#%s)" stroke="none"/>`, area, gradientID))
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="%d"/>`, line, primary, areaStroke))
	}

	writeAxisCaptions(&sb, cfg, graph)
	sb.WriteString(`</svg>`)
	return sb.String()
}

// monotonePath interpolates with monotone cubic segments so the curve never
// overshoots the data.
func monotonePath(xs, ys []float64) string {
	n := len(xs)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("M%s,%s", f2(xs[0]), f2(ys[0])))
	if n == 2 {
		b.WriteString(fmt.Sprintf("L%s,%s", f2(xs[1]), f2(ys[1])))
		return b.String()
	}

	tangents := make([]float64, n)
	for i := 1; i < n-1; i++ {
		h0, h1 := xs[i]-xs[i-1], xs[i+1]-xs[i]
		s0, s1 := (ys[i]-ys[i-1])/h0, (ys[i+1]-ys[i])/h1
		p := (s0*h1 + s1*h0) / (h0 + h1)
		tangents[i] = (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	}
	tangents[0] = endTangent(xs[0], ys[0], xs[1], ys[1], tangents[1])
	tangents[n-1] = endTangent(xs[n-2], ys[n-2], xs[n-1], ys[n-1], tangents[n-2])

	for i := 0; i < n-1; i++ {
		dx := (xs[i+1] - xs[i]) / 3
		b.WriteString(fmt.Sprintf("C%s,%s %s,%s %s,%s",
			f2(xs[i]+dx), f2(ys[i]+dx*tangents[i]),
			f2(xs[i+1]-dx), f2(ys[i+1]-dx*tangents[i+1]),
			f2(xs[i+1]), f2(ys[i+1])))
	}
	return b.String()
}

func endTangent(x0, y0, x1, y1, inner float64) float64 {
	h := x1 - x0
	if h == 0 {
		return inner
	}
	return (3*(y1-y0)/h - inner) / 2
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// valueDomain returns a zero-anchored, rounded value range and its tick step.
func valueDomain(data []GraphPoint) (lo, hi, step float64) {
	for _, point := range data {
		v := pointValue(point)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	step = niceStep((hi - lo) / float64(yTickCount-1))
	lo = math.Floor(lo/step) * step
	hi = math.Ceil(hi/step) * step
	return lo, hi, step
}

func niceStep(raw float64) float64 {
	if raw <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(raw)))
	frac := raw / exp
	switch {
	case frac <= 1:
		return exp
	case frac <= 2:
		return 2 * exp
	case frac <= 2.5:
		return 2.5 * exp
	case frac <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

func writeValueAxis(sb *strings.Builder, cfg ChartConfig, lo, hi, step float64, toY func(float64) float64) {
	px, _, pw, _ := cfg.plotArea()
	count := int(math.Round((hi - lo) / step))
	for i := 0; i <= count; i++ {
		v := lo + step*float64(i)
		y := toY(v)
		sb.WriteString(fmt.Sprintf(`<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-dasharray="3 3"/>`,
			f2(px), f2(y), f2(px+pw), f2(y), chartGridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%s" y="%s" font-size="%d" fill="%s" text-anchor="end" dominant-baseline="middle">%s</text>`,
			f2(px-8), f2(y), cfg.FontSize, chartTickColor, formatTick(v)))
	}
}

func writeCategoryTick(sb *strings.Builder, cfg ChartConfig, x, axisY float64, name string) {
	sb.WriteString(fmt.Sprintf(`<text x="%s" y="%s" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
		f2(x), f2(axisY+float64(cfg.FontSize)+10), cfg.FontSize, chartTickColor, html.EscapeString(name)))
}

func writeAxisCaptions(sb *strings.Builder, cfg ChartConfig, graph GraphData) {
	px, py, pw, ph := cfg.plotArea()
	if graph.XAxisLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%s" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			f2(px+pw/2), cfg.Height-2, cfg.FontSize-1, chartTickColor, html.EscapeString(graph.XAxisLabel)))
	}
	if graph.YAxisLabel != "" {
		cy := py + ph/2
		sb.WriteString(fmt.Sprintf(`<text x="12" y="%s" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90 12 %s)">%s</text>`,
			f2(cy), cfg.FontSize-1, chartTickColor, f2(cy), html.EscapeString(graph.YAxisLabel)))
	}
}

func svgHeader(cfg ChartConfig, kind string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" class="chart chart-%s" viewBox="0 0 %d %d" width="100%%" preserveAspectRatio="xMidYMid meet" role="img">`,
		kind, cfg.Width, cfg.Height)
}

func formatTick(v float64) string {
	if math.Abs(v) < 1e-9 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func f2(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func svgID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "chart"
	}
	return b.String()
}
