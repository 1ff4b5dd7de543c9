package proposalpdf

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/goliatone/go-proposal/proposal"
)

const defaultPDFScale = 1.0

// ExternalAssetsPolicy controls whether engines may fetch remote assets.
type ExternalAssetsPolicy string

const (
	ExternalAssetsAllow ExternalAssetsPolicy = "allow"
	ExternalAssetsBlock ExternalAssetsPolicy = "block"
)

// Options configures PDF output. Zero values keep engine defaults.
type Options struct {
	PageSize             string
	Landscape            *bool
	PrintBackground      *bool
	Scale                float64
	MarginTop            string
	MarginBottom         string
	MarginLeft           string
	MarginRight          string
	PreferCSSPageSize    *bool
	BaseURL              string
	ExternalAssetsPolicy ExternalAssetsPolicy
}

// DefaultOptions prints backgrounds and keeps the stylesheet page size.
func DefaultOptions() Options {
	return Options{
		PrintBackground:   boolPtr(true),
		PreferCSSPageSize: boolPtr(true),
		Scale:             defaultPDFScale,
	}
}

var pdfLengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

var pdfPageSizesInches = map[string]struct {
	width  float64
	height float64
}{
	"A3":     {width: 11.69, height: 16.54},
	"A4":     {width: 8.27, height: 11.69},
	"A5":     {width: 5.83, height: 8.27},
	"LETTER": {width: 8.5, height: 11},
	"LEGAL":  {width: 8.5, height: 14},
}

func mergeOptions(base, override Options) Options {
	merged := base
	if override.PageSize != "" {
		merged.PageSize = override.PageSize
	}
	if override.Landscape != nil {
		merged.Landscape = override.Landscape
	}
	if override.PrintBackground != nil {
		merged.PrintBackground = override.PrintBackground
	}
	if override.Scale != 0 {
		merged.Scale = override.Scale
	}
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&merged.MarginTop, override.MarginTop},
		{&merged.MarginBottom, override.MarginBottom},
		{&merged.MarginLeft, override.MarginLeft},
		{&merged.MarginRight, override.MarginRight},
		{&merged.BaseURL, override.BaseURL},
	} {
		if pair.src != "" {
			*pair.dst = pair.src
		}
	}
	if override.PreferCSSPageSize != nil {
		merged.PreferCSSPageSize = override.PreferCSSPageSize
	}
	if override.ExternalAssetsPolicy != "" {
		merged.ExternalAssetsPolicy = override.ExternalAssetsPolicy
	}
	return merged
}

// printGeometry is the resolved, engine-neutral print setup in inches.
type printGeometry struct {
	scale        float64
	landscape    bool
	background   bool
	preferCSS    bool
	paperWidth   float64
	paperHeight  float64
	marginTop    *float64
	marginBottom *float64
	marginLeft   *float64
	marginRight  *float64
}

func resolveGeometry(opts Options) (printGeometry, error) {
	geo := printGeometry{scale: opts.Scale}
	if geo.scale == 0 {
		geo.scale = defaultPDFScale
	}
	if geo.scale < 0.1 || geo.scale > 2.0 {
		return geo, proposal.NewError(proposal.KindValidation, "pdf scale must be between 0.1 and 2.0", nil)
	}
	if opts.Landscape != nil {
		geo.landscape = *opts.Landscape
	}
	if opts.PrintBackground != nil {
		geo.background = *opts.PrintBackground
	}
	if opts.PreferCSSPageSize != nil {
		geo.preferCSS = *opts.PreferCSSPageSize
	} else if opts.PageSize == "" {
		geo.preferCSS = true
	}
	if opts.PageSize != "" {
		size, ok := pdfPageSizesInches[strings.ToUpper(opts.PageSize)]
		if !ok {
			return geo, proposal.NewError(proposal.KindValidation, fmt.Sprintf("unsupported pdf page size: %s", opts.PageSize), nil)
		}
		geo.paperWidth, geo.paperHeight = size.width, size.height
	}
	for _, margin := range []struct {
		dst **float64
		raw string
	}{
		{&geo.marginTop, opts.MarginTop},
		{&geo.marginBottom, opts.MarginBottom},
		{&geo.marginLeft, opts.MarginLeft},
		{&geo.marginRight, opts.MarginRight},
	} {
		if margin.raw == "" {
			continue
		}
		value, err := parseLengthInches(margin.raw)
		if err != nil {
			return geo, err
		}
		*margin.dst = &value
	}
	return geo, nil
}

func buildPrintToPDFParams(opts Options) (*page.PrintToPDFParams, error) {
	geo, err := resolveGeometry(opts)
	if err != nil {
		return nil, err
	}
	params := page.PrintToPDF().
		WithScale(geo.scale).
		WithLandscape(geo.landscape).
		WithPrintBackground(geo.background)
	if geo.preferCSS {
		params = params.WithPreferCSSPageSize(true)
	}
	if geo.paperWidth > 0 {
		params = params.WithPaperWidth(geo.paperWidth).WithPaperHeight(geo.paperHeight)
	}
	if geo.marginTop != nil {
		params = params.WithMarginTop(*geo.marginTop)
	}
	if geo.marginBottom != nil {
		params = params.WithMarginBottom(*geo.marginBottom)
	}
	if geo.marginLeft != nil {
		params = params.WithMarginLeft(*geo.marginLeft)
	}
	if geo.marginRight != nil {
		params = params.WithMarginRight(*geo.marginRight)
	}
	return params, nil
}

func parseLengthInches(value string) (float64, error) {
	matches := pdfLengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, proposal.NewError(proposal.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), nil)
	}

	unit := strings.ToLower(matches[2])
	if unit == "" {
		unit = "in"
	}
	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, proposal.NewError(proposal.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), err)
	}

	switch unit {
	case "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, proposal.NewError(proposal.KindValidation, fmt.Sprintf("unsupported pdf length unit: %s", unit), nil)
	}
}

func injectBaseURL(htmlInput []byte, baseURL string) []byte {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return htmlInput
	}

	lower := strings.ToLower(string(htmlInput))
	if strings.Contains(lower, "<base") {
		return htmlInput
	}

	baseTag := fmt.Sprintf(`<base href="%s">`, html.EscapeString(baseURL))
	if headIdx := strings.Index(lower, "<head"); headIdx >= 0 {
		if end := strings.Index(lower[headIdx:], ">"); end >= 0 {
			return insertAt(htmlInput, headIdx+end+1, baseTag)
		}
	}
	if htmlIdx := strings.Index(lower, "<html"); htmlIdx >= 0 {
		if end := strings.Index(lower[htmlIdx:], ">"); end >= 0 {
			return insertAt(htmlInput, htmlIdx+end+1, "<head>"+baseTag+"</head>")
		}
	}
	return append([]byte(baseTag), htmlInput...)
}

func insertAt(input []byte, pos int, fragment string) []byte {
	out := make([]byte, 0, len(input)+len(fragment))
	out = append(out, input[:pos]...)
	out = append(out, fragment...)
	return append(out, input[pos:]...)
}

func boolPtr(value bool) *bool {
	return &value
}
