package proposal

// EffectiveTheme is a theme with every field resolved.
type EffectiveTheme struct {
	PrimaryColor    string
	SecondaryColor  string
	TextColor       string
	BackgroundColor string
	FontFamily      string
	OverlayOpacity  float64
}

// ResolveTheme fills absent theme fields with defaults. An explicit zero
// opacity is kept; only a missing one falls back.
func ResolveTheme(theme Theme) EffectiveTheme {
	resolved := EffectiveTheme{
		PrimaryColor:    orDefault(theme.PrimaryColor, DefaultPrimaryColor),
		SecondaryColor:  orDefault(theme.SecondaryColor, DefaultSecondaryColor),
		TextColor:       orDefault(theme.TextColor, DefaultTextColor),
		BackgroundColor: orDefault(theme.BackgroundColor, DefaultBackgroundColor),
		FontFamily:      orDefault(theme.FontFamily, DefaultFontFamily),
		OverlayOpacity:  DefaultOverlayOpacity,
	}
	if theme.OverlayOpacity != nil {
		resolved.OverlayOpacity = *theme.OverlayOpacity
	}
	return resolved
}

// Accent returns the border color for the indexed item: primary for even
// positions, secondary for odd.
func (t EffectiveTheme) Accent(index int) string {
	if index%2 == 0 {
		return t.PrimaryColor
	}
	return t.SecondaryColor
}

// Palette returns the chart palette in order.
func (t EffectiveTheme) Palette() []string {
	out := make([]string, 0, 2+len(chartAccents))
	out = append(out, t.PrimaryColor, t.SecondaryColor)
	return append(out, chartAccents...)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
