package proposal

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DecodeDocument parses a stored proposal payload.
func DecodeDocument(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, NewError(KindValidation, "proposal payload is empty", nil)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, NewError(KindValidation, "invalid proposal payload", err)
	}
	return doc, nil
}

// DecodeStoredDocument parses a payload read back from a store. A stored
// record that does not decode is a server fault, not a bad request.
func DecodeStoredDocument(data []byte) (Document, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return Document{}, NewError(KindInternal, "stored proposal is unreadable", err)
	}
	return doc, nil
}

// EncodeDocument serializes a proposal into its stored form.
func EncodeDocument(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, NewError(KindInternal, "encode proposal", err)
	}
	return data, nil
}

// UnmarshalJSON decodes the section list as a tagged union.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw struct {
		Meta     Meta              `json:"meta"`
		Theme    Theme             `json:"theme"`
		Sections []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sections := make([]Section, 0, len(raw.Sections))
	for _, item := range raw.Sections {
		sections = append(sections, decodeSection(item))
	}
	d.Meta = raw.Meta
	d.Theme = raw.Theme
	d.Sections = sections
	return nil
}

// MarshalJSON writes each section with its discriminant populated.
func (d Document) MarshalJSON() ([]byte, error) {
	sections := make([]Section, 0, len(d.Sections))
	for _, section := range d.Sections {
		sections = append(sections, tagged(section))
	}
	return json.Marshal(struct {
		Meta     Meta      `json:"meta"`
		Theme    Theme     `json:"theme"`
		Sections []Section `json:"sections"`
	}{Meta: d.Meta, Theme: d.Theme, Sections: sections})
}

func tagged(section Section) Section {
	switch s := section.(type) {
	case CoverSection:
		s.Type = SectionCover
		return s
	case SynopsisSection:
		s.Type = SectionSynopsis
		return s
	case StorySection:
		s.Type = SectionStory
		return s
	case ProblemSection:
		s.Type = SectionProblem
		return s
	case ContentSection:
		s.Type = SectionContent
		return s
	case ImpactSection:
		s.Type = SectionImpact
		return s
	case InvestmentSection:
		s.Type = SectionInvestment
		return s
	case TeamSection:
		s.Type = SectionTeam
		return s
	case TimelineSection:
		s.Type = SectionTimeline
		return s
	case BackCoverSection:
		s.Type = SectionBackCover
		return s
	default:
		return section
	}
}

// decodeSection never fails: a section that is not an object, or a known
// section whose fields do not fit, is kept raw and produces no page.
func decodeSection(data json.RawMessage) Section {
	var base SectionBase
	if err := json.Unmarshal(data, &base); err != nil {
		return UnknownSection{Raw: append([]byte(nil), data...)}
	}

	var (
		section Section
		err     error
	)
	switch base.Type {
	case SectionCover:
		section, err = decodeInto[CoverSection](data)
	case SectionSynopsis:
		section, err = decodeInto[SynopsisSection](data)
	case SectionStory:
		section, err = decodeInto[StorySection](data)
	case SectionProblem:
		section, err = decodeInto[ProblemSection](data)
	case SectionContent:
		section, err = decodeInto[ContentSection](data)
	case SectionImpact:
		section, err = decodeInto[ImpactSection](data)
	case SectionInvestment:
		section, err = decodeInto[InvestmentSection](data)
	case SectionTeam:
		section, err = decodeInto[TeamSection](data)
	case SectionTimeline:
		section, err = decodeInto[TimelineSection](data)
	case SectionBackCover:
		section, err = decodeInto[BackCoverSection](data)
	default:
		return UnknownSection{SectionBase: base, Raw: append([]byte(nil), data...)}
	}
	if err != nil {
		return UnknownSection{SectionBase: base, Raw: append([]byte(nil), data...)}
	}
	return section
}

func decodeInto[T Section](data json.RawMessage) (Section, error) {
	var section T
	if err := json.Unmarshal(data, &section); err != nil {
		return nil, err
	}
	return section, nil
}

// MarshalJSON writes unknown sections back in their stored form.
func (s UnknownSection) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(s.SectionBase)
}

// UnmarshalJSON keeps keys other than name and value in Extra. A value
// that is not a finite number, or a numeric string, is left nil.
func (p *GraphPoint) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if !looseObject(data, &fields) {
		*p = GraphPoint{}
		return nil
	}
	point := GraphPoint{}
	for key, value := range fields {
		switch key {
		case "name":
			point.Name = looseText(value)
		case "value":
			if v, ok := looseNumber(value); ok {
				point.Value = &v
			}
		default:
			extra := looseValue(value)
			if point.Extra == nil {
				point.Extra = make(map[string]any)
			}
			point.Extra[key] = extra
		}
	}
	*p = point
	return nil
}

// MarshalJSON merges Extra back into the point object.
func (p GraphPoint) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+2)
	for key, value := range p.Extra {
		out[key] = value
	}
	out["name"] = p.Name
	if p.Value != nil {
		out["value"] = *p.Value
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts numbers where text is expected.
func (m *Meta) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       json.RawMessage `json:"title"`
		PreparedFor json.RawMessage `json:"preparedFor"`
		PreparedBy  json.RawMessage `json:"preparedBy"`
		Date        json.RawMessage `json:"date"`
		ClientLogo  json.RawMessage `json:"clientLogo"`
	}
	if !looseObject(data, &raw) {
		*m = Meta{}
		return nil
	}
	*m = Meta{
		Title:       looseText(raw.Title),
		PreparedFor: looseText(raw.PreparedFor),
		PreparedBy:  looseText(raw.PreparedBy),
		Date:        looseText(raw.Date),
		ClientLogo:  looseText(raw.ClientLogo),
	}
	return nil
}

// UnmarshalJSON drops fields it cannot read so they resolve to defaults.
// The opacity may be a number or a numeric string.
func (t *Theme) UnmarshalJSON(data []byte) error {
	var raw struct {
		PrimaryColor    json.RawMessage `json:"primaryColor"`
		SecondaryColor  json.RawMessage `json:"secondaryColor"`
		TextColor       json.RawMessage `json:"textColor"`
		BackgroundColor json.RawMessage `json:"backgroundColor"`
		FontFamily      json.RawMessage `json:"fontFamily"`
		OverlayOpacity  json.RawMessage `json:"overlayOpacity"`
	}
	if !looseObject(data, &raw) {
		*t = Theme{}
		return nil
	}
	*t = Theme{
		PrimaryColor:    looseString(raw.PrimaryColor),
		SecondaryColor:  looseString(raw.SecondaryColor),
		TextColor:       looseString(raw.TextColor),
		BackgroundColor: looseString(raw.BackgroundColor),
		FontFamily:      looseString(raw.FontFamily),
	}
	if v, ok := looseNumber(raw.OverlayOpacity); ok {
		t.OverlayOpacity = &v
	}
	return nil
}

// UnmarshalJSON keeps stat values as display text even when stored as
// numbers.
func (s *StatItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label       json.RawMessage `json:"label"`
		Value       json.RawMessage `json:"value"`
		Suffix      json.RawMessage `json:"suffix"`
		Description json.RawMessage `json:"description"`
	}
	if !looseObject(data, &raw) {
		*s = StatItem{}
		return nil
	}
	*s = StatItem{
		Label:       looseText(raw.Label),
		Value:       looseText(raw.Value),
		Suffix:      looseText(raw.Suffix),
		Description: looseText(raw.Description),
	}
	return nil
}

// UnmarshalJSON reads each number independently. Anything unreadable is
// left unset and falls back to its default.
func (c *CalculatorConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		CostPerScholarship json.RawMessage `json:"costPerScholarship"`
		CostPerServiceHour json.RawMessage `json:"costPerServiceHour"`
		MinDonation        json.RawMessage `json:"minDonation"`
		MaxDonation        json.RawMessage `json:"maxDonation"`
		Step               json.RawMessage `json:"step"`
	}
	if !looseObject(data, &raw) {
		*c = CalculatorConfig{}
		return nil
	}
	cfg := CalculatorConfig{}
	cfg.CostPerScholarship, _ = looseNumber(raw.CostPerScholarship)
	cfg.CostPerServiceHour, _ = looseNumber(raw.CostPerServiceHour)
	cfg.MinDonation = looseNumberPtr(raw.MinDonation)
	cfg.MaxDonation = looseNumberPtr(raw.MaxDonation)
	cfg.Step = looseNumberPtr(raw.Step)
	*c = cfg
	return nil
}

func looseObject(data []byte, dst any) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Unmarshal(trimmed, dst) == nil
}

func looseValue(raw json.RawMessage) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// looseText renders strings, numbers and booleans as display text.
func looseText(raw json.RawMessage) string {
	switch v := looseValue(raw).(type) {
	case string:
		return v
	case float64:
		return FormatPlain(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// looseString accepts only strings.
func looseString(raw json.RawMessage) string {
	v, _ := looseValue(raw).(string)
	return v
}

// looseNumber reads a finite number from a number or a numeric string.
func looseNumber(raw json.RawMessage) (float64, bool) {
	var n float64
	switch v := looseValue(raw).(type) {
	case float64:
		n = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func looseNumberPtr(raw json.RawMessage) *float64 {
	v, ok := looseNumber(raw)
	if !ok {
		return nil
	}
	return &v
}
