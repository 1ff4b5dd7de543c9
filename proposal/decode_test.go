package proposal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeDocumentSections(t *testing.T) {
	doc := loadFixture(t, "acme.json")

	var types []SectionType
	for _, section := range doc.Sections {
		types = append(types, section.SectionType())
	}
	want := []SectionType{
		SectionCover, SectionSynopsis, SectionStory, SectionProblem, SectionContent,
		SectionImpact, "hologram", SectionInvestment, SectionTeam, SectionTimeline, SectionBackCover,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("section types mismatch (-want +got):\n%s", diff)
	}

	unknown, ok := doc.Sections[6].(UnknownSection)
	if !ok {
		t.Fatalf("expected unknown section, got %T", doc.Sections[6])
	}
	if unknown.ID != "s-future" || len(unknown.Raw) == 0 {
		t.Fatalf("expected raw payload for unknown section, got %+v", unknown)
	}

	impact := doc.Sections[5].(ImpactSection)
	if impact.Calculator == nil || impact.Calculator.CostPerScholarship != 2500 {
		t.Fatalf("expected calculator config, got %+v", impact.Calculator)
	}
	if impact.Calculator.MinDonation != nil {
		t.Fatalf("expected absent min donation")
	}
}

func TestDecodeGraphPointExtras(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"meta":{},"theme":{},"sections":[
		{"id":"i","type":"impact","title":"I","displayType":"graph","stats":[],
		 "graph":{"type":"bar","data":[{"name":"a","value":2,"target":5},{"name":"b","value":null}]}}
	]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	graph := doc.Sections[0].(ImpactSection).Graph
	if graph == nil || len(graph.Data) != 2 {
		t.Fatalf("expected two graph points, got %+v", graph)
	}
	want := GraphPoint{Name: "a", Value: floatPtr(2), Extra: map[string]any{"target": float64(5)}}
	if diff := cmp.Diff(want, graph.Data[0]); diff != "" {
		t.Fatalf("graph point mismatch (-want +got):\n%s", diff)
	}
	if graph.Data[1].Value != nil {
		t.Fatalf("expected null value to stay absent")
	}
}

func TestDecodeDocumentRejectsMalformed(t *testing.T) {
	for _, payload := range []string{"", "   ", "{", `{"sections":"nope"}`} {
		_, err := DecodeDocument([]byte(payload))
		if err == nil {
			t.Fatalf("expected error for %q", payload)
		}
		if KindFromError(err) != KindValidation {
			t.Fatalf("expected validation error for %q, got %v", payload, err)
		}
	}
}

func TestEncodeDocumentTagsSections(t *testing.T) {
	doc := Document{Sections: []Section{
		CoverSection{SectionBase: SectionBase{ID: "c"}, Title: "Hello"},
		UnknownSection{SectionBase: SectionBase{ID: "u", Type: "future"}, Raw: []byte(`{"id":"u","type":"future","x":1}`)},
	}}
	data, err := EncodeDocument(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	cover, ok := decoded.Sections[0].(CoverSection)
	if !ok || cover.Title != "Hello" {
		t.Fatalf("expected cover section after encode, got %#v", decoded.Sections[0])
	}
	if decoded.Sections[1].SectionType() != "future" {
		t.Fatalf("expected unknown section preserved, got %s", decoded.Sections[1].SectionType())
	}
}

func TestDecodeToleratesMistypedFields(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{
		"meta": {"title": "T", "date": 2026},
		"theme": {"primaryColor": 42, "overlayOpacity": "0.5"},
		"sections": [
			{"id": "i", "type": "impact", "title": "I",
			 "stats": [{"label": "Students", "value": 150}, {"label": "Rate", "value": "94", "suffix": "%"}],
			 "graph": {"type": "bar", "data": [{"name": "a", "value": "42"}, {"name": "b", "value": "n/a"}, {"name": "c", "value": true}, 7]},
			 "calculator": {"costPerScholarship": "2500", "costPerServiceHour": "lots", "minDonation": "500", "step": {}}}
		]
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Meta.Date != "2026" {
		t.Fatalf("expected numeric date as text, got %q", doc.Meta.Date)
	}
	if doc.Theme.PrimaryColor != "" {
		t.Fatalf("expected non-string color to be dropped, got %q", doc.Theme.PrimaryColor)
	}
	if doc.Theme.OverlayOpacity == nil || *doc.Theme.OverlayOpacity != 0.5 {
		t.Fatalf("expected opacity 0.5 from numeric string, got %v", doc.Theme.OverlayOpacity)
	}

	impact, ok := doc.Sections[0].(ImpactSection)
	if !ok {
		t.Fatalf("expected impact section, got %T", doc.Sections[0])
	}
	if impact.Stats[0].Value != "150" || impact.Stats[1].Value != "94" {
		t.Fatalf("expected stat values as text, got %+v", impact.Stats)
	}

	points := impact.Graph.Data
	if len(points) != 4 {
		t.Fatalf("expected four points, got %d", len(points))
	}
	if points[0].Value == nil || *points[0].Value != 42 {
		t.Fatalf("expected numeric string value, got %v", points[0].Value)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Value != nil {
			t.Fatalf("point %d: expected unreadable value to be absent, got %v", i, *points[i].Value)
		}
	}

	calc := impact.Calculator
	if calc.CostPerScholarship != 2500 || calc.CostPerServiceHour != 0 {
		t.Fatalf("unexpected costs %+v", calc)
	}
	if calc.MinDonation == nil || *calc.MinDonation != 500 || calc.Step != nil {
		t.Fatalf("unexpected bounds %+v", calc)
	}
	resolved := NewCalculator(calc)
	if resolved.CostPerServiceHour() != DefaultCostPerServiceHour || resolved.Step() != DefaultDonationStep {
		t.Fatalf("expected unreadable numbers to fall back to defaults")
	}
}

func TestDecodeKeepsBrokenSectionsOutOfTheWay(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"meta": "oops", "theme": [], "sections": [
		{"id": "c", "type": "cover", "title": "Hello"},
		{"id": "s", "type": "synopsis", "summaryPillars": "none"},
		"stray"
	]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected three sections, got %d", len(doc.Sections))
	}
	if _, ok := doc.Sections[0].(CoverSection); !ok {
		t.Fatalf("expected cover section, got %T", doc.Sections[0])
	}
	for _, i := range []int{1, 2} {
		if _, ok := doc.Sections[i].(UnknownSection); !ok {
			t.Fatalf("section %d: expected unreadable section to be kept raw, got %T", i, doc.Sections[i])
		}
	}
	pages, err := newTestComposer(t).Compose(doc)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected only the cover page, got %d", len(pages))
	}
}

func TestDecodeStoredDocumentIsInternal(t *testing.T) {
	_, err := DecodeStoredDocument([]byte("{"))
	if KindFromError(err) != KindInternal {
		t.Fatalf("expected internal error for unreadable record, got %v", err)
	}
	if AsGoError(err).TextCode != "internal" {
		t.Fatalf("expected internal text code, got %q", AsGoError(err).TextCode)
	}
}
