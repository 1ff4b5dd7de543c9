package proposal

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetInvestment = "Investment"
	SheetImpact     = "Impact"
	SheetGraph      = "Graph"
	SheetTimeline   = "Timeline"
)

// WorkbookRenderer exports the tabular parts of a proposal to XLSX.
type WorkbookRenderer struct{}

type sheetData struct {
	name    string
	headers []string
	rows    [][]any
}

// Render writes the workbook.
func (WorkbookRenderer) Render(ctx context.Context, doc Document, w io.Writer) error {
	sheets := workbookSheets(doc)

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return NewError(KindInternal, "create header style", err)
	}
	totalStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Italic: true}})
	if err != nil {
		return NewError(KindInternal, "create total style", err)
	}

	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i == 0 {
			file.SetSheetName(file.GetSheetName(0), sheet.name)
		} else if _, err := file.NewSheet(sheet.name); err != nil {
			return NewError(KindInternal, "create sheet "+sheet.name, err)
		}
		if err := writeSheet(file, sheet, headerStyle, totalStyle); err != nil {
			return err
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return NewError(KindInternal, "write workbook", err)
	}
	return nil
}

func writeSheet(file *excelize.File, sheet sheetData, headerStyle, totalStyle int) error {
	stream, err := file.NewStreamWriter(sheet.name)
	if err != nil {
		return NewError(KindInternal, "open sheet "+sheet.name, err)
	}
	headers := make([]any, len(sheet.headers))
	for i, h := range sheet.headers {
		headers[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := stream.SetRow("A1", headers); err != nil {
		return NewError(KindInternal, "write header", err)
	}
	for i, row := range sheet.rows {
		cells := row
		if sheet.name == SheetInvestment && len(row) == 4 && row[3] == true {
			cells = make([]any, len(row))
			for j, v := range row {
				cells[j] = excelize.Cell{StyleID: totalStyle, Value: v}
			}
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", i+2), cells); err != nil {
			return NewError(KindInternal, "write row", err)
		}
	}
	if err := stream.Flush(); err != nil {
		return NewError(KindInternal, "flush sheet "+sheet.name, err)
	}
	return nil
}

func workbookSheets(doc Document) []sheetData {
	investment := sheetData{name: SheetInvestment, headers: []string{"Section", "Item", "Cost", "Total"}}
	impact := sheetData{name: SheetImpact, headers: []string{"Section", "Label", "Value", "Suffix", "Description"}}
	graph := sheetData{name: SheetGraph, headers: []string{"Section", "Type", "Name", "Value"}}
	timeline := sheetData{name: SheetTimeline, headers: []string{"Section", "Date", "Title", "Description"}}

	for _, section := range doc.Sections {
		switch s := section.(type) {
		case InvestmentSection:
			for _, el := range s.Elements {
				investment.rows = append(investment.rows, []any{s.Title, el.Item, el.Cost, el.IsTotal})
			}
		case ImpactSection:
			for _, stat := range s.Stats {
				impact.rows = append(impact.rows, []any{s.Title, stat.Label, stat.Value, stat.Suffix, stat.Description})
			}
			if s.HasChart() {
				for _, point := range s.Graph.Data {
					graph.rows = append(graph.rows, []any{s.Title, string(ChartKindFor(s.Graph.Type)), point.Name, pointValue(point)})
				}
			}
		case TimelineSection:
			for _, step := range s.Steps {
				timeline.rows = append(timeline.rows, []any{s.Title, step.Date, step.Title, step.Description})
			}
		}
	}
	return []sheetData{investment, impact, graph, timeline}
}
