package report

import (
	"bytes"
	"context"

	"github.com/xuri/excelize/v2"

	"routing/pkg/domain"
)

const (
	sheetSummary  = "Summary"
	sheetMatrix   = "Distances"
	sheetPaths    = "Paths"
	sheetCycle    = "Negative Cycle"
	sheetProfile  = "Profile"
	defaultSheet  = "Sheet1"
	infinityLabel = "∞"
)

// ExcelGenerator генератор XLSX отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// Generate генерирует XLSX отчёт. Листы без данных не создаются.
func (g *ExcelGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName(defaultSheet, sheetSummary); err != nil {
		return nil, err
	}
	g.writeSummary(f, data, headerStyle)

	if len(data.Matrix) > 0 {
		g.writeMatrix(f, data, headerStyle)
	}
	if len(data.Paths) > 0 {
		g.writePaths(f, data, headerStyle)
	}
	if len(data.NegativeCycle) > 0 {
		g.writeCycle(f, data, headerStyle)
	}
	if data.Profile != nil && len(data.Profile.Records) > 0 {
		g.writeProfile(f, data, headerStyle)
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(f *excelize.File, data *ReportData, headerStyle int) {
	sheet := sheetSummary
	row := 1

	f.SetCellValue(sheet, Cell("A", row), g.GetTitle(data))
	f.MergeCell(sheet, Cell("A", row), Cell("B", row))
	row++
	f.SetCellValue(sheet, Cell("A", row), "Generated")
	f.SetCellValue(sheet, Cell("B", row), g.FormatTimestamp(g.GeneratedAt(data)))
	row++
	f.SetCellValue(sheet, Cell("A", row), "Author")
	f.SetCellValue(sheet, Cell("B", row), g.GetAuthor(data))
	row += 2

	if s := data.Stats; s != nil {
		f.SetCellValue(sheet, Cell("A", row), "Graph Statistics")
		f.SetCellStyle(sheet, Cell("A", row), Cell("B", row), headerStyle)
		row++

		rows := []struct {
			label string
			value any
		}{
			{"Vertices", s.VertexCount},
			{"Edges", s.EdgeCount},
			{"Max Degree", s.MaxDegree},
			{"Min Degree", s.MinDegree},
			{"Avg Degree", s.AvgDegree},
			{"Density", s.Density},
			{"Connected Components", s.ConnectedComponents},
			{"Is Connected", s.IsConnected},
			{"Root Reaches All", s.RootReachesAll},
			{"Negative Edges", s.NegativeEdges},
			{"Self Loops", s.SelfLoops},
		}
		for _, r := range rows {
			f.SetCellValue(sheet, Cell("A", row), r.label)
			f.SetCellValue(sheet, Cell("B", row), r.value)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "B", 24)
}

// writeMatrix пишет матрицу расстояний; +Inf записывается символом ∞
func (g *ExcelGenerator) writeMatrix(f *excelize.File, data *ReportData, headerStyle int) {
	sheet := sheetMatrix
	f.NewSheet(sheet)

	cols := len(data.Matrix[0])
	f.SetCellValue(sheet, "A1", "from \\ to")
	for j := 0; j < cols; j++ {
		f.SetCellValue(sheet, CellByIndex(j+1, 1), j)
	}
	f.SetCellStyle(sheet, "A1", CellByIndex(cols, 1), headerStyle)

	for i, rowValues := range data.Matrix {
		row := i + 2
		f.SetCellValue(sheet, Cell("A", row), g.RowLabel(data, i))
		f.SetCellStyle(sheet, Cell("A", row), Cell("A", row), headerStyle)
		for j, d := range rowValues {
			f.SetCellValue(sheet, CellByIndex(j+1, row), excelDistance(d))
		}
	}
}

func (g *ExcelGenerator) writePaths(f *excelize.File, data *ReportData, headerStyle int) {
	sheet := sheetPaths
	f.NewSheet(sheet)

	f.SetSheetRow(sheet, "A1", &[]any{"From", "To", "Cost", "Hops", "Path"})
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	for i, p := range data.Paths {
		hops := max(len(p.Path)-1, 0)
		f.SetSheetRow(sheet, Cell("A", i+2), &[]any{p.From, p.To, excelDistance(p.Cost), hops, g.FormatPath(p.Path)})
	}
	f.SetColWidth(sheet, "E", "E", 40)
}

func (g *ExcelGenerator) writeCycle(f *excelize.File, data *ReportData, headerStyle int) {
	sheet := sheetCycle
	f.NewSheet(sheet)

	f.SetSheetRow(sheet, "A1", &[]any{"Position", "Vertex"})
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	for i, v := range data.NegativeCycle {
		f.SetSheetRow(sheet, Cell("A", i+2), &[]any{i, v})
	}
}

func (g *ExcelGenerator) writeProfile(f *excelize.File, data *ReportData, headerStyle int) {
	sheet := sheetProfile
	f.NewSheet(sheet)
	p := data.Profile

	f.SetSheetRow(sheet, "A1", &[]any{"Operation", "Duration (ms)", "Memory (bytes)", "Started", "Error"})
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)

	row := 2
	for _, r := range p.Records {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		f.SetSheetRow(sheet, Cell("A", row), &[]any{
			r.Name,
			float64(r.Duration.Microseconds()) / 1000,
			r.MemoryUsed,
			g.FormatTimestamp(r.StartedAt),
			errText,
		})
		row++
	}

	row++
	totals := []struct {
		label string
		value any
	}{
		{"Operations", p.OperationCount},
		{"Total (ms)", float64(p.TotalDuration.Microseconds()) / 1000},
		{"Average (ms)", float64(p.AverageDuration.Microseconds()) / 1000},
		{"Peak Memory (bytes)", p.PeakMemory},
		{"Average Memory (bytes)", p.AverageMemory},
	}
	for _, t := range totals {
		f.SetCellValue(sheet, Cell("A", row), t.label)
		f.SetCellValue(sheet, Cell("B", row), t.value)
		row++
	}

	f.SetColWidth(sheet, "A", "E", 18)
}

func excelDistance(d float64) any {
	if domain.IsInf(d) {
		return infinityLabel
	}
	return d
}
