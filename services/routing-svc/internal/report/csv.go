package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVGenerator генератор CSV отчётов. Разделы идут подряд и отделены пустой строкой.
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record ...string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	cw.w.Flush()
	return cw.w.Error()
}

// Generate генерирует CSV отчёт
func (g *CSVGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write("# " + g.GetTitle(data))

	if s := data.Stats; s != nil {
		cw.Write("metric", "value")
		cw.Write("vertices", strconv.Itoa(s.VertexCount))
		cw.Write("edges", strconv.Itoa(s.EdgeCount))
		cw.Write("max_degree", strconv.Itoa(s.MaxDegree))
		cw.Write("avg_degree", strconv.FormatFloat(s.AvgDegree, 'f', 4, 64))
		cw.Write("connected_components", strconv.Itoa(s.ConnectedComponents))
		cw.Write("is_connected", strconv.FormatBool(s.IsConnected))
		cw.Write()
	}

	if len(data.Matrix) > 0 {
		header := []string{"from\\to"}
		for j := range data.Matrix[0] {
			header = append(header, strconv.Itoa(j))
		}
		cw.Write(header...)
		for i, row := range data.Matrix {
			record := []string{strconv.Itoa(g.RowLabel(data, i))}
			for _, d := range row {
				record = append(record, g.FormatDistance(d))
			}
			cw.Write(record...)
		}
		cw.Write()
	}

	if len(data.Paths) > 0 {
		cw.Write("from", "to", "cost", "path")
		for _, p := range data.Paths {
			cw.Write(strconv.Itoa(p.From), strconv.Itoa(p.To), g.FormatDistance(p.Cost), g.FormatPath(p.Path))
		}
		cw.Write()
	}

	if len(data.NegativeCycle) > 0 {
		cw.Write("negative_cycle", g.FormatPath(data.NegativeCycle))
		cw.Write()
	}

	if data.Profile != nil && len(data.Profile.Records) > 0 {
		cw.Write("operation", "duration_ns", "memory_bytes", "error")
		for _, r := range data.Profile.Records {
			errText := ""
			if r.Err != nil {
				errText = r.Err.Error()
			}
			cw.Write(r.Name, strconv.FormatInt(r.Duration.Nanoseconds(), 10), strconv.FormatUint(r.MemoryUsed, 10), errText)
		}
	}

	if err := cw.Flush(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}
	return buf.Bytes(), nil
}
