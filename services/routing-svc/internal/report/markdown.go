package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// MarkdownGenerator генератор Markdown отчётов
type MarkdownGenerator struct {
	BaseGenerator
}

// NewMarkdownGenerator создаёт новый генератор
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

// maxMarkdownColumns матрица шире этого значения не выводится в Markdown
const maxMarkdownColumns = 32

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", g.GetTitle(data))
	fmt.Fprintf(&buf, "_Generated %s by %s_\n\n", g.FormatTimestamp(g.GeneratedAt(data)), g.GetAuthor(data))

	if s := data.Stats; s != nil {
		buf.WriteString("## Graph\n\n| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(&buf, "| Vertices | %d |\n", s.VertexCount)
		fmt.Fprintf(&buf, "| Edges | %d |\n", s.EdgeCount)
		fmt.Fprintf(&buf, "| Max degree | %d |\n", s.MaxDegree)
		fmt.Fprintf(&buf, "| Avg degree | %.2f |\n", s.AvgDegree)
		fmt.Fprintf(&buf, "| Components | %d |\n", s.ConnectedComponents)
		fmt.Fprintf(&buf, "| Connected | %t |\n\n", s.IsConnected)
	}

	if len(data.Matrix) > 0 {
		g.writeMatrix(&buf, data)
	}

	if len(data.Paths) > 0 {
		buf.WriteString("## Shortest paths\n\n| From | To | Cost | Path |\n|---|---|---|---|\n")
		for _, p := range data.Paths {
			fmt.Fprintf(&buf, "| %d | %d | %s | %s |\n", p.From, p.To, g.FormatDistance(p.Cost), g.FormatPath(p.Path))
		}
		buf.WriteString("\n")
	}

	if len(data.NegativeCycle) > 0 {
		fmt.Fprintf(&buf, "## Negative cycle\n\n`%s -> %d`\n\n", g.FormatPath(data.NegativeCycle), data.NegativeCycle[0])
	}

	if p := data.Profile; p != nil && len(p.Records) > 0 {
		buf.WriteString("## Profile\n\n| Operation | Duration | Memory | Status |\n|---|---|---|---|\n")
		for _, r := range p.Records {
			status := "ok"
			if r.Err != nil {
				status = r.Err.Error()
			}
			fmt.Fprintf(&buf, "| %s | %s | %s | %s |\n", r.Name, g.FormatDuration(r.Duration), g.FormatBytes(r.MemoryUsed), status)
		}
		fmt.Fprintf(&buf, "\n%d operations, total %s, average %s, peak memory %s, average memory %s\n\n",
			p.OperationCount,
			g.FormatDuration(p.TotalDuration),
			g.FormatDuration(p.AverageDuration),
			g.FormatBytes(p.PeakMemory),
			g.FormatBytes(p.AverageMemory),
		)
	}

	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeMatrix(buf *bytes.Buffer, data *ReportData) {
	buf.WriteString("## Distances\n\n")

	cols := len(data.Matrix[0])
	if cols > maxMarkdownColumns {
		fmt.Fprintf(buf, "_Matrix has %d columns, see the XLSX or CSV report._\n\n", cols)
		return
	}

	header := make([]string, 0, cols+1)
	header = append(header, "")
	for j := 0; j < cols; j++ {
		header = append(header, fmt.Sprint(j))
	}
	fmt.Fprintf(buf, "| %s |\n", strings.Join(header, " | "))
	fmt.Fprintf(buf, "|%s\n", strings.Repeat("---|", cols+1))

	for i, row := range data.Matrix {
		cells := make([]string, 0, cols+1)
		cells = append(cells, fmt.Sprintf("**%d**", g.RowLabel(data, i)))
		for _, d := range row {
			cells = append(cells, g.FormatDistance(d))
		}
		fmt.Fprintf(buf, "| %s |\n", strings.Join(cells, " | "))
	}
	buf.WriteString("\n")
}
