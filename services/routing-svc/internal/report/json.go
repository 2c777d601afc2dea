package report

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"routing/pkg/domain"
)

// JSONGenerator генератор JSON отчётов
type JSONGenerator struct {
	BaseGenerator
}

// NewJSONGenerator создаёт новый генератор
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

// JSONReport структура JSON отчёта. Бесконечные расстояния кодируются как null.
type JSONReport struct {
	Metadata      JSONMetadata            `json:"metadata"`
	Stats         *domain.GraphStatistics `json:"stats,omitempty"`
	Matrix        [][]*float64            `json:"matrix,omitempty"`
	RowLabels     []int                   `json:"rowLabels,omitempty"`
	Paths         []JSONPath              `json:"paths,omitempty"`
	NegativeCycle []int                   `json:"negativeCycle,omitempty"`
	Profile       *JSONProfile            `json:"profile,omitempty"`
}

type JSONMetadata struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	GraphName   string `json:"graphName,omitempty"`
	GeneratedAt string `json:"generatedAt"`
}

type JSONPath struct {
	From int      `json:"from"`
	To   int      `json:"to"`
	Cost *float64 `json:"cost"`
	Path []int    `json:"path"`
}

type JSONProfile struct {
	OperationCount    int                `json:"operationCount"`
	TotalDurationMs   float64            `json:"totalDurationMs"`
	AverageDurationMs float64            `json:"averageDurationMs"`
	PeakMemory        uint64             `json:"peakMemory"`
	AverageMemory     uint64             `json:"averageMemory"`
	Records           []JSONProfileEntry `json:"records"`
}

type JSONProfileEntry struct {
	Name       string  `json:"name"`
	DurationMs float64 `json:"durationMs"`
	MemoryUsed uint64  `json:"memoryUsed"`
	StartedAt  string  `json:"startedAt"`
	Error      string  `json:"error,omitempty"`
}

// Generate генерирует JSON отчёт
func (g *JSONGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	out := JSONReport{
		Metadata: JSONMetadata{
			Title:       g.GetTitle(data),
			Author:      g.GetAuthor(data),
			GraphName:   data.GraphName,
			GeneratedAt: g.GeneratedAt(data).Format(time.RFC3339),
		},
		Stats:         data.Stats,
		RowLabels:     data.RowLabels,
		NegativeCycle: data.NegativeCycle,
	}

	if len(data.Matrix) > 0 {
		out.Matrix = make([][]*float64, len(data.Matrix))
		for i, row := range data.Matrix {
			out.Matrix[i] = make([]*float64, len(row))
			for j, d := range row {
				out.Matrix[i][j] = finite(d)
			}
		}
	}

	for _, p := range data.Paths {
		path := p.Path
		if path == nil {
			path = []int{}
		}
		out.Paths = append(out.Paths, JSONPath{From: p.From, To: p.To, Cost: finite(p.Cost), Path: path})
	}

	if p := data.Profile; p != nil {
		jp := &JSONProfile{
			OperationCount:    p.OperationCount,
			TotalDurationMs:   durationMs(p.TotalDuration),
			AverageDurationMs: durationMs(p.AverageDuration),
			PeakMemory:        p.PeakMemory,
			AverageMemory:     p.AverageMemory,
			Records:           make([]JSONProfileEntry, 0, len(p.Records)),
		}
		for _, r := range p.Records {
			entry := JSONProfileEntry{
				Name:       r.Name,
				DurationMs: durationMs(r.Duration),
				MemoryUsed: r.MemoryUsed,
				StartedAt:  r.StartedAt.Format(time.RFC3339Nano),
			}
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			jp.Records = append(jp.Records, entry)
		}
		out.Profile = jp
	}

	return json.MarshalIndent(out, "", "  ")
}

// finite возвращает nil для бесконечностей и NaN, которые JSON не умеет кодировать
func finite(d float64) *float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return nil
	}
	return &d
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
