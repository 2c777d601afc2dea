package report

import (
	"errors"
	"math"
	"testing"
	"time"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/services/routing-svc/internal/profiling"
)

var testTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func sampleData() *ReportData {
	inf := math.Inf(1)
	return &ReportData{
		GraphName:   "chain",
		GeneratedAt: testTime,
		Stats: &domain.GraphStatistics{
			VertexCount:         3,
			EdgeCount:           2,
			MaxDegree:           1,
			AvgDegree:           0.6667,
			ConnectedComponents: 1,
			IsConnected:         true,
		},
		Matrix: [][]float64{
			{0, 10, 30},
			{inf, 0, 20},
			{inf, inf, 0},
		},
		Paths: []PathResult{
			{From: 0, To: 2, Path: []int{0, 1, 2}, Cost: 30},
			{From: 2, To: 0, Cost: inf},
		},
		Profile: &profiling.PerformanceStats{
			Records: []profiling.Record{
				{Name: "dijkstra", Duration: 2 * time.Millisecond, MemoryUsed: 2048, StartedAt: testTime},
				{Name: "bellman_ford", Duration: 4 * time.Millisecond, MemoryUsed: 4096, StartedAt: testTime, Err: errors.New("boom")},
			},
			OperationCount:  2,
			TotalDuration:   6 * time.Millisecond,
			AverageDuration: 3 * time.Millisecond,
			PeakMemory:      4096,
			AverageMemory:   3072,
		},
	}
}

func TestNew(t *testing.T) {
	for _, f := range []Format{FormatExcel, FormatCSV, FormatMarkdown, FormatJSON} {
		g, err := New(f)
		if err != nil {
			t.Fatalf("New(%s) error = %v", f, err)
		}
		if g.Format() != f {
			t.Errorf("New(%s).Format() = %s", f, g.Format())
		}
	}

	_, err := New("pdf")
	if apperror.Code(err) != apperror.CodeInvalidArgument {
		t.Errorf("New(pdf) code = %s, want INVALID_ARGUMENT", apperror.Code(err))
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"out/report.xlsx", FormatExcel, false},
		{"REPORT.CSV", FormatCSV, false},
		{"notes.markdown", FormatMarkdown, false},
		{"r.md", FormatMarkdown, false},
		{"r.json", FormatJSON, false},
		{"r.pdf", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBaseGenerator_GetTitle(t *testing.T) {
	b := &BaseGenerator{}

	if got := b.GetTitle(&ReportData{Title: "Custom"}); got != "Custom" {
		t.Errorf("GetTitle() = %s", got)
	}
	if got := b.GetTitle(&ReportData{GraphName: "city"}); got != "Shortest Path Report: city" {
		t.Errorf("GetTitle() = %s", got)
	}
	if got := b.GetTitle(&ReportData{}); got != "Shortest Path Report" {
		t.Errorf("GetTitle() = %s", got)
	}
}

func TestBaseGenerator_FormatDistance(t *testing.T) {
	b := &BaseGenerator{}

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{2.5, "2.5"},
		{-3, "-3"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		if got := b.FormatDistance(tt.in); got != tt.want {
			t.Errorf("FormatDistance(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBaseGenerator_FormatPath(t *testing.T) {
	b := &BaseGenerator{}

	if got := b.FormatPath([]int{0, 3, 1}); got != "0 -> 3 -> 1" {
		t.Errorf("FormatPath() = %s", got)
	}
	if got := b.FormatPath(nil); got != "-" {
		t.Errorf("FormatPath(nil) = %s", got)
	}
}

func TestBaseGenerator_FormatDuration(t *testing.T) {
	b := &BaseGenerator{}

	if got := b.FormatDuration(1500 * time.Microsecond); got != "1.500 ms" {
		t.Errorf("FormatDuration() = %s", got)
	}
	if got := b.FormatDuration(2500 * time.Millisecond); got != "2.50 s" {
		t.Errorf("FormatDuration() = %s", got)
	}
}

func TestBaseGenerator_FormatBytes(t *testing.T) {
	b := &BaseGenerator{}

	tests := []struct {
		in   uint64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := b.FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestBaseGenerator_RowLabel(t *testing.T) {
	b := &BaseGenerator{}

	data := &ReportData{RowLabels: []int{4, 7}}
	if got := b.RowLabel(data, 1); got != 7 {
		t.Errorf("RowLabel() = %d, want 7", got)
	}
	if got := b.RowLabel(&ReportData{}, 2); got != 2 {
		t.Errorf("RowLabel() = %d, want 2", got)
	}
}

func TestColName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		if got := ColName(tt.index); got != tt.want {
			t.Errorf("ColName(%d) = %s, want %s", tt.index, got, tt.want)
		}
	}
}

func TestCellByIndex(t *testing.T) {
	if got := CellByIndex(27, 3); got != "AB3" {
		t.Errorf("CellByIndex() = %s, want AB3", got)
	}
	if got := Cell("C", 10); got != "C10" {
		t.Errorf("Cell() = %s, want C10", got)
	}
}

func infinity() float64 {
	return math.Inf(1)
}
