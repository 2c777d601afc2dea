// Package report строит отчёты о прогоне алгоритмов: статистика графа,
// матрица расстояний, найденные пути, отрицательный цикл и журнал профилирования.
package report

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/services/routing-svc/internal/profiling"
)

// Format формат отчёта
type Format string

const (
	FormatExcel    Format = "xlsx"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// PathResult кратчайший путь между двумя вершинами. Пустой Path означает недостижимость.
type PathResult struct {
	From int
	To   int
	Path []int
	Cost float64
}

// ReportData данные для генерации отчёта
type ReportData struct {
	Title       string
	GraphName   string
	Author      string
	GeneratedAt time.Time

	Stats *domain.GraphStatistics

	// Matrix строки матрицы расстояний. RowLabels задаёт вершины-источники строк;
	// nil означает 0..len(Matrix)-1.
	Matrix    [][]float64
	RowLabels []int

	Paths         []PathResult
	NegativeCycle []int
	Profile       *profiling.PerformanceStats
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
}

// New возвращает генератор для формата
func New(format Format) (Generator, error) {
	switch format {
	case FormatExcel:
		return NewExcelGenerator(), nil
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatMarkdown:
		return NewMarkdownGenerator(), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	default:
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "unsupported report format %q", format)
	}
}

// FormatFromPath определяет формат по расширению файла
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "xlsx":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidArgument, "unsupported report extension %q", ext)
	}
}

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct{}

// GetTitle возвращает заголовок отчёта
func (b *BaseGenerator) GetTitle(data *ReportData) string {
	if data.Title != "" {
		return data.Title
	}
	if data.GraphName != "" {
		return "Shortest Path Report: " + data.GraphName
	}
	return "Shortest Path Report"
}

// GetAuthor возвращает автора отчёта
func (b *BaseGenerator) GetAuthor(data *ReportData) string {
	if data.Author != "" {
		return data.Author
	}
	return "Routing Engine"
}

// GeneratedAt возвращает время генерации, по умолчанию текущее
func (b *BaseGenerator) GeneratedAt(data *ReportData) time.Time {
	if data.GeneratedAt.IsZero() {
		return time.Now()
	}
	return data.GeneratedAt
}

// RowLabel возвращает вершину-источник i-й строки матрицы
func (b *BaseGenerator) RowLabel(data *ReportData, i int) int {
	if i < len(data.RowLabels) {
		return data.RowLabels[i]
	}
	return i
}

// FormatDistance форматирует расстояние, +Inf выводится как "inf"
func (b *BaseGenerator) FormatDistance(d float64) string {
	switch {
	case math.IsInf(d, 1):
		return "inf"
	case math.IsInf(d, -1):
		return "-inf"
	default:
		return strconv.FormatFloat(d, 'g', -1, 64)
	}
}

// FormatPath форматирует путь как "0 -> 1 -> 2", пустой путь как "-"
func (b *BaseGenerator) FormatPath(path []int) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " -> ")
}

// FormatDuration форматирует длительность
func (b *BaseGenerator) FormatDuration(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 1000 {
		return fmt.Sprintf("%.3f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatBytes форматирует объём памяти
func (b *BaseGenerator) FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// Cell возвращает адрес ячейки
func Cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// CellByIndex возвращает адрес ячейки по индексам
func CellByIndex(colIndex, rowIndex int) string {
	return Cell(ColName(colIndex), rowIndex)
}
