package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/pkg/logger"
)

// Option настройка чтения CSV
type Option func(*csvOptions)

type csvOptions struct {
	strict bool
	issues *apperror.ValidationErrors
}

// Strict превращает любую нераспознанную строку в ошибку PARSE_ERROR.
// По умолчанию такие строки пропускаются.
func Strict() Option {
	return func(o *csvOptions) {
		o.strict = true
	}
}

// WithIssues собирает пропущенные строки в issues как предупреждения PARSE_ERROR
// с номером строки в Details
func WithIssues(issues *apperror.ValidationErrors) Option {
	return func(o *csvOptions) {
		o.issues = issues
	}
}

// ReadCSV читает рёбра "from to weight", по одному на строку. Поля разделяются
// пробелами, табуляцией или запятыми. Пустые строки и строки с '#' игнорируются.
func ReadCSV(r io.Reader, opts ...Option) (*domain.Graph, error) {
	var o csvOptions
	for _, opt := range opts {
		opt(&o)
	}
	// без внешнего сборщика о пропущенных строках сообщает сам ReadCSV
	report := o.issues == nil
	if report {
		o.issues = apperror.NewValidationErrors()
	}

	g := domain.NewGraph(0)
	scanner := bufio.NewScanner(r)

	lineNo, skipped := 0, len(o.issues.Warnings)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		from, to, weight, err := parseEdgeLine(line)
		if err == nil {
			err = addEdge(g, from, to, weight)
		}
		if err != nil {
			issue := apperror.Wrap(err, apperror.CodeParseError, fmt.Sprintf("line %d: %v", lineNo, err)).
				WithDetails("line", lineNo)
			if o.strict {
				return nil, issue
			}
			o.issues.Add(issue.WithSeverity(apperror.SeverityWarning))
			logger.Log.Debug("Skipping edge line", "line", lineNo, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "read csv")
	}

	if skipped = len(o.issues.Warnings) - skipped; report && skipped > 0 {
		logger.Log.Warn("Skipped malformed edge lines", "count", skipped)
	}
	return g, nil
}

func parseEdgeLine(line string) (from, to int, weight float64, err error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	if from, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("from: %w", err)
	}
	if to, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("to: %w", err)
	}
	if weight, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return 0, 0, 0, fmt.Errorf("weight: %w", err)
	}
	return from, to, weight, nil
}

// WriteCSV пишет рёбра графа в формате, который читает ReadCSV
func WriteCSV(w io.Writer, g *domain.Graph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.Edges() {
		if _, err := fmt.Fprintf(bw, "%d %d %s\n", e.From, e.To, strconv.FormatFloat(e.Weight, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
