package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/pkg/logger"
	"routing/services/routing-svc/internal/algorithms"
	"routing/services/routing-svc/internal/engine"
	"routing/services/routing-svc/internal/loader"
	"routing/services/routing-svc/internal/report"
)

// Шаги, которые можно перечислить во флаге -run
const (
	stepStats         = "stats"
	stepDijkstra      = "dijkstra"
	stepAStar         = "astar"
	stepPath          = "path"
	stepBellmanFord   = "bellman-ford"
	stepFloyd         = "floyd"
	stepFloydParallel = "floyd-parallel"
	stepBitset        = "bitset"
	stepCycle         = "cycle"
)

var allSteps = []string{
	stepStats, stepDijkstra, stepAStar, stepPath, stepBellmanFord,
	stepFloyd, stepFloydParallel, stepBitset, stepCycle,
}

// maxPrintedVertices матрицы больше этого размера в stdout не печатаются
const maxPrintedVertices = 12

// parseSteps разбирает список шагов через запятую. "all" раскрывается во все шаги.
func parseSteps(s string) ([]string, error) {
	known := make(map[string]bool, len(allSteps))
	for _, step := range allSteps {
		known[step] = true
	}

	var steps []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		step := strings.ToLower(strings.TrimSpace(part))
		switch {
		case step == "":
			continue
		case step == "all":
			return append([]string(nil), allSteps...), nil
		case !known[step]:
			return nil, apperror.Newf(apperror.CodeInvalidArgument, "unknown step %q, expected one of %s or all", step, strings.Join(allSteps, ", "))
		case !seen[step]:
			seen[step] = true
			steps = append(steps, step)
		}
	}
	if len(steps) == 0 {
		return nil, apperror.New(apperror.CodeInvalidArgument, "no steps to run")
	}
	return steps, nil
}

// runner выполняет шаги над движком, печатает результаты и собирает данные отчёта
type runner struct {
	eng     *engine.Engine
	out     io.Writer
	source  int
	target  int
	threads int

	data *report.ReportData
	// path последний найденный путь, подсвечивается в DOT
	path []int
}

func newRunner(eng *engine.Engine, out io.Writer, source, target, threads int) *runner {
	return &runner{
		eng:     eng,
		out:     out,
		source:  source,
		target:  target,
		threads: threads,
		data:    &report.ReportData{},
	}
}

// Run выполняет шаги по порядку. Ошибка шага печатается и не прерывает остальные,
// кроме отмены контекста.
func (r *runner) Run(ctx context.Context, steps []string) error {
	var result *multierror.Error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := r.step(ctx, step)
		logger.Duration(step, start, "failed", err != nil)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logger.WithOperation(step).Warn("Step failed", "code", apperror.Code(err), "error", err)
			fmt.Fprintf(r.out, "%s: error: %v\n", step, err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", step, err))
		}
	}
	return result.ErrorOrNil()
}

func (r *runner) step(ctx context.Context, step string) error {
	switch step {
	case stepStats:
		return r.stats()
	case stepDijkstra:
		return r.dijkstra(ctx)
	case stepAStar:
		return r.astar(ctx)
	case stepPath:
		return r.shortestPath(ctx)
	case stepBellmanFord:
		return r.bellmanFord(ctx)
	case stepFloyd:
		m, err := r.eng.FloydWarshall(ctx)
		if err != nil {
			return err
		}
		r.printMatrix("floyd-warshall", m)
		return nil
	case stepFloydParallel:
		m, err := r.eng.FloydWarshallParallel(ctx, r.threads)
		if err != nil {
			return err
		}
		r.printMatrix("floyd-warshall parallel", m)
		return nil
	case stepBitset:
		return r.bitset(ctx)
	case stepCycle:
		return r.cycle(ctx)
	default:
		return apperror.Newf(apperror.CodeInvalidArgument, "unknown step %q", step)
	}
}

func (r *runner) stats() error {
	s := r.eng.GetStats()
	r.data.Stats = s
	fmt.Fprintf(r.out, "graph: %d vertices, %d edges, avg degree %.3f, max degree %d, %d components, connected=%t, negative edges=%d\n",
		s.VertexCount, s.EdgeCount, s.AvgDegree, s.MaxDegree, s.ConnectedComponents, s.IsConnected, s.NegativeEdges)
	return nil
}

func (r *runner) dijkstra(ctx context.Context) error {
	dist, err := r.eng.Dijkstra(ctx, r.source)
	if err != nil {
		return err
	}
	r.setMatrixRow(r.source, dist)
	fmt.Fprintf(r.out, "dijkstra from %d: %s\n", r.source, formatVector(dist))
	return nil
}

func (r *runner) astar(ctx context.Context) error {
	path, err := r.eng.AStar(ctx, r.source, r.target, algorithms.ZeroHeuristic)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		fmt.Fprintf(r.out, "astar %d -> %d: unreachable\n", r.source, r.target)
		return nil
	}
	r.path = path
	fmt.Fprintf(r.out, "astar %d -> %d: %s\n", r.source, r.target, formatPath(path))
	return nil
}

func (r *runner) shortestPath(ctx context.Context) error {
	path, cost, err := r.eng.ShortestPath(ctx, r.source, r.target)
	if err != nil {
		return err
	}
	r.data.Paths = append(r.data.Paths, report.PathResult{From: r.source, To: r.target, Path: path, Cost: cost})
	if len(path) == 0 {
		fmt.Fprintf(r.out, "path %d -> %d: unreachable\n", r.source, r.target)
		return nil
	}
	r.path = path
	fmt.Fprintf(r.out, "path %d -> %d: %s (cost %s)\n", r.source, r.target, formatPath(path), formatDistance(cost))
	return nil
}

func (r *runner) bellmanFord(ctx context.Context) error {
	res, err := r.eng.BellmanFord(ctx, r.source)
	if err != nil {
		return err
	}
	if res.HasNegativeCycle {
		fmt.Fprintf(r.out, "bellman-ford from %d: negative cycle reachable\n", r.source)
		return nil
	}
	r.setMatrixRow(r.source, res.Distances)
	fmt.Fprintf(r.out, "bellman-ford from %d: %s\n", r.source, formatVector(res.Distances))
	return nil
}

func (r *runner) bitset(ctx context.Context) error {
	reach, err := r.eng.FloydWarshallBitset(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "reachability:\n")
	for i := range reach {
		if i >= maxPrintedVertices {
			fmt.Fprintf(r.out, "  ... %d more rows\n", len(reach)-i)
			break
		}
		fmt.Fprintf(r.out, "  %d reaches %d vertices\n", i, reach.Count(i))
	}
	return nil
}

func (r *runner) cycle(ctx context.Context) error {
	cycle := r.eng.GetNegativeCycle(ctx)
	if len(cycle) == 0 {
		fmt.Fprintf(r.out, "negative cycle: none\n")
		return nil
	}
	r.data.NegativeCycle = cycle
	fmt.Fprintf(r.out, "negative cycle: %s -> %d\n", formatPath(cycle), cycle[0])
	return nil
}

// setMatrixRow добавляет вектор расстояний в отчёт, если полная матрица ещё не посчитана
func (r *runner) setMatrixRow(source int, dist []float64) {
	if len(r.data.Matrix) > 0 && r.data.RowLabels == nil {
		return
	}
	for i, label := range r.data.RowLabels {
		if label == source {
			r.data.Matrix[i] = dist
			return
		}
	}
	r.data.Matrix = append(r.data.Matrix, dist)
	r.data.RowLabels = append(r.data.RowLabels, source)
}

func (r *runner) printMatrix(title string, m algorithms.DistanceMatrix) {
	r.data.Matrix = m
	r.data.RowLabels = nil

	if len(m) > maxPrintedVertices {
		fmt.Fprintf(r.out, "%s: %dx%d matrix computed\n", title, len(m), len(m))
		return
	}
	fmt.Fprintf(r.out, "%s:\n", title)
	for i, row := range m {
		fmt.Fprintf(r.out, "  %d: %s\n", i, formatVector(row))
	}
}

// exportDOT пишет граф в DOT, подсвечивая последний найденный путь
func (r *runner) exportDOT(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	g := r.eng.Graph()
	if len(r.path) > 1 {
		err = loader.HighlightPath(f, g, r.path, "red")
	} else {
		err = loader.WriteDOT(f, g)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// exportReport генерирует отчёт в формате, определённом по расширению файла
func (r *runner) exportReport(ctx context.Context, path, graphName string) error {
	format, err := report.FormatFromPath(path)
	if err != nil {
		return err
	}
	gen, err := report.New(format)
	if err != nil {
		return err
	}

	if r.data.Stats == nil {
		r.data.Stats = r.eng.GetStats()
	}
	stats := r.eng.GetPerformanceStats()
	r.data.Profile = &stats
	r.data.GraphName = graphName

	content, err := gen.Generate(ctx, r.data)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return os.WriteFile(path, content, 0o644)
}

func formatVector(dist []float64) string {
	parts := make([]string, len(dist))
	for i, d := range dist {
		parts[i] = formatDistance(d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatDistance(d float64) string {
	if domain.IsInf(d) {
		return "inf"
	}
	return fmt.Sprintf("%g", d)
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " -> ")
}
