// Package engine объединяет хранилище графа, набор алгоритмов, кэш расстояний
// и профилировщик в один потокобезопасный фасад.
//
// Дисциплина доступа: один писатель или много читателей. Мутации графа берут
// блокировку на запись, алгоритмы на чтение. Кэш имеет собственную блокировку.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"routing/pkg/cache"
	"routing/pkg/config"
	"routing/pkg/domain"
	"routing/pkg/logger"
	"routing/pkg/metrics"
	"routing/pkg/telemetry"
	"routing/services/routing-svc/internal/algorithms"
	"routing/services/routing-svc/internal/profiling"
)

// NegativeWeightPolicy поведение Дейкстры на графе с отрицательными рёбрами
type NegativeWeightPolicy string

const (
	// PolicyFail возвращает NEGATIVE_WEIGHT
	PolicyFail NegativeWeightPolicy = "fail"
	// PolicyFallback переключается на Беллмана-Форда
	PolicyFallback NegativeWeightPolicy = "fallback"
)

// Engine фасад над графом
type Engine struct {
	mu    sync.RWMutex
	graph *domain.Graph

	distances    *cache.DistanceCache
	ownedBackend cache.Cache
	profiler     *profiling.Profiler
	metrics      *metrics.Metrics

	workers     int
	policy      NegativeWeightPolicy
	autoProfile bool
}

// Option настройка движка
type Option func(*Engine)

// WithWorkers задаёт число воркеров параллельных алгоритмов. 0 = GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 0)
	}
}

// WithNegativeWeightPolicy задаёт политику для отрицательных рёбер
func WithNegativeWeightPolicy(p NegativeWeightPolicy) Option {
	return func(e *Engine) {
		if p == PolicyFail || p == PolicyFallback {
			e.policy = p
		}
	}
}

// WithDistanceCache подключает внешний кэш расстояний
func WithDistanceCache(dc *cache.DistanceCache) Option {
	return func(e *Engine) {
		e.distances = dc
	}
}

// WithMetrics подключает метрики
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithProfiler подключает внешний профилировщик
func WithProfiler(p *profiling.Profiler) Option {
	return func(e *Engine) {
		e.profiler = p
	}
}

// WithAutoProfile профилирует каждый запуск алгоритма
func WithAutoProfile(enabled bool) Option {
	return func(e *Engine) {
		e.autoProfile = enabled
	}
}

// New создаёт движок с графом из vertices вершин
func New(vertices int, opts ...Option) *Engine {
	return NewFromGraph(domain.NewGraph(vertices), opts...)
}

// NewFromGraph создаёт движок над готовым графом. Движок становится владельцем g.
func NewFromGraph(g *domain.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:  g,
		policy: PolicyFail,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.metrics == nil {
		e.metrics = metrics.NewMetrics(nil, "routing", "engine")
	}
	if e.distances == nil {
		e.ownedBackend = cache.NewMemoryCache(cache.DefaultOptions())
		e.distances = cache.NewDistanceCache(e.ownedBackend, cache.WithNamespace(uuid.NewString()))
	}
	if e.profiler == nil {
		e.profiler = profiling.New(profiling.WithMetrics(e.metrics))
	}

	e.recordGraphSize()
	return e
}

// ConfigOptions собирает опции движка из секций engine и profiling
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithWorkers(cfg.Engine.Workers),
		WithNegativeWeightPolicy(NegativeWeightPolicy(cfg.Engine.NegativeWeightPolicy)),
		WithAutoProfile(cfg.Profiling.Enabled),
	}
}

// Close освобождает кэш, созданный самим движком
func (e *Engine) Close() error {
	if e.ownedBackend != nil {
		return e.ownedBackend.Close()
	}
	return nil
}

// ============================================================
// CONSTRUCTION
// ============================================================

// AddVertex добавляет вершину и возвращает её индекс
func (e *Engine) AddVertex() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := e.graph.AddVertex()
	e.recordGraphSize()
	return v
}

// AddEdge добавляет ребро или перезаписывает вес существующего
func (e *Engine) AddEdge(from, to int, weight float64) error {
	return e.mutate(func(g *domain.Graph) error { return g.AddEdge(from, to, weight) })
}

// RemoveEdge удаляет ребро
func (e *Engine) RemoveEdge(from, to int) error {
	return e.mutate(func(g *domain.Graph) error { return g.RemoveEdge(from, to) })
}

// UpdateEdgeWeight меняет вес существующего ребра
func (e *Engine) UpdateEdgeWeight(from, to int, weight float64) error {
	return e.mutate(func(g *domain.Graph) error { return g.UpdateEdgeWeight(from, to, weight) })
}

// Reserve резервирует память под вершины и рёбра
func (e *Engine) Reserve(vertices, edges int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph.Reserve(vertices, edges)
}

func (e *Engine) mutate(fn func(g *domain.Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.graph); err != nil {
		return err
	}
	e.recordGraphSize()
	return nil
}

// recordGraphSize вызывается под блокировкой
func (e *Engine) recordGraphSize() {
	e.metrics.RecordGraphSize(e.graph.VertexCount(), e.graph.EdgeCount(), e.graph.Version())
}

// ============================================================
// QUERIES
// ============================================================

func (e *Engine) VertexCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.VertexCount()
}

func (e *Engine) EdgeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.EdgeCount()
}

func (e *Engine) HasEdge(from, to int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.HasEdge(from, to)
}

// EdgeWeight возвращает вес ребра, +Inf если ребра нет
func (e *Engine) EdgeWeight(from, to int) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.EdgeWeight(from, to)
}

// Neighbors возвращает копию исходящих рёбер v
func (e *Engine) Neighbors(v int) ([]domain.Edge, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Neighbors(v)
}

// Version возвращает счётчик мутаций графа
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Version()
}

// Graph возвращает независимую копию графа
func (e *Engine) Graph() *domain.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Clone()
}

// GetStats считает статистику полным обходом графа
func (e *Engine) GetStats() *domain.GraphStatistics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.CalculateStatistics(e.graph)
}

// ============================================================
// ALGORITHMS
// ============================================================

// run выполняет алгоритм под блокировкой на чтение, в span, с метриками
// и, если включено, под профилировщиком
func run[T any](ctx context.Context, e *Engine, name string, attrs []attribute.KeyValue, fn func(ctx context.Context, g *domain.Graph) (T, error)) (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	attrs = append(attrs, telemetry.GraphAttributes(e.graph.VertexCount(), e.graph.EdgeCount(), e.graph.Version())...)

	var result T
	exec := func(ctx context.Context) error {
		timer := e.metrics.StartAlgorithm(name)
		var err error
		result, err = telemetry.TraceValue(ctx, "engine."+name, func(ctx context.Context) (T, error) {
			return fn(ctx, e.graph)
		}, attrs...)
		timer.Finish(err)
		return err
	}

	if e.autoProfile {
		err := e.profiler.ProfileOperation(ctx, name, exec)
		return result, err
	}
	err := exec(ctx)
	return result, err
}

func (e *Engine) singleSource(g *domain.Graph, source int) (*algorithms.ShortestPathResult, error) {
	if e.policy == PolicyFallback {
		return algorithms.DijkstraWithFallback(g, source)
	}
	return algorithms.Dijkstra(g, source)
}

// Dijkstra возвращает расстояния от source до всех вершин.
// Результат кэшируется по версии графа.
func (e *Engine) Dijkstra(ctx context.Context, source int) ([]float64, error) {
	return run(ctx, e, "dijkstra", telemetry.QueryAttributes("dijkstra", source, -1),
		func(ctx context.Context, g *domain.Graph) ([]float64, error) {
			if err := g.CheckVertex(source); err != nil {
				return nil, err
			}
			version := g.Version()
			if cached, ok := e.lookupVector(ctx, version, source); ok {
				return cached, nil
			}

			result, err := e.singleSource(g, source)
			if err != nil {
				return nil, err
			}
			e.storeVector(ctx, version, source, result.Distances)
			return result.Distances, nil
		})
}

// AStar ищет путь source -> goal с эвристикой h. nil эвристика равна нулевой.
// Пустой путь означает недостижимость.
func (e *Engine) AStar(ctx context.Context, source, goal int, h algorithms.Heuristic) ([]int, error) {
	return run(ctx, e, "astar", telemetry.QueryAttributes("astar", source, goal),
		func(ctx context.Context, g *domain.Graph) ([]int, error) {
			path, err := algorithms.AStar(g, source, goal, h)
			if err == nil {
				telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrPathLen, len(path)))
			}
			return path, err
		})
}

// BellmanFordResult расстояния и флаг отрицательного цикла, достижимого из источника
type BellmanFordResult struct {
	Distances        []float64
	HasNegativeCycle bool
}

// BellmanFord считает расстояния от source на графе со знаковыми весами
func (e *Engine) BellmanFord(ctx context.Context, source int) (*BellmanFordResult, error) {
	return run(ctx, e, "bellman_ford", telemetry.QueryAttributes("bellman_ford", source, -1),
		func(ctx context.Context, g *domain.Graph) (*BellmanFordResult, error) {
			result, err := algorithms.BellmanFord(g, source)
			if err != nil {
				return nil, err
			}
			return &BellmanFordResult{
				Distances:        result.Distances,
				HasNegativeCycle: result.HasNegativeCycle,
			}, nil
		})
}

// FloydWarshall считает матрицу всех пар последовательно
func (e *Engine) FloydWarshall(ctx context.Context) (algorithms.DistanceMatrix, error) {
	return run(ctx, e, "floyd_warshall", nil,
		func(_ context.Context, g *domain.Graph) (algorithms.DistanceMatrix, error) {
			return algorithms.FloydWarshall(g), nil
		})
}

// FloydWarshallParallel считает матрицу всех пар пулом из threads воркеров.
// threads <= 0 берёт значение из настроек движка, затем GOMAXPROCS.
func (e *Engine) FloydWarshallParallel(ctx context.Context, threads int) (algorithms.DistanceMatrix, error) {
	if threads <= 0 {
		threads = e.workers
	}
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	return run(ctx, e, "floyd_warshall_parallel", []attribute.KeyValue{attribute.Int(telemetry.AttrWorkers, threads)},
		func(ctx context.Context, g *domain.Graph) (algorithms.DistanceMatrix, error) {
			// воркеров не больше, чем строк матрицы
			e.metrics.ParallelWorkers.Set(float64(min(threads, g.VertexCount())))
			return algorithms.FloydWarshallParallel(ctx, g, threads)
		})
}

// FloydWarshallBitset считает транзитивное замыкание без весов
func (e *Engine) FloydWarshallBitset(ctx context.Context) (algorithms.ReachabilityMatrix, error) {
	return run(ctx, e, "floyd_warshall_bitset", nil,
		func(_ context.Context, g *domain.Graph) (algorithms.ReachabilityMatrix, error) {
			return algorithms.FloydWarshallBitset(g), nil
		})
}

// HasNegativeCycle проверяет наличие отрицательного цикла, достижимого из вершины 0.
// Цикл, недостижимый из 0, здесь не виден, хотя GetNegativeCycle его вернёт;
// для проверки всего графа есть HasAnyNegativeCycle.
func (e *Engine) HasNegativeCycle(ctx context.Context) bool {
	found, _ := run(ctx, e, "has_negative_cycle", nil,
		func(_ context.Context, g *domain.Graph) (bool, error) {
			return algorithms.HasNegativeCycle(g), nil
		})
	return found
}

// HasAnyNegativeCycle проверяет наличие отрицательного цикла в любой части графа
func (e *Engine) HasAnyNegativeCycle(ctx context.Context) bool {
	found, _ := run(ctx, e, "has_any_negative_cycle", nil,
		func(_ context.Context, g *domain.Graph) (bool, error) {
			return algorithms.HasAnyNegativeCycle(g), nil
		})
	return found
}

// GetNegativeCycle возвращает вершины одного отрицательного цикла, nil если циклов нет.
// Ищет по всему графу, как HasAnyNegativeCycle, поэтому может вернуть цикл
// при HasNegativeCycle() == false, если цикл недостижим из вершины 0.
func (e *Engine) GetNegativeCycle(ctx context.Context) []int {
	cycle, _ := run(ctx, e, "negative_cycle", nil,
		func(ctx context.Context, g *domain.Graph) ([]int, error) {
			cycle := algorithms.FindNegativeCycle(g)
			if len(cycle) > 0 {
				e.metrics.NegativeCyclesFound.Inc()
				telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrCycleLen, len(cycle)))
			}
			return cycle, nil
		})
	return cycle
}

// ShortestPath возвращает кратчайший путь from -> to и его стоимость.
// Недостижимость: пустой путь и +Inf без ошибки.
func (e *Engine) ShortestPath(ctx context.Context, from, to int) ([]int, float64, error) {
	type answer struct {
		path []int
		cost float64
	}

	res, err := run(ctx, e, "shortest_path", telemetry.QueryAttributes("shortest_path", from, to),
		func(ctx context.Context, g *domain.Graph) (answer, error) {
			if err := g.CheckVertex(from); err != nil {
				return answer{cost: domain.Infinity}, err
			}
			if err := g.CheckVertex(to); err != nil {
				return answer{cost: domain.Infinity}, err
			}

			version := g.Version()
			if path, cost, ok := e.lookupPath(ctx, version, from, to); ok {
				return answer{path, cost}, nil
			}

			result, err := e.singleSource(g, from)
			if err != nil {
				return answer{cost: domain.Infinity}, err
			}
			path, cost := result.PathTo(to), result.Distances[to]

			e.storeVector(ctx, version, from, result.Distances)
			e.storePath(ctx, version, from, to, path, cost)
			return answer{path, cost}, nil
		})
	return res.path, res.cost, err
}

// Distance возвращает кратчайшее расстояние from -> to, +Inf если недостижимо
func (e *Engine) Distance(ctx context.Context, from, to int) (float64, error) {
	return run(ctx, e, "distance", telemetry.QueryAttributes("distance", from, to),
		func(ctx context.Context, g *domain.Graph) (float64, error) {
			if err := g.CheckVertex(from); err != nil {
				return domain.Infinity, err
			}
			if err := g.CheckVertex(to); err != nil {
				return domain.Infinity, err
			}

			version := g.Version()
			if d, ok := e.lookupDistance(ctx, version, from, to); ok {
				return d, nil
			}

			vector, ok := e.lookupVector(ctx, version, from)
			if !ok {
				result, err := e.singleSource(g, from)
				if err != nil {
					return domain.Infinity, err
				}
				vector = result.Distances
				e.storeVector(ctx, version, from, vector)
			}

			e.storeDistance(ctx, version, from, to, vector[to])
			return vector[to], nil
		})
}

// DistanceMatrixFromSources считает строки матрицы только для sources.
// Поиски идут параллельно; первая ошибка отменяет остальные.
func (e *Engine) DistanceMatrixFromSources(ctx context.Context, sources []int) ([][]float64, error) {
	return run(ctx, e, "distance_matrix", []attribute.KeyValue{attribute.Int("algorithm.sources", len(sources))},
		func(ctx context.Context, g *domain.Graph) ([][]float64, error) {
			for _, s := range sources {
				if err := g.CheckVertex(s); err != nil {
					return nil, err
				}
			}

			version := g.Version()
			rows := make([][]float64, len(sources))

			eg, egCtx := errgroup.WithContext(ctx)
			if e.workers > 0 {
				eg.SetLimit(e.workers)
			}
			for i, source := range sources {
				eg.Go(func() error {
					if err := egCtx.Err(); err != nil {
						return err
					}
					if cached, ok := e.lookupVector(egCtx, version, source); ok {
						rows[i] = cached
						return nil
					}
					result, err := e.singleSource(g, source)
					if err != nil {
						return fmt.Errorf("source %d: %w", source, err)
					}
					e.storeVector(egCtx, version, source, result.Distances)
					rows[i] = result.Distances
					return nil
				})
			}

			if err := eg.Wait(); err != nil {
				return nil, err
			}
			return rows, nil
		})
}

// ============================================================
// CACHE CONTROLS
// ============================================================

// EnableCaching включает или выключает кэш. Выключение очищает записи.
func (e *Engine) EnableCaching(ctx context.Context, enabled bool) error {
	return e.distances.Enable(ctx, enabled)
}

// CachingEnabled сообщает, включён ли кэш
func (e *Engine) CachingEnabled() bool {
	return e.distances.Enabled()
}

// ClearCache удаляет все записи кэша движка
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.distances.Clear(ctx)
}

// CleanupCache удаляет записи старше срока хранения
func (e *Engine) CleanupCache(ctx context.Context) (int64, error) {
	removed, err := e.distances.Cleanup(ctx)
	if removed > 0 {
		e.metrics.CacheEntriesSwept.Add(float64(removed))
	}
	return removed, err
}

// CacheCounters возвращает попадания и промахи кэша
func (e *Engine) CacheCounters() (hits, misses int64) {
	return e.distances.Counters()
}

// Ошибки кэша не влияют на результат: запрос считается промахом, запись пропускается.

func (e *Engine) lookupVector(ctx context.Context, version uint64, source int) ([]float64, bool) {
	v, ok, err := e.distances.GetVector(ctx, version, source)
	return v, e.observeLookup(ctx, "vector", ok, err)
}

func (e *Engine) lookupPath(ctx context.Context, version uint64, from, to int) ([]int, float64, bool) {
	path, cost, ok, err := e.distances.GetPath(ctx, version, from, to)
	if len(path) == 0 {
		path = nil
	}
	return path, cost, e.observeLookup(ctx, "path", ok, err)
}

func (e *Engine) lookupDistance(ctx context.Context, version uint64, from, to int) (float64, bool) {
	d, ok, err := e.distances.GetDistance(ctx, version, from, to)
	return d, e.observeLookup(ctx, "distance", ok, err)
}

func (e *Engine) observeLookup(ctx context.Context, kind string, ok bool, err error) bool {
	if err != nil {
		logger.Log.Warn("Distance cache lookup failed", "kind", kind, "error", err)
		ok = false
	}
	if e.distances.Enabled() {
		e.metrics.RecordCacheLookup(kind, ok)
		telemetry.AddEvent(ctx, "cache.lookup", telemetry.CacheAttributes(kind, ok)...)
	}
	return ok
}

func (e *Engine) storeVector(ctx context.Context, version uint64, source int, distances []float64) {
	e.logStoreError("vector", e.distances.SetVector(ctx, version, source, distances))
}

func (e *Engine) storePath(ctx context.Context, version uint64, from, to int, path []int, cost float64) {
	e.logStoreError("path", e.distances.SetPath(ctx, version, from, to, path, cost))
}

func (e *Engine) storeDistance(ctx context.Context, version uint64, from, to int, d float64) {
	e.logStoreError("distance", e.distances.SetDistance(ctx, version, from, to, d))
}

func (e *Engine) logStoreError(kind string, err error) {
	if err != nil {
		logger.Log.Warn("Distance cache store failed", "kind", kind, "error", err)
	}
}

// ============================================================
// PROFILING
// ============================================================

// ProfileOperation выполняет fn под профилировщиком движка
func (e *Engine) ProfileOperation(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return e.profiler.ProfileOperation(ctx, name, fn)
}

// GetPerformanceStats возвращает журнал профилирования и итоги
func (e *Engine) GetPerformanceStats() profiling.PerformanceStats {
	return e.profiler.Stats()
}

// ResetPerformanceStats очищает журнал профилирования
func (e *Engine) ResetPerformanceStats() {
	e.profiler.Reset()
}
