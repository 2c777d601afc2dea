package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик движка маршрутизации
type Metrics struct {
	// Алгоритмы
	AlgorithmRunsTotal  *prometheus.CounterVec
	AlgorithmDuration   *prometheus.HistogramVec
	AlgorithmsInFlight  prometheus.Gauge
	NegativeCyclesFound prometheus.Counter
	ParallelWorkers     prometheus.Gauge

	// Кэш расстояний
	CacheLookupsTotal *prometheus.CounterVec
	CacheEntriesSwept prometheus.Counter

	// Граф
	GraphVertices prometheus.Gauge
	GraphEdges    prometheus.Gauge
	GraphVersion  prometheus.Gauge

	// Профилировщик
	OperationDuration *prometheus.HistogramVec
	OperationMemory   *prometheus.HistogramVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

// InitMetrics регистрирует метрики в prometheus.DefaultRegisterer
func InitMetrics(namespace, subsystem string) *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewMetrics регистрирует метрики в переданном реестре.
// nil reg создаёт метрики без регистрации.
func NewMetrics(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AlgorithmRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "algorithm_runs_total",
				Help:      "Total number of algorithm runs",
			},
			[]string{"algorithm", "status"},
		),

		AlgorithmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "algorithm_duration_seconds",
				Help:      "Duration of algorithm runs",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
			},
			[]string{"algorithm"},
		),

		AlgorithmsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "algorithms_in_flight",
				Help:      "Number of algorithm runs currently executing",
			},
		),

		NegativeCyclesFound: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "negative_cycles_found_total",
				Help:      "Number of negative cycle checks that found a cycle",
			},
		),

		ParallelWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "parallel_workers",
				Help:      "Worker count of the last parallel Floyd-Warshall run",
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "Distance cache lookups by entry kind and result",
			},
			[]string{"kind", "result"},
		),

		CacheEntriesSwept: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_entries_swept_total",
				Help:      "Distance cache entries removed by retention cleanup",
			},
		),

		GraphVertices: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices",
				Help:      "Number of vertices in the engine graph",
			},
		),

		GraphEdges: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges",
				Help:      "Number of edges in the engine graph",
			},
		),

		GraphVersion: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_version",
				Help:      "Mutation counter of the engine graph",
			},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Duration of profiled operations",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"operation"},
		),

		OperationMemory: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_memory_bytes",
				Help:      "Bytes allocated by profiled operations",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
			[]string{"operation"},
		),

		ServiceInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}
}

// RecordAlgorithmRun записывает запуск алгоритма
func (m *Metrics) RecordAlgorithmRun(algorithm string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.AlgorithmRunsTotal.WithLabelValues(algorithm, status).Inc()
	m.AlgorithmDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordCacheLookup записывает попадание или промах кэша
func (m *Metrics) RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordGraphSize обновляет размер графа
func (m *Metrics) RecordGraphSize(vertices, edges int, version uint64) {
	m.GraphVertices.Set(float64(vertices))
	m.GraphEdges.Set(float64(edges))
	m.GraphVersion.Set(float64(version))
}

// RecordOperation записывает профилированную операцию
func (m *Metrics) RecordOperation(operation string, duration time.Duration, memoryBytes uint64) {
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.OperationMemory.WithLabelValues(operation).Observe(float64(memoryBytes))
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer создаёт HTTP сервер метрик с эндпоинтами path и /health
func NewServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
