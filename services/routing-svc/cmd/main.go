// Package main is the entry point for routing-svc.
//
// routing-svc is a command line runner for the shortest path engine. It loads a
// weighted directed graph from a CSV/JSON file, from PostgreSQL or from a random
// generator, runs the selected algorithms under the profiler, prints the results
// and optionally exports DOT and XLSX/CSV/Markdown/JSON reports.
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command line flags (-workers, -policy, -no-cache)
//  2. Environment variables (prefix: ROUTING_)
//  3. Config files (config.yaml, config/config.yaml, /etc/routing/config.yaml)
//  4. Default values
//
// Key configuration options (environment variable format):
//
//	ROUTING_LOG_LEVEL                     - debug, info, warn, error (default: info)
//	ROUTING_CACHE_DRIVER                  - memory, redis (default: memory)
//	ROUTING_ENGINE_WORKERS                - parallel Floyd-Warshall workers, 0 = GOMAXPROCS
//	ROUTING_ENGINE_CACHE_RETENTION        - distance cache entry lifetime (default: 5m)
//	ROUTING_ENGINE_NEGATIVE_WEIGHT_POLICY - fail, fallback (default: fail)
//	ROUTING_PROFILING_ENABLED             - profile every algorithm run (default: true)
//	ROUTING_DATABASE_ENABLED              - persist graphs and profile runs (default: false)
//	ROUTING_TRACING_ENABLED               - export spans over OTLP gRPC (default: false)
//
// # Usage
//
//	routing-svc -graph roads.csv -run stats,path,cycle -source 0 -target 42
//	routing-svc -random 2000 -edges 20000 -run floyd-parallel -report out.xlsx
//	routing-svc -graph-id 7f1c... -run all -dot graph.dot
//	routing-svc -graph roads.json -save roads -run dijkstra
//
// Exit code is non-zero when the graph cannot be loaded or any step fails. It
// follows the gRPC status code numbers of the first error: 3 for invalid input,
// 11 for an out-of-range vertex, 9 for a negative cycle, 13 otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"routing/migrations"
	"routing/pkg/apperror"
	"routing/pkg/cache"
	"routing/pkg/config"
	"routing/pkg/database"
	"routing/pkg/domain"
	"routing/pkg/logger"
	"routing/pkg/metrics"
	"routing/pkg/telemetry"
	"routing/services/routing-svc/internal/engine"
	"routing/services/routing-svc/internal/loader"
	"routing/services/routing-svc/internal/profiling"
	"routing/services/routing-svc/internal/repository"
)

const serviceName = "routing-svc"

// options флаги командной строки
type options struct {
	graphPath string
	graphID   string
	strict    bool

	randomVertices int
	randomEdges    int
	randomSeed     uint64

	steps   string
	source  int
	target  int
	threads int

	workers int
	policy  string
	noCache bool

	dotPath    string
	reportPath string
	saveName   string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.graphPath, "graph", "", "graph file (.csv, .txt, .edges, .json)")
	fs.StringVar(&opts.graphID, "graph-id", "", "id of a graph stored in PostgreSQL")
	fs.BoolVar(&opts.strict, "strict", false, "fail on malformed CSV lines instead of skipping them")
	fs.IntVar(&opts.randomVertices, "random", 0, "generate a random graph with this many vertices")
	fs.IntVar(&opts.randomEdges, "edges", 0, "edge count for -random (default 4 per vertex)")
	fs.Uint64Var(&opts.randomSeed, "seed", 1, "seed for -random")

	fs.StringVar(&opts.steps, "run", "stats,dijkstra", "comma separated steps: "+strings.Join(allSteps, ",")+" or all")
	fs.IntVar(&opts.source, "source", 0, "source vertex")
	fs.IntVar(&opts.target, "target", -1, "target vertex for path and astar (default: last vertex)")
	fs.IntVar(&opts.threads, "threads", 0, "threads for floyd-parallel (default: engine.workers)")

	fs.IntVar(&opts.workers, "workers", -1, "override engine.workers")
	fs.StringVar(&opts.policy, "policy", "", "override engine.negative_weight_policy (fail, fallback)")
	fs.BoolVar(&opts.noCache, "no-cache", false, "disable the distance cache")

	fs.StringVar(&opts.dotPath, "dot", "", "write the graph in DOT format, highlighting the last path")
	fs.StringVar(&opts.reportPath, "report", "", "write a report (.xlsx, .csv, .md, .json)")
	fs.StringVar(&opts.saveName, "save", "", "store the graph and profile log in PostgreSQL under this name")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	sources := 0
	for _, set := range []bool{opts.graphPath != "", opts.graphID != "", opts.randomVertices > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("exactly one of -graph, -graph-id or -random is required")
	}
	if opts.randomEdges == 0 {
		opts.randomEdges = opts.randomVertices * 4
	}
	return opts, nil
}

// overrides флаги, перекрывающие файл конфигурации и окружение
func (o *options) overrides() map[string]any {
	values := map[string]any{}
	if o.workers >= 0 {
		values["engine.workers"] = o.workers
	}
	if o.policy != "" {
		values["engine.negative_weight_policy"] = o.policy
	}
	if o.noCache {
		values["engine.cache_enabled"] = false
	}
	if o.saveName != "" || o.graphID != "" {
		values["database.enabled"] = true
	}
	return values
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.LoadWithServiceDefaults(serviceName, config.WithOverrides(opts.overrides()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(apperror.ExitCode(err))
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.LogFormat(),
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	logger.Log = logger.WithService(serviceName)
	logger.Info("Starting routing-svc",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, os.Stdout); err != nil {
		logger.Error("routing-svc failed", "code", apperror.Code(err), "error", err)
		stop()
		os.Exit(apperror.ExitCode(err))
	}
}

func run(ctx context.Context, cfg *config.Config, opts *options, out io.Writer) error {
	// =========================================================================
	// Telemetry
	// =========================================================================
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.FromConfig(cfg))
		if err != nil {
			logger.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Info("Telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	// =========================================================================
	// Metrics
	// =========================================================================
	m := metrics.InitMetrics(cfg.Metrics.Namespace, "engine")
	m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
	if err := prometheus.Register(metrics.NewRuntimeCollector(cfg.Metrics.Namespace, "engine")); err != nil {
		logger.Warn("Failed to register runtime collector", "error", err)
	}
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Path)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("Metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("Metrics server started", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
	}

	// =========================================================================
	// Distance cache
	// =========================================================================
	backend, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Warn("Failed to create cache backend, falling back to memory", "driver", cfg.Cache.Driver, "error", err)
		backend = cache.NewMemoryCache(cache.DefaultOptions())
	}
	defer backend.Close()

	// =========================================================================
	// Storage
	// =========================================================================
	var repo repository.GraphRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db.Pool(), &cfg.Database, migrations.PostgresMigrations, "postgres"); err != nil {
			return err
		}
		repo = repository.NewPostgresGraphRepository(db)
	}

	// =========================================================================
	// Graph and engine
	// =========================================================================
	g, graphName, err := loadGraph(ctx, opts, repo)
	if err != nil {
		return err
	}

	// Ключи общего Redis разделяются по содержимому графа: версия у разных графов совпадает
	distances := cache.NewDistanceCache(backend,
		cache.WithNamespace(cfg.App.Name+":"+cache.GraphFingerprint(g)),
		cache.WithRetention(cfg.Engine.CacheRetention),
		cache.WithEnabled(cfg.Engine.CacheEnabled),
	)

	profiler := profiling.New(
		profiling.WithMaxRecords(cfg.Profiling.MaxRecords),
		profiling.WithMetrics(m),
	)

	engineOpts := append(engine.ConfigOptions(cfg),
		engine.WithMetrics(m),
		engine.WithDistanceCache(distances),
		engine.WithProfiler(profiler),
	)
	eng := engine.NewFromGraph(g, engineOpts...)
	defer eng.Close()

	logger.WithGraph(eng.VertexCount(), eng.EdgeCount()).Info("Graph loaded",
		"name", graphName,
		"cache", eng.CachingEnabled(),
	)

	stopCleanup := startCacheCleanup(ctx, eng, cfg.Engine.CleanupInterval)
	defer stopCleanup()

	// =========================================================================
	// Steps
	// =========================================================================
	steps, err := parseSteps(opts.steps)
	if err != nil {
		return err
	}

	target := opts.target
	if target < 0 {
		target = max(eng.VertexCount()-1, 0)
	}

	r := newRunner(eng, out, opts.source, target, opts.threads)
	runErr := r.Run(ctx, steps)

	if opts.dotPath != "" {
		if err := r.exportDOT(opts.dotPath); err != nil {
			return err
		}
		logger.Info("DOT written", "path", opts.dotPath)
	}
	if opts.reportPath != "" {
		if err := r.exportReport(ctx, opts.reportPath, graphName); err != nil {
			return err
		}
		logger.Info("Report written", "path", opts.reportPath)
	}

	printProfile(out, eng.GetPerformanceStats())
	hits, misses := eng.CacheCounters()
	fmt.Fprintf(out, "cache: %d hits, %d misses\n", hits, misses)

	if opts.saveName != "" && repo != nil {
		if err := saveRun(ctx, repo, opts.saveName, eng); err != nil {
			return err
		}
	}

	return runErr
}

// loadGraph загружает граф из источника, указанного флагами
func loadGraph(ctx context.Context, opts *options, repo repository.GraphRepository) (*domain.Graph, string, error) {
	switch {
	case opts.graphPath != "":
		issues := apperror.NewValidationErrors()
		loadOpts := []loader.Option{loader.WithIssues(issues)}
		if opts.strict {
			loadOpts = append(loadOpts, loader.Strict())
		}
		g, err := loader.LoadFile(opts.graphPath, loadOpts...)
		if err != nil {
			return nil, "", err
		}
		if issues.HasWarnings() {
			logger.Warn("Skipped malformed edge lines",
				"path", opts.graphPath,
				"count", len(issues.Warnings),
				"first", issues.Warnings[0].Message,
			)
		}
		name := strings.TrimSuffix(filepath.Base(opts.graphPath), filepath.Ext(opts.graphPath))
		return g, name, nil

	case opts.graphID != "":
		if repo == nil {
			return nil, "", errors.New("-graph-id requires database.enabled")
		}
		g, rec, err := repo.LoadGraph(ctx, opts.graphID)
		if err != nil {
			return nil, "", err
		}
		return g, rec.Name, nil

	default:
		spec := loader.DefaultRandomSpec(opts.randomVertices, opts.randomEdges)
		spec.Seed = opts.randomSeed
		g, err := loader.Random(spec)
		if err != nil {
			return nil, "", err
		}
		return g, fmt.Sprintf("random-%d-%d-%d", opts.randomVertices, opts.randomEdges, opts.randomSeed), nil
	}
}

// startCacheCleanup периодически удаляет записи кэша старше retention
func startCacheCleanup(ctx context.Context, eng *engine.Engine, interval time.Duration) func() {
	if interval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := eng.CleanupCache(ctx)
				if err != nil {
					logger.Warn("Cache cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					logger.Debug("Cache cleanup", "removed", removed)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// saveRun сохраняет граф (или находит уже сохранённый по отпечатку) и журнал профилирования
func saveRun(ctx context.Context, repo repository.GraphRepository, name string, eng *engine.Engine) error {
	g := eng.Graph()

	rec, err := repo.FindByFingerprint(ctx, cache.GraphFingerprint(g))
	if errors.Is(err, repository.ErrGraphNotFound) {
		rec, err = repo.SaveGraph(ctx, name, g)
	}
	if err != nil {
		return err
	}

	records := eng.GetPerformanceStats().Records
	n, err := repo.SaveProfileRuns(ctx, rec.ID, records)
	if err != nil {
		return err
	}
	logger.Info("Run saved", "graph_id", rec.ID, "profile_runs", n)
	return nil
}

func printProfile(out io.Writer, stats profiling.PerformanceStats) {
	if stats.OperationCount == 0 {
		return
	}
	fmt.Fprintf(out, "profile: %d operations, total %s, average %s, peak memory %d B, average memory %d B\n",
		stats.OperationCount, stats.TotalDuration, stats.AverageDuration, stats.PeakMemory, stats.AverageMemory)
	for _, rec := range stats.Records {
		status := "ok"
		if rec.Failed() {
			status = rec.Err.Error()
		}
		fmt.Fprintf(out, "  %-24s %12s %10d B  %s\n", rec.Name, rec.Duration, rec.MemoryUsed, status)
	}
}
