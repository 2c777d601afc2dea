// Package profiling измеряет длительность и выделенную память операций движка.
// Профилировщик только наблюдает: результат и ошибка операции возвращаются как есть.
package profiling

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"routing/pkg/logger"
	"routing/pkg/metrics"
	"routing/pkg/telemetry"
)

// Record одна запись журнала профилирования
type Record struct {
	Name       string        `json:"name"`
	Duration   time.Duration `json:"duration"`
	MemoryUsed uint64        `json:"memory_used"`
	StartedAt  time.Time     `json:"started_at"`
	Err        error         `json:"-"`
}

// Failed сообщает, завершилась ли операция ошибкой
func (r Record) Failed() bool {
	return r.Err != nil
}

// PerformanceStats журнал и накопленные итоги
type PerformanceStats struct {
	Records         []Record      `json:"records"`
	OperationCount  int           `json:"operation_count"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	PeakMemory      uint64        `json:"peak_memory"`
	AverageMemory   uint64        `json:"average_memory"`
	// Dropped - сколько старых записей вытеснено лимитом MaxRecords
	Dropped int `json:"dropped"`
}

// Option настройка профилировщика
type Option func(*Profiler)

// WithMaxRecords ограничивает журнал последними n записями. 0 = без ограничения.
func WithMaxRecords(n int) Option {
	return func(p *Profiler) {
		p.maxRecords = max(n, 0)
	}
}

// WithMetrics отправляет длительность и память каждой операции в Prometheus
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Profiler) {
		p.metrics = m
	}
}

// WithMemorySampler подменяет источник счётчика выделенной памяти
func WithMemorySampler(sample func() uint64) Option {
	return func(p *Profiler) {
		p.sampleMemory = sample
	}
}

// WithClock подменяет часы (для тестов)
func WithClock(now func() time.Time) Option {
	return func(p *Profiler) {
		p.now = now
	}
}

// Profiler потокобезопасный журнал профилирования
type Profiler struct {
	mu      sync.Mutex
	records []Record
	dropped int

	maxRecords   int
	metrics      *metrics.Metrics
	sampleMemory func() uint64
	now          func() time.Time
}

// New создаёт профилировщик
func New(opts ...Option) *Profiler {
	p := &Profiler{
		sampleMemory: totalAlloc,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// totalAlloc возвращает накопленный объём выделенной кучи.
// TotalAlloc монотонен, поэтому разница не зависит от сборок мусора.
func totalAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.TotalAlloc
}

// ProfileOperation выполняет fn, измеряя время и выделенную память, и дописывает запись в журнал.
// fn получает контекст со span "profile.<name>", вложенные span становятся его потомками.
func (p *Profiler) ProfileOperation(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "profile."+name,
		telemetry.WithAttributes(attribute.String(telemetry.AttrOperation, name)))
	defer span.End()

	memBefore := p.sampleMemory()
	startedAt := p.now()

	err := fn(ctx)

	duration := p.now().Sub(startedAt)
	memAfter := p.sampleMemory()

	var used uint64
	if memAfter > memBefore {
		used = memAfter - memBefore
	}

	p.append(Record{
		Name:       name,
		Duration:   duration,
		MemoryUsed: used,
		StartedAt:  startedAt,
		Err:        err,
	})

	if p.metrics != nil {
		p.metrics.RecordOperation(name, duration, used)
	}

	telemetry.SetAttributes(ctx, attribute.Int64(telemetry.AttrMemoryBytes, int64(used)))
	if err != nil {
		telemetry.SetError(ctx, err)
	}

	logger.Log.Debug("Operation profiled",
		"operation", name,
		"duration", duration,
		"memory_bytes", used,
		"error", err,
	)

	return err
}

func (p *Profiler) append(r Record) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records = append(p.records, r)
	if p.maxRecords > 0 && len(p.records) > p.maxRecords {
		overflow := len(p.records) - p.maxRecords
		p.records = append(p.records[:0:0], p.records[overflow:]...)
		p.dropped += overflow
	}
}

// Stats возвращает копию журнала и итоги по нему
func (p *Profiler) Stats() PerformanceStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := PerformanceStats{
		Records:        append([]Record(nil), p.records...),
		OperationCount: len(p.records),
		Dropped:        p.dropped,
	}
	if len(p.records) == 0 {
		return stats
	}

	var totalMemory uint64
	for _, r := range p.records {
		stats.TotalDuration += r.Duration
		totalMemory += r.MemoryUsed
		stats.PeakMemory = max(stats.PeakMemory, r.MemoryUsed)
	}

	count := len(p.records)
	stats.AverageDuration = stats.TotalDuration / time.Duration(count)
	stats.AverageMemory = totalMemory / uint64(count)

	return stats
}

// Reset очищает журнал
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.records = nil
	p.dropped = 0
}

// ByOperation группирует записи журнала по имени операции
func (s PerformanceStats) ByOperation() map[string][]Record {
	out := make(map[string][]Record)
	for _, r := range s.Records {
		out[r.Name] = append(out[r.Name], r)
	}
	return out
}
