package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRetention - время жизни записи кэша расстояний
const DefaultRetention = 5 * time.Minute

const keyPrefix = "routing"

// Виды записей
const (
	kindDistance = "dist"
	kindPath     = "path"
	kindVector   = "vec"
)

// DistanceCache кэширует расстояния, пути и векторы расстояний от источника.
//
// Ключ записи: routing:<namespace>:<kind>:<graphVersion>:<from>[:<to>].
// Версия графа меняется при каждой мутации, поэтому записи старой версии
// никогда не отдаются; они исчезают по TTL бэкенда или через Cleanup.
//
// Выключенный кэш ничего не хранит и на любой Get отвечает промахом.
type DistanceCache struct {
	backend   Cache
	namespace string
	retention time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	enabled bool

	hits   atomic.Int64
	misses atomic.Int64
}

// DistanceCacheOption настраивает DistanceCache
type DistanceCacheOption func(*DistanceCache)

// WithRetention задаёт время жизни записей
func WithRetention(d time.Duration) DistanceCacheOption {
	return func(dc *DistanceCache) {
		if d > 0 {
			dc.retention = d
		}
	}
}

// WithNamespace изолирует записи одного движка в общем бэкенде
func WithNamespace(ns string) DistanceCacheOption {
	return func(dc *DistanceCache) {
		if ns != "" {
			dc.namespace = ns
		}
	}
}

// WithEnabled задаёт начальное состояние кэша
func WithEnabled(enabled bool) DistanceCacheOption {
	return func(dc *DistanceCache) {
		dc.enabled = enabled
	}
}

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) DistanceCacheOption {
	return func(dc *DistanceCache) {
		if now != nil {
			dc.now = now
		}
	}
}

// NewDistanceCache создаёт кэш расстояний поверх backend. По умолчанию кэш включён.
func NewDistanceCache(backend Cache, opts ...DistanceCacheOption) *DistanceCache {
	dc := &DistanceCache{
		backend:   backend,
		namespace: "default",
		retention: DefaultRetention,
		now:       time.Now,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(dc)
	}
	return dc
}

// Enabled сообщает, включён ли кэш
func (dc *DistanceCache) Enabled() bool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.enabled
}

// Enable включает или выключает кэш. Выключение очищает все записи.
func (dc *DistanceCache) Enable(ctx context.Context, enabled bool) error {
	dc.mu.Lock()
	dc.enabled = enabled
	dc.mu.Unlock()

	if !enabled {
		return dc.Clear(ctx)
	}
	return nil
}

// Clear удаляет все записи своего namespace
func (dc *DistanceCache) Clear(ctx context.Context) error {
	if _, err := dc.backend.DeleteByPattern(ctx, dc.namespacePattern()); err != nil {
		return fmt.Errorf("clear distance cache: %w", err)
	}
	return nil
}

// Retention возвращает время жизни записей
func (dc *DistanceCache) Retention() time.Duration {
	return dc.retention
}

// Counters возвращает число попаданий и промахов с момента создания
func (dc *DistanceCache) Counters() (hits, misses int64) {
	return dc.hits.Load(), dc.misses.Load()
}

// GetDistance ищет расстояние from -> to для данной версии графа
func (dc *DistanceCache) GetDistance(ctx context.Context, version uint64, from, to int) (float64, bool, error) {
	d, ok, err := load[wireDistance](ctx, dc, dc.key(kindDistance, version, from, to))
	return float64(d), ok, err
}

// SetDistance сохраняет расстояние from -> to
func (dc *DistanceCache) SetDistance(ctx context.Context, version uint64, from, to int, distance float64) error {
	return store(ctx, dc, dc.key(kindDistance, version, from, to), wireDistance(distance))
}

// GetPath ищет путь from -> to вместе со стоимостью
func (dc *DistanceCache) GetPath(ctx context.Context, version uint64, from, to int) ([]int, float64, bool, error) {
	p, ok, err := load[pathEntry](ctx, dc, dc.key(kindPath, version, from, to))
	if !ok || err != nil {
		return nil, 0, ok, err
	}
	return p.Vertices, float64(p.Cost), true, nil
}

// SetPath сохраняет путь from -> to. Пустой путь (недостижимость) тоже кэшируется.
func (dc *DistanceCache) SetPath(ctx context.Context, version uint64, from, to int, path []int, cost float64) error {
	vertices := make([]int, len(path))
	copy(vertices, path)
	return store(ctx, dc, dc.key(kindPath, version, from, to), pathEntry{Vertices: vertices, Cost: wireDistance(cost)})
}

// GetVector ищет вектор расстояний от source
func (dc *DistanceCache) GetVector(ctx context.Context, version uint64, source int) ([]float64, bool, error) {
	v, ok, err := load[[]wireDistance](ctx, dc, dc.key(kindVector, version, source, -1))
	if !ok || err != nil {
		return nil, ok, err
	}
	out := make([]float64, len(v))
	for i, d := range v {
		out[i] = float64(d)
	}
	return out, true, nil
}

// SetVector сохраняет вектор расстояний от source
func (dc *DistanceCache) SetVector(ctx context.Context, version uint64, source int, distances []float64) error {
	v := make([]wireDistance, len(distances))
	for i, d := range distances {
		v[i] = wireDistance(d)
	}
	return store(ctx, dc, dc.key(kindVector, version, source, -1), v)
}

// Cleanup удаляет записи старше retention, а также повреждённые записи.
// Возвращает число удалённых ключей.
func (dc *DistanceCache) Cleanup(ctx context.Context) (int64, error) {
	keys, err := dc.backend.Keys(ctx, dc.namespacePattern())
	if err != nil {
		return 0, fmt.Errorf("list distance cache keys: %w", err)
	}

	cutoff := dc.now().Add(-dc.retention)
	var removed int64
	for _, key := range keys {
		data, err := dc.backend.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}

		var header entryHeader
		if json.Unmarshal(data, &header) == nil && !header.StoredAt.Before(cutoff) {
			continue
		}

		if err := dc.backend.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

func (dc *DistanceCache) key(kind string, version uint64, from, to int) string {
	var b strings.Builder
	b.Grow(48)
	b.WriteString(keyPrefix)
	b.WriteByte(':')
	b.WriteString(dc.namespace)
	b.WriteByte(':')
	b.WriteString(kind)
	b.WriteByte(':')
	b.WriteString(strconv.FormatUint(version, 10))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(from))
	if to >= 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(to))
	}
	return b.String()
}

func (dc *DistanceCache) namespacePattern() string {
	return keyPrefix + ":" + dc.namespace + ":*"
}

// entryHeader - общая часть всех записей, читается при Cleanup
type entryHeader struct {
	StoredAt time.Time `json:"stored_at"`
}

type entry[T any] struct {
	StoredAt time.Time `json:"stored_at"`
	Value    T         `json:"value"`
}

type pathEntry struct {
	Vertices []int        `json:"vertices"`
	Cost     wireDistance `json:"cost"`
}

func load[T any](ctx context.Context, dc *DistanceCache, key string) (T, bool, error) {
	var zero T
	if !dc.Enabled() {
		return zero, false, nil
	}

	data, err := dc.backend.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		dc.misses.Add(1)
		return zero, false, nil
	}
	if err != nil {
		dc.misses.Add(1)
		return zero, false, err
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		// повреждённая запись: удаляем и считаем промахом
		_ = dc.backend.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		dc.misses.Add(1)
		return zero, false, nil
	}

	if dc.now().Sub(e.StoredAt) > dc.retention {
		dc.misses.Add(1)
		return zero, false, nil
	}

	dc.hits.Add(1)
	return e.Value, true, nil
}

func store[T any](ctx context.Context, dc *DistanceCache, key string, value T) error {
	if !dc.Enabled() {
		return nil
	}

	data, err := json.Marshal(entry[T]{StoredAt: dc.now(), Value: value})
	if err != nil {
		return err
	}
	return dc.backend.Set(ctx, key, data, dc.retention)
}

// wireDistance кодирует +Inf как JSON null: encoding/json не умеет бесконечности
type wireDistance float64

func (d wireDistance) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(d), 1) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *wireDistance) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = wireDistance(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = wireDistance(f)
	return nil
}
