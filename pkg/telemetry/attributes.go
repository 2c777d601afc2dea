package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphVertices = "graph.vertices"
	AttrGraphEdges    = "graph.edges"
	AttrGraphVersion  = "graph.version"

	// Алгоритм
	AttrAlgorithm = "algorithm.name"
	AttrSource    = "algorithm.source"
	AttrTarget    = "algorithm.target"
	AttrWorkers   = "algorithm.workers"
	AttrPathLen   = "algorithm.path_length"
	AttrDistance  = "algorithm.distance"
	AttrCycleLen  = "algorithm.cycle_length"

	// Кэш
	AttrCacheKind = "cache.kind"
	AttrCacheHit  = "cache.hit"

	// Профилирование
	AttrOperation   = "profile.operation"
	AttrMemoryBytes = "profile.memory_bytes"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(vertices, edges int, version uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphVertices, vertices),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int64(AttrGraphVersion, int64(version)),
	}
}

// QueryAttributes возвращает атрибуты запроса кратчайшего пути.
// target < 0 означает запрос от одного источника ко всем вершинам.
func QueryAttributes(algorithm string, source, target int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.Int(AttrSource, source),
	}
	if target >= 0 {
		attrs = append(attrs, attribute.Int(AttrTarget, target))
	}
	return attrs
}

// CacheAttributes возвращает атрибуты обращения к кэшу
func CacheAttributes(kind string, hit bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheKind, kind),
		attribute.Bool(AttrCacheHit, hit),
	}
}
