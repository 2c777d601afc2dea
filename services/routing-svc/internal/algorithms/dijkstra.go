package algorithms

import (
	"container/heap"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// =============================================================================
// Dijkstra's Algorithm
// =============================================================================
//
// Dijkstra's algorithm finds the shortest paths from a single source vertex to
// all other vertices in a graph with non-negative edge weights.
//
// Time Complexity: O((V + E) log V) with binary heap
// Space Complexity: O(V)
//
// Negative weights:
//   - Dijkstra fails fast with a NEGATIVE_WEIGHT error as soon as relaxation
//     observes a negative edge. Only edges reachable from the source are
//     inspected, so a negative edge elsewhere in the graph is not an error.
//   - DijkstraWithFallback pre-scans the graph and runs Bellman-Ford instead
//     when a negative edge is present.
//
// References:
//   - Dijkstra, E. W. (1959). "A note on two problems in connexion with graphs"
// =============================================================================

// ShortestPathResult contains single-source distances and predecessors.
type ShortestPathResult struct {
	// Source is the vertex the search started from.
	Source int

	// Distances holds the shortest distance to each vertex.
	// Unreachable vertices have distance +Inf; Distances[Source] is always 0.
	Distances []float64

	// Parent holds each vertex's predecessor on the shortest path.
	// The source and unreachable vertices have parent domain.NoVertex.
	Parent []int

	// UsedBellmanFord is set when DijkstraWithFallback delegated to Bellman-Ford.
	UsedBellmanFord bool
}

// PathTo reconstructs the shortest path from the source to target.
// Returns nil when target is unreachable or out of range.
func (r *ShortestPathResult) PathTo(target int) []int {
	return domain.ReconstructPath(r.Parent, r.Source, target)
}

// DistanceTo returns the distance to target, or +Inf when it is out of range.
func (r *ShortestPathResult) DistanceTo(target int) float64 {
	if target < 0 || target >= len(r.Distances) {
		return domain.Infinity
	}
	return r.Distances[target]
}

func newShortestPathResult(n, source int) *ShortestPathResult {
	dist := make([]float64, n)
	parent := make([]int, n)
	for i := range dist {
		dist[i] = domain.Infinity
		parent[i] = domain.NoVertex
	}
	dist[source] = 0
	return &ShortestPathResult{Source: source, Distances: dist, Parent: parent}
}

// Dijkstra executes Dijkstra's algorithm from source.
//
// Returns:
//   - *ShortestPathResult with distances and parent pointers
//   - OUT_OF_RANGE error when source is not a vertex
//   - NEGATIVE_WEIGHT error when a reachable negative edge is relaxed
func Dijkstra(g *domain.Graph, source int) (*ShortestPathResult, error) {
	if err := g.CheckVertex(source); err != nil {
		return nil, err
	}
	return DijkstraAdjacency(g.Snapshot(), source)
}

// DijkstraAdjacency runs Dijkstra over a prebuilt snapshot. Batch callers
// reuse one snapshot for many sources.
func DijkstraAdjacency(adj *domain.Adjacency, source int) (*ShortestPathResult, error) {
	n := adj.VertexCount()
	if source < 0 || source >= n {
		return nil, apperror.OutOfRange("source", source, n)
	}

	result := newShortestPathResult(n, source)
	dist, parent := result.Distances, result.Parent

	scratch := GetScratchPool()
	visited := scratch.AcquireBools(n)
	defer scratch.ReleaseBools(visited)
	pq := scratch.acquireQueue()
	defer scratch.releaseQueue(pq)

	heap.Push(pq, queueItem{vertex: source, priority: 0})

	for pq.Len() > 0 {
		current := heap.Pop(pq).(queueItem)
		u := current.vertex

		// Skip vertices already finalized with a better distance
		if (*visited)[u] {
			continue
		}
		(*visited)[u] = true

		targets, weights := adj.Row(u)
		for i, v := range targets {
			w := weights[i]
			if w < 0 {
				return nil, apperror.NegativeWeight(u, v, w)
			}
			if (*visited)[v] {
				continue
			}

			if newDist := dist[u] + w; newDist < dist[v] {
				dist[v] = newDist
				parent[v] = u
				heap.Push(pq, queueItem{vertex: v, priority: newDist})
			}
		}
	}

	return result, nil
}

// DijkstraWithFallback explicitly checks for negative weights before running Dijkstra.
// If negative weights exist, it uses Bellman-Ford instead and sets UsedBellmanFord.
//
// A negative cycle reachable from source makes shortest distances undefined;
// in that case the NEGATIVE_CYCLE error is returned.
func DijkstraWithFallback(g *domain.Graph, source int) (*ShortestPathResult, error) {
	if err := g.CheckVertex(source); err != nil {
		return nil, err
	}

	if !g.HasNegativeWeights() {
		return DijkstraAdjacency(g.Snapshot(), source)
	}

	bf, err := BellmanFord(g, source)
	if err != nil {
		return nil, err
	}
	if bf.HasNegativeCycle {
		return nil, apperror.New(apperror.CodeNegativeCycle, "negative cycle reachable from source").
			WithDetails("source", source)
	}

	return &ShortestPathResult{
		Source:          source,
		Distances:       bf.Distances,
		Parent:          bf.Parent,
		UsedBellmanFord: true,
	}, nil
}

// DijkstraPath returns the shortest path and its cost from source to target.
// An unreachable target yields an empty path and +Inf cost without error.
func DijkstraPath(g *domain.Graph, source, target int) ([]int, float64, error) {
	if err := g.CheckVertex(target); err != nil {
		return nil, domain.Infinity, apperror.OutOfRange("target", target, g.VertexCount())
	}
	result, err := Dijkstra(g, source)
	if err != nil {
		return nil, domain.Infinity, err
	}
	return result.PathTo(target), result.Distances[target], nil
}
