// Package algorithms provides the shortest-path suite of the routing engine:
// Dijkstra, A*, Bellman-Ford with negative-cycle detection and extraction,
// and Floyd-Warshall in sequential, parallel, and reachability-only variants.
//
// All algorithms read an immutable domain.Adjacency snapshot, iterate edges in
// deterministic order, and report unreachable vertices as +Inf distances or
// empty paths rather than errors.
package algorithms

import (
	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// =============================================================================
// Bellman-Ford Algorithm
// =============================================================================
//
// The Bellman-Ford algorithm computes shortest paths from a single source vertex
// to all other vertices in a weighted graph. Unlike Dijkstra's algorithm, it can
// handle graphs with negative edge weights and detect negative cycles.
//
// Time Complexity: O(V * E)
// Space Complexity: O(V)
//
// Algorithm:
//   1. Initialize distances: dist[source] = 0, dist[v] = ∞ for all v ≠ source
//   2. Repeat V-1 times: relax all edges (stop early when a pass changes nothing)
//   3. Check for negative cycles by attempting one more relaxation
//
// Relaxation never starts from a vertex at +Inf, so unreachable parts of the
// graph (including negative cycles there) do not affect the result.
//
// References:
//   - Bellman, R. (1958). "On a routing problem"
//   - Ford, L.R. (1956). "Network Flow Theory"
// =============================================================================

// BellmanFordResult contains the result of the Bellman-Ford algorithm.
type BellmanFordResult struct {
	// Source is the vertex the search started from.
	Source int

	// Distances holds the shortest distance to each vertex.
	// Unreachable vertices have distance +Inf.
	// If HasNegativeCycle is true, distances on or behind the cycle are not final.
	Distances []float64

	// Parent holds each vertex's predecessor on the shortest path.
	Parent []int

	// HasNegativeCycle indicates whether a negative cycle reachable from
	// Source was detected.
	HasNegativeCycle bool
}

// PathTo reconstructs the path from the source to target.
// Returns nil when target is unreachable.
func (r *BellmanFordResult) PathTo(target int) []int {
	return domain.ReconstructPath(r.Parent, r.Source, target)
}

// BellmanFord executes the Bellman-Ford algorithm from source.
func BellmanFord(g *domain.Graph, source int) (*BellmanFordResult, error) {
	if err := g.CheckVertex(source); err != nil {
		return nil, apperror.OutOfRange("source", source, g.VertexCount())
	}
	return BellmanFordAdjacency(g.Snapshot(), source)
}

// BellmanFordAdjacency runs Bellman-Ford over a prebuilt snapshot.
func BellmanFordAdjacency(adj *domain.Adjacency, source int) (*BellmanFordResult, error) {
	n := adj.VertexCount()
	if source < 0 || source >= n {
		return nil, apperror.OutOfRange("source", source, n)
	}

	sp := newShortestPathResult(n, source)
	dist, parent := sp.Distances, sp.Parent

	// Main loop: relax all edges V-1 times
	for i := 0; i < n-1; i++ {
		if !relaxAllEdges(adj, dist, parent) {
			break
		}
	}

	return &BellmanFordResult{
		Source:           source,
		Distances:        dist,
		Parent:           parent,
		HasNegativeCycle: hasImprovingEdge(adj, dist),
	}, nil
}

// relaxAllEdges performs one full relaxation pass in deterministic order.
// Returns true if any distance was updated.
func relaxAllEdges(adj *domain.Adjacency, dist []float64, parent []int) bool {
	updated := false
	for u := 0; u < adj.VertexCount(); u++ {
		if domain.IsInf(dist[u]) {
			continue
		}
		targets, weights := adj.Row(u)
		for i, v := range targets {
			if newDist := dist[u] + weights[i]; newDist < dist[v] {
				dist[v] = newDist
				parent[v] = u
				updated = true
			}
		}
	}
	return updated
}

// hasImprovingEdge reports whether any edge can still be relaxed.
func hasImprovingEdge(adj *domain.Adjacency, dist []float64) bool {
	for u := 0; u < adj.VertexCount(); u++ {
		if domain.IsInf(dist[u]) {
			continue
		}
		targets, weights := adj.Row(u)
		for i, v := range targets {
			if dist[u]+weights[i] < dist[v] {
				return true
			}
		}
	}
	return false
}
