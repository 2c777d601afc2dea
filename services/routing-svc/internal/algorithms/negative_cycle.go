package algorithms

import (
	"routing/pkg/domain"
)

// =============================================================================
// Negative Cycle Detection and Extraction
// =============================================================================
//
// HasNegativeCycle searches from vertex 0 only, matching the classic
// convenience contract: a negative cycle that vertex 0 cannot reach is not
// reported. HasAnyNegativeCycle and FindNegativeCycle start from a virtual
// source connected to every vertex with weight 0, so every cycle is visible.
//
// Extraction runs V relaxation passes while tracking predecessors, takes a
// vertex improved on the last pass, and walks the predecessor relation with a
// visited set until a vertex repeats. The repeating suffix is the cycle.
// =============================================================================

// HasNegativeCycle reports whether a negative cycle is reachable from vertex 0.
// An empty graph has no cycles.
func HasNegativeCycle(g *domain.Graph) bool {
	if g.VertexCount() == 0 {
		return false
	}
	result, err := BellmanFordAdjacency(g.Snapshot(), 0)
	if err != nil {
		return false
	}
	return result.HasNegativeCycle
}

// HasAnyNegativeCycle reports whether the graph contains a negative cycle anywhere.
func HasAnyNegativeCycle(g *domain.Graph) bool {
	return len(FindNegativeCycle(g)) > 0
}

// FindNegativeCycle returns the vertices of one negative cycle in traversal
// order, starting at the cycle's smallest vertex: every consecutive pair is an
// edge and the last vertex has an edge back to the first. Returns nil when the
// graph has no negative cycle.
func FindNegativeCycle(g *domain.Graph) []int {
	return FindNegativeCycleAdjacency(g.Snapshot())
}

// FindNegativeCycleAdjacency runs cycle extraction over a prebuilt snapshot.
func FindNegativeCycleAdjacency(adj *domain.Adjacency) []int {
	n := adj.VertexCount()
	if n == 0 {
		return nil
	}

	// Virtual source: every vertex starts at distance 0.
	dist := make([]float64, n)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = domain.NoVertex
	}

	lastImproved := domain.NoVertex
	for pass := 0; pass < n; pass++ {
		lastImproved = domain.NoVertex
		for u := 0; u < n; u++ {
			targets, weights := adj.Row(u)
			for i, v := range targets {
				if newDist := dist[u] + weights[i]; newDist < dist[v] {
					dist[v] = newDist
					parent[v] = u
					lastImproved = v
				}
			}
		}
		if lastImproved == domain.NoVertex {
			return nil
		}
	}

	return extractCycle(parent, lastImproved)
}

// extractCycle walks predecessors from start until a vertex repeats and
// returns the repeating part in edge direction.
func extractCycle(parent []int, start int) []int {
	visited := make([]bool, len(parent))
	walk := make([]int, 0, len(parent))

	current := start
	for !visited[current] {
		visited[current] = true
		walk = append(walk, current)
		current = parent[current]
		if current == domain.NoVertex {
			return nil
		}
	}

	// current is the first repeated vertex; drop the tail leading into the cycle
	begin := 0
	for walk[begin] != current {
		begin++
	}
	cycle := walk[begin:]

	// walk follows predecessors, reverse it to follow edges
	for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
		cycle[i], cycle[j] = cycle[j], cycle[i]
	}

	// start the cycle at its smallest vertex so results are stable
	lowest := 0
	for i, v := range cycle {
		if v < cycle[lowest] {
			lowest = i
		}
	}
	rotated := make([]int, 0, len(cycle))
	rotated = append(rotated, cycle[lowest:]...)
	return append(rotated, cycle[:lowest]...)
}
