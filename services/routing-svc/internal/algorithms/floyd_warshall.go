package algorithms

import (
	"routing/pkg/domain"
)

// =============================================================================
// Floyd-Warshall Algorithm
// =============================================================================
//
// Floyd-Warshall computes shortest distances between every ordered pair of
// vertices with a dense V×V matrix.
//
// Time Complexity: O(V³)
// Space Complexity: O(V²)
//
// Initialization:
//   - dist[i][i] = 0 (a negative self-loop lowers it below 0)
//   - dist[i][j] = w(i, j) for every edge
//   - dist[i][j] = +Inf otherwise
//
// Relaxation order is k (intermediate), then i, then j. A relaxation is
// skipped when dist[i][k] or dist[k][j] is +Inf so that Inf + finite never
// produces a spurious finite value or NaN.
//
// After completion dist[i][i] < 0 means vertex i lies on a negative cycle.
//
// References:
//   - Floyd, R. W. (1962). "Algorithm 97: Shortest Path"
//   - Warshall, S. (1962). "A theorem on Boolean matrices"
// =============================================================================

// DistanceMatrix is a dense all-pairs distance matrix. Rows share one backing array.
type DistanceMatrix [][]float64

// newDistanceMatrix allocates an n×n matrix filled with +Inf and zero diagonal.
func newDistanceMatrix(n int) DistanceMatrix {
	backing := make([]float64, n*n)
	for i := range backing {
		backing[i] = domain.Infinity
	}
	m := make(DistanceMatrix, n)
	for i := 0; i < n; i++ {
		m[i] = backing[i*n : (i+1)*n : (i+1)*n]
		m[i][i] = 0
	}
	return m
}

// initDistanceMatrix builds the initial matrix from direct edges.
func initDistanceMatrix(adj *domain.Adjacency) DistanceMatrix {
	dist := newDistanceMatrix(adj.VertexCount())
	for i := range dist {
		targets, weights := adj.Row(i)
		for idx, j := range targets {
			if i == j {
				dist[i][i] = min(dist[i][i], weights[idx])
				continue
			}
			dist[i][j] = weights[idx]
		}
	}
	return dist
}

// relaxRow applies round k to row i using the snapshot rowK of dist[k].
func relaxRow(row, rowK []float64, k int) {
	dik := row[k]
	if domain.IsInf(dik) {
		return
	}
	for j, dkj := range rowK {
		if domain.IsInf(dkj) {
			continue
		}
		if candidate := dik + dkj; candidate < row[j] {
			row[j] = candidate
		}
	}
}

// FloydWarshall computes all-pairs shortest distances sequentially.
func FloydWarshall(g *domain.Graph) DistanceMatrix {
	return FloydWarshallAdjacency(g.Snapshot())
}

// FloydWarshallAdjacency runs the sequential algorithm over a prebuilt snapshot.
func FloydWarshallAdjacency(adj *domain.Adjacency) DistanceMatrix {
	dist := initDistanceMatrix(adj)
	n := len(dist)
	if n == 0 {
		return dist
	}

	rowK := make([]float64, n)
	for k := 0; k < n; k++ {
		copy(rowK, dist[k])
		for i := 0; i < n; i++ {
			relaxRow(dist[i], rowK, k)
		}
	}

	return dist
}

// At returns dist[i][j], or +Inf for indices outside the matrix.
func (m DistanceMatrix) At(i, j int) float64 {
	if i < 0 || j < 0 || i >= len(m) || j >= len(m) {
		return domain.Infinity
	}
	return m[i][j]
}

// NegativeCycleVertices returns the vertices whose diagonal entry is negative,
// i.e. the vertices that lie on some negative cycle.
func (m DistanceMatrix) NegativeCycleVertices() []int {
	var vertices []int
	for i := range m {
		if m[i][i] < 0 {
			vertices = append(vertices, i)
		}
	}
	return vertices
}

// Equal compares two matrices within domain.Epsilon; +Inf entries must match exactly.
func (m DistanceMatrix) Equal(other DistanceMatrix) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(other[i]) {
			return false
		}
		for j := range m[i] {
			if !domain.FloatEquals(m[i][j], other[i][j]) {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of the matrix.
func (m DistanceMatrix) Clone() DistanceMatrix {
	n := len(m)
	clone := newDistanceMatrix(n)
	for i := range m {
		copy(clone[i], m[i])
	}
	return clone
}
