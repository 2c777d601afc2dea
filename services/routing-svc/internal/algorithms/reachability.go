package algorithms

import (
	"github.com/RoaringBitmap/roaring/v2"

	"routing/pkg/domain"
)

// =============================================================================
// Bitset Transitive Closure (reachability-only Floyd-Warshall)
// =============================================================================
//
// Weights are dropped and each vertex keeps a compressed bitmap of the vertices
// it can reach. For every intermediate k, any i that reaches k inherits k's
// set: reach[i] |= reach[k].
//
// The closure is not reflexive: i appears in reach[i] only when i lies on a
// directed cycle. Roaring bitmaps remove any fixed limit on the vertex count.
//
// Time Complexity: O(V² · V/w) word operations in the dense case
// =============================================================================

// ReachabilityMatrix holds one bitmap of reachable vertices per source vertex.
type ReachabilityMatrix []*roaring.Bitmap

// FloydWarshallBitset computes the transitive closure of the edge relation.
func FloydWarshallBitset(g *domain.Graph) ReachabilityMatrix {
	return FloydWarshallBitsetAdjacency(g.Snapshot())
}

// FloydWarshallBitsetAdjacency computes the closure over a prebuilt snapshot.
func FloydWarshallBitsetAdjacency(adj *domain.Adjacency) ReachabilityMatrix {
	n := adj.VertexCount()
	reach := make(ReachabilityMatrix, n)
	for i := 0; i < n; i++ {
		targets, _ := adj.Row(i)
		bm := roaring.New()
		for _, j := range targets {
			bm.Add(uint32(j))
		}
		reach[i] = bm
	}

	for k := 0; k < n; k++ {
		rk := uint32(k)
		for i := 0; i < n; i++ {
			if i != k && reach[i].Contains(rk) {
				reach[i].Or(reach[k])
			}
		}
	}

	for _, bm := range reach {
		bm.RunOptimize()
	}

	return reach
}

// Reachable reports whether j is reachable from i by a non-empty path.
func (r ReachabilityMatrix) Reachable(i, j int) bool {
	if i < 0 || i >= len(r) || j < 0 {
		return false
	}
	return r[i].Contains(uint32(j))
}

// ReachableFrom returns the sorted list of vertices reachable from i.
func (r ReachabilityMatrix) ReachableFrom(i int) []int {
	if i < 0 || i >= len(r) {
		return nil
	}
	out := make([]int, 0, r[i].GetCardinality())
	it := r[i].Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Count returns the number of vertices reachable from i.
func (r ReachabilityMatrix) Count(i int) int {
	if i < 0 || i >= len(r) {
		return 0
	}
	return int(r[i].GetCardinality())
}
