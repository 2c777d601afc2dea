package algorithms

import (
	"container/heap"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// =============================================================================
// A* Search
// =============================================================================
//
// A* finds a shortest path between two vertices, ordering the frontier by
// g(v) + h(v, goal) where g is the best known cost from the source and h is a
// caller-supplied estimate of the remaining cost.
//
// The heuristic must be admissible (never overestimate) for the returned path
// to be optimal; admissibility is not validated. With h ≡ 0 the search is
// Dijkstra stopped at the goal.
//
// Time Complexity: O((V + E) log V) in the worst case
// Space Complexity: O(V)
// =============================================================================

// Heuristic estimates the remaining cost from v to goal.
type Heuristic func(v, goal int) float64

// ZeroHeuristic is the trivial admissible heuristic.
func ZeroHeuristic(int, int) float64 { return 0 }

// LookupHeuristic builds a heuristic from precomputed per-vertex estimates,
// for example straight-line distances to a fixed goal. Vertices without an
// estimate get 0.
func LookupHeuristic(estimates []float64) Heuristic {
	return func(v, _ int) float64 {
		if v < 0 || v >= len(estimates) {
			return 0
		}
		return estimates[v]
	}
}

// AStar returns the path source -> goal (inclusive), or an empty path when the
// goal is unreachable. A nil heuristic is treated as ZeroHeuristic.
func AStar(g *domain.Graph, source, goal int, h Heuristic) ([]int, error) {
	if err := g.CheckVertex(source); err != nil {
		return nil, apperror.OutOfRange("source", source, g.VertexCount())
	}
	if err := g.CheckVertex(goal); err != nil {
		return nil, apperror.OutOfRange("goal", goal, g.VertexCount())
	}
	return AStarAdjacency(g.Snapshot(), source, goal, h)
}

// AStarAdjacency runs A* over a prebuilt snapshot.
func AStarAdjacency(adj *domain.Adjacency, source, goal int, h Heuristic) ([]int, error) {
	n := adj.VertexCount()
	if source < 0 || source >= n {
		return nil, apperror.OutOfRange("source", source, n)
	}
	if goal < 0 || goal >= n {
		return nil, apperror.OutOfRange("goal", goal, n)
	}
	if h == nil {
		h = ZeroHeuristic
	}

	gScore := make([]float64, n)
	cameFrom := make([]int, n)
	for i := range gScore {
		gScore[i] = domain.Infinity
		cameFrom[i] = domain.NoVertex
	}
	gScore[source] = 0

	scratch := GetScratchPool()
	closed := scratch.AcquireBools(n)
	defer scratch.ReleaseBools(closed)
	open := scratch.acquireQueue()
	defer scratch.releaseQueue(open)

	heap.Push(open, queueItem{vertex: source, priority: h(source, goal)})

	for open.Len() > 0 {
		current := heap.Pop(open).(queueItem).vertex

		if current == goal {
			return domain.ReconstructPath(cameFrom, source, goal), nil
		}
		if (*closed)[current] {
			continue
		}
		(*closed)[current] = true

		targets, weights := adj.Row(current)
		for i, v := range targets {
			w := weights[i]
			if w < 0 {
				return nil, apperror.NegativeWeight(current, v, w)
			}
			if (*closed)[v] {
				continue
			}

			if tentative := gScore[current] + w; tentative < gScore[v] {
				gScore[v] = tentative
				cameFrom[v] = current
				heap.Push(open, queueItem{vertex: v, priority: tentative + h(v, goal)})
			}
		}
	}

	return []int{}, nil
}
