package algorithms

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"routing/pkg/domain"
)

// DijkstraAllPairs runs Dijkstra from every vertex concurrently and assembles
// a distance matrix. It is the O(V·(V+E) log V) alternative to Floyd-Warshall
// for sparse graphs with non-negative weights. At most workers searches run at
// once; workers <= 0 means runtime.GOMAXPROCS(0).
//
// The first failing search (for example NEGATIVE_WEIGHT) cancels the rest.
func DijkstraAllPairs(ctx context.Context, g *domain.Graph, workers int) (DistanceMatrix, error) {
	adj := g.Snapshot()
	n := adj.VertexCount()
	dist := newDistanceMatrix(n)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for source := 0; source < n; source++ {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			result, err := DijkstraAdjacency(adj, source)
			if err != nil {
				return err
			}
			// each goroutine writes only its own row
			copy(dist[source], result.Distances)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return dist, nil
}
