package algorithms

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// =============================================================================
// Parallel Floyd-Warshall
// =============================================================================
//
// Rows are partitioned into contiguous chunks, one per worker. Workers are
// started once and stay alive for all V rounds; a cyclic barrier separates
// round k from round k+1 so that every write of round k happens before any
// read of round k+1.
//
// Within a round a worker only writes rows it owns. Row k is read by every
// worker, so the barrier action copies it into a shared snapshot before the
// round starts; the owner of row k may then update dist[k] freely.
//
// Cancellation is observed only at round boundaries. A canceled run returns
// CANCELED and no matrix.
// =============================================================================

// FloydWarshallParallel computes all-pairs shortest distances using a
// persistent pool of workers. workers <= 0 means runtime.GOMAXPROCS(0); the
// worker count is capped at the vertex count.
func FloydWarshallParallel(ctx context.Context, g *domain.Graph, workers int) (DistanceMatrix, error) {
	return FloydWarshallParallelAdjacency(ctx, g.Snapshot(), workers)
}

// FloydWarshallParallelAdjacency runs the parallel algorithm over a prebuilt snapshot.
func FloydWarshallParallelAdjacency(ctx context.Context, adj *domain.Adjacency, workers int) (DistanceMatrix, error) {
	dist := initDistanceMatrix(adj)
	n := len(dist)
	if n == 0 {
		return dist, nil
	}

	chunks := partitionRows(n, workers)
	rowK := make([]float64, n)

	round := 0
	prepareRound := func() bool {
		if ctx.Err() != nil {
			return false
		}
		copy(rowK, dist[round])
		round++
		return true
	}
	barrier := newRoundBarrier(len(chunks), prepareRound)

	var eg errgroup.Group
	for _, c := range chunks {
		eg.Go(func() error {
			for k := 0; k < n; k++ {
				if !barrier.Wait() {
					return ctx.Err()
				}
				for i := c.start; i < c.end; i++ {
					relaxRow(dist[i], rowK, k)
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeCanceled, "parallel floyd-warshall canceled").
			WithDetails("rounds_completed", round)
	}

	return dist, nil
}

// rowRange is a half-open range of rows owned by one worker.
type rowRange struct {
	start, end int
}

// partitionRows splits [0, n) into contiguous chunks of n/workers rows; the
// last chunk takes the remainder.
func partitionRows(n, workers int) []rowRange {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, n)
	if workers <= 0 {
		return nil
	}

	size := n / workers
	chunks := make([]rowRange, workers)
	for t := 0; t < workers; t++ {
		chunks[t] = rowRange{start: t * size, end: (t + 1) * size}
	}
	chunks[workers-1].end = n
	return chunks
}

// roundBarrier is a reusable barrier for a fixed number of parties. The last
// party to arrive runs action before anyone is released; if action returns
// false the barrier is broken and every current and future Wait returns false.
type roundBarrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	parties    int
	waiting    int
	generation uint64
	broken     bool
	action     func() bool
}

func newRoundBarrier(parties int, action func() bool) *roundBarrier {
	b := &roundBarrier{parties: parties, action: action}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all parties have arrived. Returns false if the barrier is broken.
func (b *roundBarrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.broken {
		return false
	}

	gen := b.generation
	b.waiting++
	if b.waiting == b.parties {
		if b.action != nil && !b.action() {
			b.broken = true
		}
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return !b.broken
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	return !b.broken
}
