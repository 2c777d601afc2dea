package algorithms

import "sync"

// =============================================================================
// Scratch Pool
// =============================================================================

// ScratchPool provides memory pooling for the temporary buffers that search
// algorithms need per run: visited/closed markers and priority queue storage.
//
// Distances and parent slices are returned to callers and are therefore never
// pooled; only buffers that do not escape a single algorithm run live here.
//
// The pool is safe for concurrent use from multiple goroutines.
//
// # Usage
//
//	scratch := GetScratchPool()
//	visited := scratch.AcquireBools(n)
//	defer scratch.ReleaseBools(visited)
type ScratchPool struct {
	bools sync.Pool
	heaps sync.Pool
}

// globalScratch is the singleton pool instance.
var globalScratch = &ScratchPool{
	bools: sync.Pool{
		New: func() any {
			s := make([]bool, 0, 256)
			return &s
		},
	},
	heaps: sync.Pool{
		New: func() any {
			q := make(minQueue, 0, 256)
			return &q
		},
	},
}

// GetScratchPool returns the global scratch pool.
func GetScratchPool() *ScratchPool {
	return globalScratch
}

// AcquireBools returns a zeroed []bool of length n.
// Call ReleaseBools when done.
func (p *ScratchPool) AcquireBools(n int) *[]bool {
	s := p.bools.Get().(*[]bool)
	if cap(*s) < n {
		*s = make([]bool, n)
		return s
	}
	*s = (*s)[:n]
	clear(*s)
	return s
}

// ReleaseBools returns a []bool to the pool. It is safe to pass nil.
func (p *ScratchPool) ReleaseBools(s *[]bool) {
	if s == nil {
		return
	}
	*s = (*s)[:0]
	p.bools.Put(s)
}

// acquireQueue returns an empty priority queue with spare capacity.
// Call releaseQueue when done.
func (p *ScratchPool) acquireQueue() *minQueue {
	q := p.heaps.Get().(*minQueue)
	*q = (*q)[:0]
	return q
}

// releaseQueue returns a priority queue to the pool. It is safe to pass nil.
func (p *ScratchPool) releaseQueue(q *minQueue) {
	if q == nil {
		return
	}
	*q = (*q)[:0]
	p.heaps.Put(q)
}
