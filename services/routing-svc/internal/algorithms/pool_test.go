package algorithms

import (
	"container/heap"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchPool_AcquireBoolsIsZeroed(t *testing.T) {
	pool := GetScratchPool()

	s := pool.AcquireBools(16)
	require.Len(t, *s, 16)
	for i := range *s {
		(*s)[i] = true
	}
	pool.ReleaseBools(s)

	s = pool.AcquireBools(8)
	defer pool.ReleaseBools(s)
	require.Len(t, *s, 8)
	for _, v := range *s {
		assert.False(t, v)
	}
}

func TestScratchPool_GrowsBeyondCapacity(t *testing.T) {
	pool := GetScratchPool()

	s := pool.AcquireBools(10_000)
	defer pool.ReleaseBools(s)
	assert.Len(t, *s, 10_000)
}

func TestScratchPool_ReleaseNil(t *testing.T) {
	pool := GetScratchPool()
	assert.NotPanics(t, func() {
		pool.ReleaseBools(nil)
		pool.releaseQueue(nil)
	})
}

func TestScratchPool_QueueIsEmpty(t *testing.T) {
	pool := GetScratchPool()

	q := pool.acquireQueue()
	heap.Push(q, queueItem{vertex: 1, priority: 5})
	pool.releaseQueue(q)

	q = pool.acquireQueue()
	defer pool.releaseQueue(q)
	assert.Zero(t, q.Len())
}

func TestMinQueue_Order(t *testing.T) {
	q := &minQueue{}
	heap.Push(q, queueItem{vertex: 3, priority: 2})
	heap.Push(q, queueItem{vertex: 1, priority: 1})
	heap.Push(q, queueItem{vertex: 2, priority: 2})
	heap.Push(q, queueItem{vertex: 0, priority: 7})

	var order []int
	for q.Len() > 0 {
		order = append(order, heap.Pop(q).(queueItem).vertex)
	}
	// equal priorities break ties by vertex index
	assert.Equal(t, []int{1, 2, 3, 0}, order)
}

func TestScratchPool_Concurrent(t *testing.T) {
	pool := GetScratchPool()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := pool.AcquireBools(n)
				(*s)[0] = true
				pool.ReleaseBools(s)
			}
		}(i + 1)
	}
	wg.Wait()
}
