package algorithms

// queueItem is an entry of the search frontier. Entries are never updated in
// place: a better distance pushes a new entry and the stale one is skipped
// when popped (lazy deletion).
type queueItem struct {
	vertex   int
	priority float64
}

// minQueue implements heap.Interface as a min-heap on priority with
// tie-breaking by vertex index for deterministic pop order.
type minQueue []queueItem

func (q minQueue) Len() int { return len(q) }

func (q minQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].vertex < q[j].vertex
}

func (q minQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *minQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *minQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
