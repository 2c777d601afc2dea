package domain

import "sort"

// Adjacency - неизменяемый снимок графа в формате CSR (compressed sparse row).
//
// Рёбра вершины v лежат в Targets[Offsets[v]:Offsets[v+1]] и
// Weights[Offsets[v]:Offsets[v+1]], отсортированные по целевой вершине.
// Алгоритмы работают со снимком, а не с картами Graph: обход детерминирован
// и не аллоцирует.
type Adjacency struct {
	Offsets []int
	Targets []int
	Weights []float64
}

// Snapshot строит CSR-снимок графа
func (g *Graph) Snapshot() *Adjacency {
	n := len(g.vertices)
	m := g.EdgeCount()

	adj := &Adjacency{
		Offsets: make([]int, n+1),
		Targets: make([]int, 0, m),
		Weights: make([]float64, 0, m),
	}

	for v := 0; v < n; v++ {
		adj.Offsets[v] = len(adj.Targets)
		start := len(adj.Targets)
		for to := range g.vertices[v].edges {
			adj.Targets = append(adj.Targets, to)
		}
		row := adj.Targets[start:]
		sort.Ints(row)
		for _, to := range row {
			adj.Weights = append(adj.Weights, g.vertices[v].edges[to])
		}
	}
	adj.Offsets[n] = len(adj.Targets)

	return adj
}

// VertexCount возвращает число вершин снимка
func (a *Adjacency) VertexCount() int {
	return len(a.Offsets) - 1
}

// EdgeCount возвращает число рёбер снимка
func (a *Adjacency) EdgeCount() int {
	return len(a.Targets)
}

// Degree возвращает исходящую степень вершины
func (a *Adjacency) Degree(v int) int {
	return a.Offsets[v+1] - a.Offsets[v]
}

// Row возвращает цели и веса исходящих рёбер вершины v. Срезы нельзя изменять.
func (a *Adjacency) Row(v int) ([]int, []float64) {
	lo, hi := a.Offsets[v], a.Offsets[v+1]
	return a.Targets[lo:hi:hi], a.Weights[lo:hi:hi]
}
