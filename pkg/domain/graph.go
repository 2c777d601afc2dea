package domain

import (
	"fmt"
	"sort"

	"routing/pkg/apperror"
)

// Edge ориентированное взвешенное ребро
type Edge struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// String возвращает строковое представление ребра
func (e Edge) String() string {
	return fmt.Sprintf("%d->%d (%g)", e.From, e.To, e.Weight)
}

// vertex владеет своими исходящими рёбрами: target -> weight
type vertex struct {
	edges map[int]float64
}

// Graph хранилище вершин и рёбер.
//
// Вершины нумеруются плотно с нуля в порядке добавления и никогда не
// удаляются. На каждую упорядоченную пару (from, to) хранится не более
// одного ребра. Graph не потокобезопасен: писатели должны быть
// сериализованы снаружи, читатели могут работать параллельно, пока нет
// писателя.
type Graph struct {
	vertices []vertex

	// edgeHint - ожидаемая исходящая степень для новых вершин (Reserve)
	edgeHint int

	// version увеличивается при каждой мутации
	version uint64
}

// NewGraph создаёт граф с заданным числом вершин
func NewGraph(vertices int) *Graph {
	g := &Graph{}
	if vertices > 0 {
		g.vertices = make([]vertex, 0, vertices)
		for i := 0; i < vertices; i++ {
			g.AddVertex()
		}
	}
	return g
}

// Reserve резервирует память под vertices вершин и edges рёбер в сумме.
// Число вершин не меняется.
func (g *Graph) Reserve(vertices, edges int) {
	if vertices > cap(g.vertices) {
		grown := make([]vertex, len(g.vertices), vertices)
		copy(grown, g.vertices)
		g.vertices = grown
	}
	if vertices > 0 && edges > 0 {
		g.edgeHint = edges / vertices
	}
}

// AddVertex добавляет вершину и возвращает её индекс
func (g *Graph) AddVertex() int {
	g.vertices = append(g.vertices, vertex{edges: make(map[int]float64, g.edgeHint)})
	g.version++
	return len(g.vertices) - 1
}

// EnsureVertex наращивает граф, пока индекс v не станет валидным.
// Используется загрузчиками, которые встречают вершины по ссылкам из рёбер.
func (g *Graph) EnsureVertex(v int) error {
	if v < 0 {
		return apperror.OutOfRange("vertex", v, len(g.vertices))
	}
	for len(g.vertices) <= v {
		g.AddVertex()
	}
	return nil
}

func (g *Graph) checkVertex(field string, v int) error {
	if v < 0 || v >= len(g.vertices) {
		return apperror.OutOfRange(field, v, len(g.vertices))
	}
	return nil
}

func (g *Graph) checkPair(from, to int) error {
	if err := g.checkVertex("from", from); err != nil {
		return err
	}
	return g.checkVertex("to", to)
}

// CheckVertex возвращает ошибку OUT_OF_RANGE, если v не является вершиной графа
func (g *Graph) CheckVertex(v int) error {
	return g.checkVertex("vertex", v)
}

// AddEdge добавляет ребро или перезаписывает вес существующего
func (g *Graph) AddEdge(from, to int, weight float64) error {
	if err := g.checkPair(from, to); err != nil {
		return err
	}
	g.vertices[from].edges[to] = weight
	g.version++
	return nil
}

// RemoveEdge удаляет ребро. Отсутствующее ребро - не ошибка.
func (g *Graph) RemoveEdge(from, to int) error {
	if err := g.checkPair(from, to); err != nil {
		return err
	}
	if _, ok := g.vertices[from].edges[to]; ok {
		delete(g.vertices[from].edges, to)
		g.version++
	}
	return nil
}

// UpdateEdgeWeight меняет вес существующего ребра. Отсутствующее ребро - не ошибка.
func (g *Graph) UpdateEdgeWeight(from, to int, weight float64) error {
	if err := g.checkPair(from, to); err != nil {
		return err
	}
	if _, ok := g.vertices[from].edges[to]; ok {
		g.vertices[from].edges[to] = weight
		g.version++
	}
	return nil
}

// Neighbors возвращает копию исходящих рёбер вершины, отсортированную по To
func (g *Graph) Neighbors(v int) ([]Edge, error) {
	if err := g.checkVertex("vertex", v); err != nil {
		return nil, err
	}
	edges := make([]Edge, 0, len(g.vertices[v].edges))
	for to, w := range g.vertices[v].edges {
		edges = append(edges, Edge{From: v, To: to, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	return edges, nil
}

// EdgeWeight возвращает вес ребра или +Inf, если ребра нет
func (g *Graph) EdgeWeight(from, to int) (float64, error) {
	if err := g.checkPair(from, to); err != nil {
		return Infinity, err
	}
	if w, ok := g.vertices[from].edges[to]; ok {
		return w, nil
	}
	return Infinity, nil
}

// HasEdge проверяет наличие ребра. Для индексов вне диапазона возвращает false.
func (g *Graph) HasEdge(from, to int) bool {
	if from < 0 || to < 0 || from >= len(g.vertices) || to >= len(g.vertices) {
		return false
	}
	_, ok := g.vertices[from].edges[to]
	return ok
}

// VertexCount возвращает число вершин
func (g *Graph) VertexCount() int {
	return len(g.vertices)
}

// EdgeCount возвращает число рёбер
func (g *Graph) EdgeCount() int {
	count := 0
	for i := range g.vertices {
		count += len(g.vertices[i].edges)
	}
	return count
}

// OutDegree возвращает исходящую степень вершины
func (g *Graph) OutDegree(v int) int {
	if v < 0 || v >= len(g.vertices) {
		return 0
	}
	return len(g.vertices[v].edges)
}

// Edges возвращает все рёбра, упорядоченные по (From, To)
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for from := range g.vertices {
		start := len(edges)
		for to, w := range g.vertices[from].edges {
			edges = append(edges, Edge{From: from, To: to, Weight: w})
		}
		part := edges[start:]
		sort.Slice(part, func(i, j int) bool { return part[i].To < part[j].To })
	}
	return edges
}

// HasNegativeWeights проверяет, есть ли в графе хотя бы одно отрицательное ребро
func (g *Graph) HasNegativeWeights() bool {
	for i := range g.vertices {
		for _, w := range g.vertices[i].edges {
			if w < 0 {
				return true
			}
		}
	}
	return false
}

// Version возвращает счётчик мутаций. Два чтения с одинаковой версией видят один и тот же граф.
func (g *Graph) Version() uint64 {
	return g.version
}

// Clone создаёт глубокую копию графа
func (g *Graph) Clone() *Graph {
	clone := &Graph{
		vertices: make([]vertex, len(g.vertices)),
		edgeHint: g.edgeHint,
		version:  g.version,
	}
	for i := range g.vertices {
		edges := make(map[int]float64, len(g.vertices[i].edges))
		for to, w := range g.vertices[i].edges {
			edges[to] = w
		}
		clone.vertices[i].edges = edges
	}
	return clone
}

// FromEdges строит граф из списка рёбер, наращивая вершины по мере надобности
func FromEdges(vertices int, edges []Edge) (*Graph, error) {
	g := NewGraph(vertices)
	for _, e := range edges {
		if err := g.EnsureVertex(max(e.From, e.To)); err != nil {
			return nil, err
		}
		if err := g.AddEdge(e.From, e.To, e.Weight); err != nil {
			return nil, err
		}
	}
	return g, nil
}
