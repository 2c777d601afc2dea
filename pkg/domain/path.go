package domain

// Path путь в графе вместе со стоимостью
type Path struct {
	Vertices []int   `json:"vertices"`
	Cost     float64 `json:"cost"`
}

// Empty проверяет, что путь пуст (цель недостижима)
func (p Path) Empty() bool {
	return len(p.Vertices) == 0
}

// ReconstructPath восстанавливает путь source -> target по массиву предков.
// Возвращает nil, если target недостижима. Цикл в parent тоже даёт nil.
func ReconstructPath(parent []int, source, target int) []int {
	if target < 0 || target >= len(parent) || source < 0 || source >= len(parent) {
		return nil
	}
	if source == target {
		return []int{source}
	}
	if parent[target] == NoVertex {
		return nil
	}

	path := []int{target}
	current := target
	for steps := 0; current != source; steps++ {
		if steps > len(parent) {
			return nil
		}
		current = parent[current]
		if current == NoVertex {
			return nil
		}
		path = append(path, current)
	}

	reverseInts(path)
	return path
}

// PathCost считает суммарный вес пути. Отсутствующее ребро даёт +Inf.
func PathCost(g *Graph, path []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		w, err := g.EdgeWeight(path[i], path[i+1])
		if err != nil || IsInf(w) {
			return Infinity
		}
		total += w
	}
	return total
}

// IsCycle проверяет, что вершины образуют замкнутый цикл существующих рёбер:
// каждая пара соседей соединена и последняя вершина ведёт в первую
func IsCycle(g *Graph, cycle []int) bool {
	if len(cycle) == 0 {
		return false
	}
	for i := range cycle {
		next := cycle[(i+1)%len(cycle)]
		if !g.HasEdge(cycle[i], next) {
			return false
		}
	}
	return true
}

// CycleCost считает вес замкнутого цикла, включая ребро last -> first
func CycleCost(g *Graph, cycle []int) float64 {
	if len(cycle) == 0 {
		return 0
	}
	closed := append(append(make([]int, 0, len(cycle)+1), cycle...), cycle[0])
	return PathCost(g, closed)
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
