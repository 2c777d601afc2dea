package domain

// BFSReachable возвращает вершины, достижимые из source по направлению рёбер
func BFSReachable(adj *Adjacency, source int) []bool {
	n := adj.VertexCount()
	visited := make([]bool, n)
	if source < 0 || source >= n {
		return visited
	}

	queue := make([]int, 0, n)
	queue = append(queue, source)
	visited[source] = true

	for head := 0; head < len(queue); head++ {
		u := queue[head]
		targets, _ := adj.Row(u)
		for _, v := range targets {
			if !visited[v] {
				visited[v] = true
				queue = append(queue, v)
			}
		}
	}

	return visited
}

// FindConnectedComponents находит компоненты слабой связности
// (направление рёбер игнорируется). Компоненты упорядочены по минимальной вершине.
func FindConnectedComponents(adj *Adjacency) [][]int {
	n := adj.VertexCount()

	// неориентированные списки смежности
	undirected := make([][]int, n)
	for u := 0; u < n; u++ {
		targets, _ := adj.Row(u)
		for _, v := range targets {
			undirected[u] = append(undirected[u], v)
			if u != v {
				undirected[v] = append(undirected[v], u)
			}
		}
	}

	visited := make([]bool, n)
	var components [][]int

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		component := []int{start}
		visited[start] = true
		for head := 0; head < len(component); head++ {
			for _, v := range undirected[component[head]] {
				if !visited[v] {
					visited[v] = true
					component = append(component, v)
				}
			}
		}
		components = append(components, component)
	}

	return components
}
