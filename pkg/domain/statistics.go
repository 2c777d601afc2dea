package domain

// GraphStatistics статистика графа. Считается полным обходом по требованию,
// инкрементально не поддерживается.
type GraphStatistics struct {
	VertexCount int `json:"vertex_count"`
	EdgeCount   int `json:"edge_count"`

	// MaxDegree и AvgDegree считаются по исходящей степени
	MaxDegree int     `json:"max_degree"`
	MinDegree int     `json:"min_degree"`
	AvgDegree float64 `json:"avg_degree"`
	Density   float64 `json:"density"`

	// ConnectedComponents - число компонент слабой связности
	ConnectedComponents int  `json:"connected_components"`
	IsConnected         bool `json:"is_connected"`

	// RootReachesAll - все вершины достижимы из вершины 0 по направлению рёбер
	RootReachesAll bool `json:"root_reaches_all"`

	NegativeEdges int  `json:"negative_edges"`
	SelfLoops     int  `json:"self_loops"`
	HasNegative   bool `json:"has_negative"`
}

// CalculateStatistics вычисляет статистику графа
func CalculateStatistics(g *Graph) *GraphStatistics {
	adj := g.Snapshot()
	n := adj.VertexCount()

	stats := &GraphStatistics{
		VertexCount: n,
		EdgeCount:   adj.EdgeCount(),
	}
	if n == 0 {
		return stats
	}

	stats.MinDegree = adj.Degree(0)
	for v := 0; v < n; v++ {
		d := adj.Degree(v)
		stats.MaxDegree = max(stats.MaxDegree, d)
		stats.MinDegree = min(stats.MinDegree, d)

		targets, weights := adj.Row(v)
		for i, to := range targets {
			if to == v {
				stats.SelfLoops++
			}
			if weights[i] < 0 {
				stats.NegativeEdges++
			}
		}
	}

	stats.AvgDegree = float64(stats.EdgeCount) / float64(n)
	if n > 1 {
		stats.Density = float64(stats.EdgeCount) / float64(n*(n-1))
	}
	stats.HasNegative = stats.NegativeEdges > 0

	stats.ConnectedComponents = len(FindConnectedComponents(adj))
	stats.IsConnected = stats.ConnectedComponents == 1

	stats.RootReachesAll = true
	for _, ok := range BFSReachable(adj, 0) {
		if !ok {
			stats.RootReachesAll = false
			break
		}
	}

	return stats
}
