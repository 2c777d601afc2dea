package algorithms

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"routing/pkg/domain"
)

// buildGraph creates a graph with n vertices and the given edges.
func buildGraph(t testing.TB, n int, edges ...domain.Edge) *domain.Graph {
	t.Helper()
	g := domain.NewGraph(n)
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e.From, e.To, e.Weight))
	}
	return g
}

func e(from, to int, w float64) domain.Edge {
	return domain.Edge{From: from, To: to, Weight: w}
}

// randomGraph builds a reproducible random graph. When allowNegative is set,
// weights are drawn from a potential-shifted distribution so that the graph
// has negative edges but no negative cycles.
func randomGraph(t testing.TB, seed int64, n int, density float64, allowNegative bool) *domain.Graph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	potential := make([]float64, n)
	if allowNegative {
		for i := range potential {
			potential[i] = float64(rng.Intn(20))
		}
	}

	g := domain.NewGraph(n)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u == v || rng.Float64() > density {
				continue
			}
			// reduced weight w' = w + p(u) - p(v) keeps cycle sums non-negative
			w := float64(rng.Intn(50)) + potential[u] - potential[v]
			require.NoError(t, g.AddEdge(u, v, w))
		}
	}
	return g
}
