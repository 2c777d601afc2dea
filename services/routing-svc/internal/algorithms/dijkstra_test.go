package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

func TestDijkstra_SimpleChain(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 10), e(1, 2, 20))

	result, err := Dijkstra(g, 0)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 10, 30}, result.Distances)
	assert.Equal(t, []int{domain.NoVertex, 0, 1}, result.Parent)
	assert.Equal(t, []int{0, 1, 2}, result.PathTo(2))
	assert.False(t, result.UsedBellmanFord)
}

func TestDijkstra_ChoosesCheaperDetour(t *testing.T) {
	//     0 --10--> 1 --1--> 3
	//     |                  ^
	//     1                  |
	//     v                  |
	//     2 -------2---------+
	g := buildGraph(t, 4, e(0, 1, 10), e(1, 3, 1), e(0, 2, 1), e(2, 3, 2))

	result, err := Dijkstra(g, 0)
	require.NoError(t, err)

	assert.Equal(t, 3.0, result.Distances[3])
	assert.Equal(t, []int{0, 2, 3}, result.PathTo(3))
}

func TestDijkstra_Unreachable(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 5))

	result, err := Dijkstra(g, 0)
	require.NoError(t, err)

	assert.True(t, domain.IsInf(result.Distances[2]))
	assert.Nil(t, result.PathTo(2))
	assert.True(t, domain.IsInf(result.DistanceTo(99)))
}

func TestDijkstra_SourceDistanceZero(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := randomGraph(t, seed, 15, 0.3, false)
		for source := 0; source < g.VertexCount(); source++ {
			result, err := Dijkstra(g, source)
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.Distances[source])
		}
	}
}

func TestDijkstra_OutOfRange(t *testing.T) {
	g := buildGraph(t, 2)

	_, err := Dijkstra(g, 2)
	assert.True(t, apperror.IsOutOfRange(err))

	_, err = Dijkstra(g, -1)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestDijkstra_NegativeWeightFailsFast(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 10), e(1, 2, -10))

	_, err := Dijkstra(g, 0)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNegativeWeight))
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestDijkstra_TinyNegativeWeightRejected(t *testing.T) {
	g := buildGraph(t, 2, e(0, 1, -1e-12))

	_, err := Dijkstra(g, 0)
	assert.True(t, apperror.Is(err, apperror.CodeNegativeWeight))

	result, err := DijkstraWithFallback(g, 0)
	require.NoError(t, err)
	assert.True(t, result.UsedBellmanFord)
	assert.Equal(t, -1e-12, result.Distances[1])
}

func TestDijkstra_NegativeEdgeUnreachableIsIgnored(t *testing.T) {
	// 2 -> 1 negative, but 2 is unreachable from 0
	g := buildGraph(t, 3, e(0, 1, 4), e(2, 1, -3))

	result, err := Dijkstra(g, 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, result.Distances[1])
}

func TestDijkstra_SelfLoopAndZeroWeights(t *testing.T) {
	g := buildGraph(t, 3, e(0, 0, 0), e(0, 1, 0), e(1, 2, 0))

	result, err := Dijkstra(g, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, result.Distances)
}

func TestDijkstraWithFallback(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 10), e(1, 2, -10), e(0, 2, 5))

	result, err := DijkstraWithFallback(g, 0)
	require.NoError(t, err)

	assert.True(t, result.UsedBellmanFord)
	assert.Equal(t, []float64{0, 10, 0}, result.Distances)
	assert.Equal(t, []int{0, 1, 2}, result.PathTo(2))
}

func TestDijkstraWithFallback_NonNegativeUsesDijkstra(t *testing.T) {
	g := buildGraph(t, 2, e(0, 1, 1))

	result, err := DijkstraWithFallback(g, 0)
	require.NoError(t, err)
	assert.False(t, result.UsedBellmanFord)
}

func TestDijkstraWithFallback_NegativeCycle(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 10), e(1, 2, -20), e(2, 0, -5))

	_, err := DijkstraWithFallback(g, 0)
	assert.True(t, apperror.Is(err, apperror.CodeNegativeCycle))

	_, err = DijkstraWithFallback(g, 5)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestDijkstraPath(t *testing.T) {
	g := buildGraph(t, 4, e(0, 1, 10), e(1, 2, 20))

	path, cost, err := DijkstraPath(g, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, path)
	assert.Equal(t, 30.0, cost)

	path, cost, err = DijkstraPath(g, 0, 3)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.True(t, domain.IsInf(cost))

	_, _, err = DijkstraPath(g, 0, 4)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestDijkstra_MatchesBellmanFord(t *testing.T) {
	for seed := int64(10); seed < 20; seed++ {
		g := randomGraph(t, seed, 20, 0.2, false)

		for source := 0; source < g.VertexCount(); source += 3 {
			dj, err := Dijkstra(g, source)
			require.NoError(t, err)
			bf, err := BellmanFord(g, source)
			require.NoError(t, err)

			require.False(t, bf.HasNegativeCycle)
			for v := range dj.Distances {
				assert.True(t, domain.FloatEquals(dj.Distances[v], bf.Distances[v]),
					"seed=%d source=%d v=%d: dijkstra=%v bellman-ford=%v",
					seed, source, v, dj.Distances[v], bf.Distances[v])
			}
		}
	}
}

func TestDijkstra_PathCostMatchesDistance(t *testing.T) {
	g := randomGraph(t, 42, 25, 0.15, false)

	result, err := Dijkstra(g, 0)
	require.NoError(t, err)

	for v := range result.Distances {
		path := result.PathTo(v)
		if domain.IsInf(result.Distances[v]) {
			assert.Nil(t, path)
			continue
		}
		assert.InDelta(t, result.Distances[v], domain.PathCost(g, path), domain.Epsilon)
	}
}

func BenchmarkDijkstra(b *testing.B) {
	g := randomGraph(b, 7, 500, 0.02, false)
	adj := g.Snapshot()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DijkstraAdjacency(adj, i%adj.VertexCount()); err != nil {
			b.Fatal(err)
		}
	}
}
