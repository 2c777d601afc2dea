package algorithms

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

func TestAStar_ZeroHeuristic(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 10), e(1, 2, 20))

	path, err := AStar(g, 0, 2, ZeroHeuristic)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, path)
}

func TestAStar_NilHeuristic(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 10), e(1, 2, 20))

	path, err := AStar(g, 0, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, path)
}

func TestAStar_SourceIsGoal(t *testing.T) {
	g := buildGraph(t, 2, e(0, 1, 1))

	path, err := AStar(g, 1, 1, ZeroHeuristic)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, path)
}

func TestAStar_Unreachable(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 1))

	path, err := AStar(g, 0, 2, ZeroHeuristic)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestAStar_OutOfRange(t *testing.T) {
	g := buildGraph(t, 2)

	_, err := AStar(g, 0, 5, nil)
	require.Error(t, err)
	assert.True(t, apperror.IsOutOfRange(err))

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "goal", appErr.Field)

	_, err = AStar(g, -1, 0, nil)
	assert.True(t, apperror.IsOutOfRange(err))
}

func TestAStar_NegativeWeight(t *testing.T) {
	g := buildGraph(t, 3, e(0, 1, 1), e(1, 2, -1))

	_, err := AStar(g, 0, 2, nil)
	assert.True(t, apperror.Is(err, apperror.CodeNegativeWeight))

	g = buildGraph(t, 2, e(0, 1, -1e-12))
	_, err = AStar(g, 0, 1, nil)
	assert.True(t, apperror.Is(err, apperror.CodeNegativeWeight))
}

// Grid 5x5 with unit weights, heuristic = Manhattan distance (admissible).
func TestAStar_GridManhattan(t *testing.T) {
	const size = 5
	id := func(r, c int) int { return r*size + c }

	g := domain.NewGraph(size * size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if c+1 < size {
				require.NoError(t, g.AddEdge(id(r, c), id(r, c+1), 1))
				require.NoError(t, g.AddEdge(id(r, c+1), id(r, c), 1))
			}
			if r+1 < size {
				require.NoError(t, g.AddEdge(id(r, c), id(r+1, c), 1))
				require.NoError(t, g.AddEdge(id(r+1, c), id(r, c), 1))
			}
		}
	}

	manhattan := func(v, goal int) float64 {
		vr, vc := v/size, v%size
		gr, gc := goal/size, goal%size
		return math.Abs(float64(vr-gr)) + math.Abs(float64(vc-gc))
	}

	goal := id(size-1, size-1)
	path, err := AStar(g, 0, goal, manhattan)
	require.NoError(t, err)

	require.NotEmpty(t, path)
	assert.Equal(t, 0, path[0])
	assert.Equal(t, goal, path[len(path)-1])
	assert.Equal(t, float64(2*(size-1)), domain.PathCost(g, path))
}

func TestAStar_MatchesDijkstra(t *testing.T) {
	for seed := int64(100); seed < 105; seed++ {
		g := randomGraph(t, seed, 20, 0.2, false)
		dj, err := Dijkstra(g, 0)
		require.NoError(t, err)

		for goal := 0; goal < g.VertexCount(); goal++ {
			path, err := AStar(g, 0, goal, ZeroHeuristic)
			require.NoError(t, err)

			if domain.IsInf(dj.Distances[goal]) {
				assert.Empty(t, path)
				continue
			}
			assert.InDelta(t, dj.Distances[goal], domain.PathCost(g, path), domain.Epsilon)
		}
	}
}

func TestLookupHeuristic(t *testing.T) {
	h := LookupHeuristic([]float64{3, 2, 1})

	assert.Equal(t, 3.0, h(0, 2))
	assert.Equal(t, 1.0, h(2, 2))
	assert.Equal(t, 0.0, h(7, 2))
	assert.Equal(t, 0.0, h(-1, 2))
}

func TestAStar_LookupHeuristicFromDistances(t *testing.T) {
	// exact remaining distances are the tightest admissible heuristic
	g := buildGraph(t, 4, e(0, 1, 1), e(1, 3, 5), e(0, 2, 2), e(2, 3, 1))

	path, err := AStar(g, 0, 3, LookupHeuristic([]float64{3, 5, 1, 0}))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, path)
}
