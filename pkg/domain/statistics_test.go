package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStatistics(t *testing.T) {
	g := createTestGraph(t)

	stats := CalculateStatistics(g)

	assert.Equal(t, 6, stats.VertexCount)
	assert.Equal(t, 3, stats.EdgeCount)
	assert.Equal(t, 1, stats.MaxDegree)
	assert.Equal(t, 0, stats.MinDegree)
	assert.InDelta(t, 0.5, stats.AvgDegree, Epsilon)
	assert.InDelta(t, 3.0/30.0, stats.Density, Epsilon)
	assert.Equal(t, 3, stats.ConnectedComponents)
	assert.False(t, stats.IsConnected)
	assert.False(t, stats.RootReachesAll)
	assert.False(t, stats.HasNegative)
}

func TestCalculateStatistics_Connected(t *testing.T) {
	g := NewGraph(3)
	require.NoError(t, g.AddEdge(0, 1, 10))
	require.NoError(t, g.AddEdge(1, 2, -20))
	require.NoError(t, g.AddEdge(2, 0, -5))
	require.NoError(t, g.AddEdge(0, 2, 1))
	require.NoError(t, g.AddEdge(1, 1, 0))

	stats := CalculateStatistics(g)

	assert.Equal(t, 2, stats.MaxDegree)
	assert.Equal(t, 1, stats.ConnectedComponents)
	assert.True(t, stats.IsConnected)
	assert.True(t, stats.RootReachesAll)
	assert.Equal(t, 2, stats.NegativeEdges)
	assert.Equal(t, 1, stats.SelfLoops)
	assert.True(t, stats.HasNegative)
}

func TestCalculateStatistics_WeakOnly(t *testing.T) {
	// 1 -> 0: одна слабая компонента, но из 0 вершина 1 не достижима
	g := NewGraph(2)
	require.NoError(t, g.AddEdge(1, 0, 1))

	stats := CalculateStatistics(g)
	assert.True(t, stats.IsConnected)
	assert.False(t, stats.RootReachesAll)
}

func TestCalculateStatistics_Empty(t *testing.T) {
	stats := CalculateStatistics(NewGraph(0))

	assert.Equal(t, 0, stats.VertexCount)
	assert.Equal(t, 0, stats.ConnectedComponents)
	assert.False(t, stats.IsConnected)
	assert.Equal(t, 0.0, stats.AvgDegree)
}
