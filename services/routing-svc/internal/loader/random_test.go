package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routing/pkg/apperror"
)

func TestRandom(t *testing.T) {
	g, err := Random(DefaultRandomSpec(50, 400))
	require.NoError(t, err)

	assert.Equal(t, 50, g.VertexCount())
	assert.LessOrEqual(t, g.EdgeCount(), 400)
	assert.Positive(t, g.EdgeCount())

	for _, e := range g.Edges() {
		assert.GreaterOrEqual(t, e.Weight, 1.0)
		assert.LessOrEqual(t, e.Weight, 100.0)
	}
}

func TestRandom_Deterministic(t *testing.T) {
	spec := DefaultRandomSpec(30, 120)
	spec.Seed = 42

	a, err := Random(spec)
	require.NoError(t, err)
	b, err := Random(spec)
	require.NoError(t, err)
	assert.Equal(t, a.Edges(), b.Edges())

	spec.Seed = 43
	c, err := Random(spec)
	require.NoError(t, err)
	assert.NotEqual(t, a.Edges(), c.Edges())
}

func TestRandom_NegativeRange(t *testing.T) {
	spec := RandomSpec{Vertices: 10, Edges: 40, MinWeight: -5, MaxWeight: -1, Seed: 7}

	g, err := Random(spec)
	require.NoError(t, err)
	assert.True(t, g.HasNegativeWeights())
}

func TestRandom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec RandomSpec
	}{
		{"no vertices", RandomSpec{Vertices: 0, Edges: 1}},
		{"negative edges", RandomSpec{Vertices: 3, Edges: -1}},
		{"inverted weights", RandomSpec{Vertices: 3, Edges: 1, MinWeight: 5, MaxWeight: 1}},
		{"too many vertices", RandomSpec{Vertices: MaxVertexIndex + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Random(tt.spec)
			assert.Equal(t, apperror.CodeInvalidArgument, apperror.Code(err))
		})
	}
}
