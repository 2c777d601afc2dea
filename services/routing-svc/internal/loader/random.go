package loader

import (
	"math/rand/v2"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// RandomSpec параметры случайного графа для нагрузочных прогонов
type RandomSpec struct {
	Vertices  int
	Edges     int
	MinWeight float64
	MaxWeight float64
	Seed      uint64
}

// DefaultRandomSpec параметры по умолчанию: веса 1..100, seed 1
func DefaultRandomSpec(vertices, edges int) RandomSpec {
	return RandomSpec{
		Vertices:  vertices,
		Edges:     edges,
		MinWeight: 1,
		MaxWeight: 100,
		Seed:      1,
	}
}

// Random строит граф из Edges случайных рёбер между Vertices вершинами.
// Повторная пара перезаписывает вес, поэтому итоговых рёбер может быть меньше.
// Одинаковый Seed даёт одинаковый граф.
func Random(spec RandomSpec) (*domain.Graph, error) {
	if spec.Vertices <= 0 {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "vertex count must be positive", "vertices")
	}
	if spec.Vertices > MaxVertexIndex {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "vertex count %d exceeds %d", spec.Vertices, MaxVertexIndex)
	}
	if spec.Edges < 0 {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "edge count must be non-negative", "edges")
	}
	if spec.MaxWeight < spec.MinWeight {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "max weight %g is below min weight %g", spec.MaxWeight, spec.MinWeight)
	}

	rng := rand.New(rand.NewPCG(spec.Seed, spec.Seed^0x9e3779b97f4a7c15))
	g := domain.NewGraph(spec.Vertices)
	g.Reserve(spec.Vertices, spec.Edges)

	span := spec.MaxWeight - spec.MinWeight
	for i := 0; i < spec.Edges; i++ {
		from := rng.IntN(spec.Vertices)
		to := rng.IntN(spec.Vertices)
		w := spec.MinWeight + rng.Float64()*span
		if err := addEdge(g, from, to, w); err != nil {
			return nil, err
		}
	}
	return g, nil
}
