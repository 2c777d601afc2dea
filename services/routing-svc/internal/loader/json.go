package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"routing/pkg/apperror"
	"routing/pkg/domain"
)

// graphDocument JSON представление графа. Vertices необязателен и задаёт
// минимальное число вершин, чтобы сохранить изолированные вершины.
type graphDocument struct {
	Vertices int           `json:"vertices,omitempty"`
	Edges    []domain.Edge `json:"edges"`
}

// ReadJSON читает документ {"edges":[{"from":0,"to":1,"weight":2.5}, ...]}
func ReadJSON(r io.Reader) (*domain.Graph, error) {
	var doc graphDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "decode graph json")
	}
	if doc.Vertices < 0 {
		return nil, apperror.Newf(apperror.CodeInvalidInput, "vertices must be non-negative, got %d", doc.Vertices)
	}

	g := domain.NewGraph(doc.Vertices)
	g.Reserve(doc.Vertices, len(doc.Edges))
	for i, e := range doc.Edges {
		if err := addEdge(g, e.From, e.To, e.Weight); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return g, nil
}

// WriteJSON пишет граф в формате, который читает ReadJSON
func WriteJSON(w io.Writer, g *domain.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(graphDocument{
		Vertices: g.VertexCount(),
		Edges:    g.Edges(),
	})
}
