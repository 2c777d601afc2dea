package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"routing/pkg/domain"
)

// WriteDOT пишет граф в формате Graphviz: сначала все вершины, затем рёбра с весом в label
func WriteDOT(w io.Writer, g *domain.Graph) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("digraph G {\n")
	for v := 0; v < g.VertexCount(); v++ {
		fmt.Fprintf(bw, "  %d;\n", v)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "  %d -> %d [label=\"%s\"];\n", e.From, e.To, strconv.FormatFloat(e.Weight, 'g', -1, 64))
	}
	bw.WriteString("}\n")

	return bw.Flush()
}

// HighlightPath пишет граф, выделяя рёбра пути цветом
func HighlightPath(w io.Writer, g *domain.Graph, path []int, color string) error {
	onPath := make(map[[2]int]bool, len(path))
	for i := 1; i < len(path); i++ {
		onPath[[2]int{path[i-1], path[i]}] = true
	}

	var sb strings.Builder
	sb.WriteString("digraph G {\n")
	for v := 0; v < g.VertexCount(); v++ {
		fmt.Fprintf(&sb, "  %d;\n", v)
	}
	for _, e := range g.Edges() {
		attrs := fmt.Sprintf("label=\"%s\"", strconv.FormatFloat(e.Weight, 'g', -1, 64))
		if onPath[[2]int{e.From, e.To}] {
			attrs += fmt.Sprintf(", color=%q, penwidth=2", color)
		}
		fmt.Fprintf(&sb, "  %d -> %d [%s];\n", e.From, e.To, attrs)
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
