// Package loader читает графы из CSV и JSON и пишет их в CSV, JSON и DOT.
// Загрузчики сами наращивают множество вершин перед вставкой рёбер.
package loader

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"routing/pkg/apperror"
	"routing/pkg/domain"
	"routing/pkg/logger"
)

// Format формат файла графа
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// DetectFormat определяет формат по расширению файла. .txt и .edges читаются как CSV,
// суффикс .zst означает сжатый zstd файл того же формата.
func DetectFormat(path string) (Format, error) {
	path, _ = splitCompressed(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", ".edges":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".dot", ".gv":
		return FormatDOT, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidArgument, "unknown graph file extension %q", filepath.Ext(path)).
			WithField("path")
	}
}

// LoadFile читает граф из файла, формат определяется по расширению
func LoadFile(path string, opts ...Option) (*domain.Graph, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNotFound, "could not open graph file").
			WithDetails("path", path)
	}
	defer f.Close()

	var r io.Reader = f
	if _, zst := splitCompressed(path); zst {
		dec, closeDec, err := decompress(f)
		if err != nil {
			return nil, err
		}
		defer closeDec()
		r = dec
	}

	var g *domain.Graph
	switch format {
	case FormatCSV:
		g, err = ReadCSV(r, opts...)
	case FormatJSON:
		g, err = ReadJSON(r)
	default:
		return nil, apperror.Newf(apperror.CodeUnimplemented, "reading %s graphs is not supported", format)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Log.Info("Graph loaded",
		"path", path,
		"format", format,
		"vertices", g.VertexCount(),
		"edges", g.EdgeCount(),
	)
	return g, nil
}

// SaveFile пишет граф в файл, формат определяется по расширению
func SaveFile(path string, g *domain.Graph) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	var w io.Writer = f
	var enc io.WriteCloser
	if _, zst := splitCompressed(path); zst {
		if enc, err = compress(f); err != nil {
			f.Close()
			return err
		}
		w = enc
	}

	switch format {
	case FormatCSV:
		err = WriteCSV(w, g)
	case FormatJSON:
		err = WriteJSON(w, g)
	case FormatDOT:
		err = WriteDOT(w, g)
	}
	if enc != nil {
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// MaxVertexIndex ограничивает индекс вершины во входных файлах, чтобы опечатка
// не раздула граф до миллиардов вершин
const MaxVertexIndex = 1 << 24

// addEdge наращивает граф до max(from, to) и вставляет ребро
func addEdge(g *domain.Graph, from, to int, weight float64) error {
	if from < 0 || to < 0 {
		return apperror.Newf(apperror.CodeInvalidVertex, "negative vertex index in edge %d->%d", from, to)
	}
	if from > MaxVertexIndex || to > MaxVertexIndex {
		return apperror.Newf(apperror.CodeInvalidVertex, "vertex index in edge %d->%d exceeds %d", from, to, MaxVertexIndex)
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return apperror.Newf(apperror.CodeInvalidWeight, "edge %d->%d has non-finite weight", from, to)
	}
	if err := g.EnsureVertex(max(from, to)); err != nil {
		return err
	}
	return g.AddEdge(from, to, weight)
}
