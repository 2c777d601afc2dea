package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"routing/pkg/domain"
)

// GraphFingerprint вычисляет хеш содержимого графа: число вершин и
// отсортированный список рёбер. Два графа с одинаковыми рёбрами дают один
// отпечаток независимо от порядка добавления.
func GraphFingerprint(g *domain.Graph) string {
	if g == nil {
		return ""
	}

	h := sha256.New()
	h.Write(graphToCanonical(g))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// graphToCanonical строит детерминированное представление графа.
// Веса пишутся в кратчайшей точной форме, чтобы 0.1 и 0.10000000000000002 различались.
func graphToCanonical(g *domain.Graph) []byte {
	edges := g.Edges() // уже отсортированы по (from, to)

	buf := make([]byte, 0, 16+len(edges)*24)
	buf = append(buf, "v:"...)
	buf = strconv.AppendInt(buf, int64(g.VertexCount()), 10)
	buf = append(buf, ';')

	for _, e := range edges {
		buf = append(buf, "e:"...)
		buf = strconv.AppendInt(buf, int64(e.From), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(e.To), 10)
		buf = append(buf, ':')
		buf = strconv.AppendFloat(buf, e.Weight, 'g', -1, 64)
		buf = append(buf, ';')
	}

	return buf
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
