package loader

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"routing/pkg/apperror"
)

// compressedExt файлы с этим суффиксом сжаты zstd: roads.csv.zst, roads.json.zst
const compressedExt = ".zst"

// splitCompressed отрезает суффикс .zst и сообщает, был ли он
func splitCompressed(path string) (string, bool) {
	if strings.EqualFold(filepath.Ext(path), compressedExt) {
		return path[:len(path)-len(compressedExt)], true
	}
	return path, false
}

// decompress оборачивает r в zstd декодер. Закрывать нужно возвращённый closer.
func decompress(r io.Reader) (io.Reader, func(), error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeParseError, "invalid zstd stream")
	}
	return dec, dec.Close, nil
}

// compress оборачивает w в zstd энкодер. Close энкодера дописывает кадр, но не закрывает w.
func compress(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}
