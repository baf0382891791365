package bundle

import (
	"bytes"
	"fmt"

	"github.com/arif891/layx-sub000/internal/afs"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
)

// CompressOutputs writes a gzip sibling (.js.gz) for every JS file in $dir.
func CompressOutputs(fls afs.Filesystem, dir string, logger zerolog.Logger) error {
	files, err := afs.ListFiles(fls, dir, afs.ListOptions{Extensions: []string{JS_EXTENSION}})
	if err != nil {
		return err
	}

	for _, file := range files {
		content, err := afs.ReadFile(fls, file)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return err
		}
		if _, err := w.Write(content); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		if err := afs.WriteFile(fls, file+GZIP_EXTENSION, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write %s: %w", file+GZIP_EXTENSION, err)
		}
		logger.Debug().Msgf("compressed %s (%d -> %d bytes)", file, len(content), buf.Len())
	}
	return nil
}
