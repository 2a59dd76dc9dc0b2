package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/models"
)

// DirSource reads <dir>/<collection>.json from disk.
type DirSource struct {
	dir string
}

// NewDirSource checks that dir exists and is a directory.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content origin %s is not a directory", dir)
	}
	return &DirSource{dir: dir}, nil
}

// Load reads and decodes a collection. Failures are logged and yield [].
func (s *DirSource) Load(ctx context.Context, c models.Collection) []models.Record {
	path := filepath.Join(s.dir, c.FileName())

	if err := ctx.Err(); err != nil {
		log.Warn().Err(err).Str("collection", string(c)).Msg("Load cancelled")
		return []models.Record{}
	}

	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("collection", string(c)).Str("path", path).Msg("Failed to load collection")
		return []models.Record{}
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		log.Error().Err(err).Str("collection", string(c)).Str("path", path).Msg("Failed to read collection")
		return []models.Record{}
	}
	return decodeBody(c, path, body)
}
