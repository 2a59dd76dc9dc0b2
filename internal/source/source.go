// Package source loads collection documents. Loading never fails: every
// transport, status or decoding problem is logged and replaced by an empty
// list, so callers can rely on always getting a list back.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/models"
)

// maxDocumentSize caps how much of a collection document is read.
const maxDocumentSize = 16 << 20

// Loader loads one collection.
type Loader interface {
	Load(ctx context.Context, c models.Collection) []models.Record
}

// NewLoader picks an HTTP loader for http(s) origins and a directory loader
// for anything else.
func NewLoader(origin string, timeout time.Duration) (Loader, error) {
	lower := strings.ToLower(origin)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(origin, &http.Client{Timeout: timeout})
	}
	return NewDirSource(origin)
}

// Decode turns a collection document into records.
//
// An array root yields its object elements; other elements are dropped. An
// object root is wrapped into a single-element list. Any other root, or a
// document that is not valid JSON, yields an empty list and an error
// describing why.
func Decode(r io.Reader) ([]models.Record, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxDocumentSize))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return []models.Record{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return []models.Record{}, fmt.Errorf("invalid JSON: trailing data after root value")
	}

	switch v := root.(type) {
	case []any:
		items := make([]models.Record, 0, len(v))
		dropped := 0
		for _, el := range v {
			obj, ok := el.(map[string]any)
			if !ok {
				dropped++
				continue
			}
			items = append(items, models.Record(obj))
		}
		if dropped > 0 {
			log.Warn().Int("dropped", dropped).Msg("Skipped non-object entries in collection")
		}
		return items, nil
	case map[string]any:
		log.Warn().Msg("Collection root is an object, wrapping it in a list")
		return []models.Record{models.Record(v)}, nil
	default:
		return []models.Record{}, fmt.Errorf("collection root is %T, not an array", root)
	}
}

// decodeBody reads and decodes, always returning a list.
func decodeBody(c models.Collection, origin string, body []byte) []models.Record {
	items, err := Decode(bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Str("collection", string(c)).Str("origin", origin).Msg("Failed to decode collection")
		return []models.Record{}
	}

	log.Debug().Str("collection", string(c)).Int("items", len(items)).Msg("Loaded collection")
	return items
}
