// Package newsfile edits the published news.json and index.json documents in place.
package newsfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/models"
)

const dateLayout = "2006-01-02"

// Read returns the records in a news document. A missing file reads as empty.
func Read(path string) ([]models.Record, error) {
	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}

	items := make([]models.Record, 0, len(raw))
	for i, msg := range raw {
		var r models.Record
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("news entry %d is not an object: %w", i, err)
		}
		items = append(items, r)
	}
	return items, nil
}

// Append adds one item and returns it with its assigned id and date.
func Append(path string, item models.NewsItem, now time.Time) (models.NewsItem, int, error) {
	added, total, err := AppendAll(path, []models.NewsItem{item}, now)
	if err != nil {
		return models.NewsItem{}, 0, err
	}
	return added[0], total, nil
}

// AppendAll adds items in order. Each gets the next id after the highest
// numeric id already in the file (1 for an empty file) and, when it has no
// date, today's date. Existing entries are written back unchanged apart from
// indentation. It returns the added items and the new total.
func AppendAll(path string, items []models.NewsItem, now time.Time) ([]models.NewsItem, int, error) {
	raw, err := readRaw(path)
	if err != nil {
		return nil, 0, err
	}

	nextID := maxID(raw) + 1
	today := now.Format(dateLayout)

	added := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		item.ID = nextID
		nextID++
		if strings.TrimSpace(item.Date) == "" {
			item.Date = today
		}

		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(item); err != nil {
			return nil, 0, fmt.Errorf("failed to encode news item: %w", err)
		}
		raw = append(raw, bytes.TrimSpace(buf.Bytes()))
		added = append(added, item)
	}

	if err := writeJSON(path, raw); err != nil {
		return nil, 0, err
	}

	for _, item := range added {
		log.Info().Int64("id", item.ID).Str("title", item.Title).Msg("News item added")
	}
	return added, len(raw), nil
}

// UpdateIndexStats sets stats.news_count in the site index. A missing index
// file is not an error; there is simply nothing to update.
func UpdateIndexStats(path string, newsCount int) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("No index file, skipping stats update")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	var index map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&index); err != nil {
		return fmt.Errorf("failed to parse index %s: %w", path, err)
	}
	if index == nil {
		index = make(map[string]any)
	}

	stats, ok := index["stats"].(map[string]any)
	if !ok {
		stats = make(map[string]any)
	}
	stats["news_count"] = newsCount
	index["stats"] = stats

	if err := writeJSON(path, index); err != nil {
		return err
	}

	log.Info().Int("news_count", newsCount).Str("path", path).Msg("Index stats updated")
	return nil
}

func readRaw(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read news file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []json.RawMessage{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("news file %s is not a JSON array: %w", path, err)
	}
	if raw == nil {
		raw = []json.RawMessage{}
	}
	return raw, nil
}

func maxID(raw []json.RawMessage) int64 {
	var highest int64
	for _, msg := range raw {
		var r models.Record
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		if err := dec.Decode(&r); err != nil {
			continue
		}
		if id, ok := r.NumericID(); ok && id > highest {
			highest = id
		}
	}
	return highest
}

// writeJSON replaces path with v indented by two spaces, via a temp file so
// readers never see a partial document.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
