package importfeeds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abbaytv/portal/internal/newsfile"
)

func newTestImporter(t *testing.T, entries []Entry, fetchErr error) (*Importer, string, string) {
	t.Helper()

	dir := t.TempDir()
	newsPath := filepath.Join(dir, "news.json")
	indexPath := filepath.Join(dir, "index.json")

	imp := NewImporter(newsPath, indexPath, Config{RequestTimeout: time.Second, MaxItems: 10})
	imp.fetch = func(context.Context, string) ([]Entry, error) {
		return entries, fetchErr
	}
	imp.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return imp, newsPath, indexPath
}

func TestImportAppendsNewHeadlines(t *testing.T) {
	published := time.Date(2024, 5, 30, 18, 0, 0, 0, time.UTC)
	imp, newsPath, indexPath := newTestImporter(t, []Entry{
		{URL: "https://wire.example.com/a", Headline: "Dam talks resume", Content: "Negotiators met.", PublishedAt: published},
		{URL: "https://wire.example.com/b", Headline: "Abbay News", Content: "Already have it"},
		{URL: "https://wire.example.com/c", Headline: "  "},
		{URL: "https://wire.example.com/d", Headline: "dam TALKS resume"},
		{URL: "https://wire.example.com/e", Headline: "Market opens"},
	}, nil)

	require.NoError(t, os.WriteFile(newsPath, []byte(`[{"id": 4, "title": "Abbay News"}]`), 0o644))
	require.NoError(t, os.WriteFile(indexPath, []byte(`{"stats": {"news_count": 1}}`), 0o644))

	summary, err := imp.Import(context.Background(), "https://www.wire.example.com/rss", Options{Category: "Politics"})
	require.NoError(t, err)

	assert.Equal(t, Summary{Fetched: 5, Added: 2, Duplicates: 2, Skipped: 1, Total: 3}, summary)

	items, err := newsfile.Read(newsPath)
	require.NoError(t, err)
	require.Len(t, items, 3)

	first := items[1]
	assert.Equal(t, "5", first.ID())
	assert.Equal(t, "Dam talks resume", first.Text("title"))
	assert.Equal(t, "Politics", first.Text("category"))
	assert.Equal(t, "wire.example.com", first.Text("author"))
	assert.Equal(t, "2024-05-30", first.Text("date"))
	assert.Equal(t, "https://wire.example.com/a", first.Text("source_url"))

	second := items[2]
	assert.Equal(t, "6", second.ID())
	assert.Equal(t, "2024-06-01", second.Text("date"))

	index, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.Contains(t, string(index), `"news_count": 3`)
}

func TestImportIsIdempotent(t *testing.T) {
	entries := []Entry{{URL: "https://wire.example.com/a", Headline: "One"}}
	imp, newsPath, _ := newTestImporter(t, entries, nil)

	_, err := imp.Import(context.Background(), "https://wire.example.com/rss", Options{})
	require.NoError(t, err)

	summary, err := imp.Import(context.Background(), "https://wire.example.com/rss", Options{})
	require.NoError(t, err)
	assert.Zero(t, summary.Added)
	assert.Equal(t, 1, summary.Duplicates)

	items, err := newsfile.Read(newsPath)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, defaultCategory, items[0].Text("category"))
}

func TestImportFetchError(t *testing.T) {
	imp, newsPath, _ := newTestImporter(t, nil, errors.New("HTTP 503"))

	_, err := imp.Import(context.Background(), "https://wire.example.com/rss", Options{})
	require.Error(t, err)

	_, statErr := os.Stat(newsPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestImportRejectsBadURL(t *testing.T) {
	imp, _, _ := newTestImporter(t, nil, nil)

	_, err := imp.Import(context.Background(), "not a url", Options{})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("word ", 40)
	got := truncate(long, 50)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 51)
}
