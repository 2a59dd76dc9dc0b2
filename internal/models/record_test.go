package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccessorsTolerateMissingAndMistypedFields(t *testing.T) {
	r := Record{
		"title":       "Abbay News",
		"description": nil,
		"id":          json.Number("7"),
		"is_live":     true,
		"episode":     json.Number("0"),
		"tags":        []any{"a"},
		"is_featured": "false",
	}

	assert.Equal(t, "Abbay News", r.Text("title"))
	assert.Equal(t, "", r.Text("description"))
	assert.Equal(t, "", r.Text("missing"))
	assert.Equal(t, "", r.Text("tags"))
	assert.Equal(t, "7", r.ID())

	assert.True(t, r.Truthy("is_live"))
	assert.True(t, r.Truthy("tags"))
	assert.False(t, r.Truthy("episode"))
	assert.False(t, r.Truthy("is_featured"))
	assert.False(t, r.Truthy("description"))
	assert.False(t, r.Truthy("missing"))
}

func TestNumericID(t *testing.T) {
	n, ok := Record{"id": json.Number("42")}.NumericID()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	n, ok = Record{"id": "17"}.NumericID()
	require.True(t, ok)
	assert.Equal(t, int64(17), n)

	_, ok = Record{"id": "abc"}.NumericID()
	assert.False(t, ok)

	_, ok = Record{}.NumericID()
	assert.False(t, ok)
}

func TestFindByID(t *testing.T) {
	items := []Record{
		{"id": json.Number("1"), "title": "first"},
		{"title": "no id"},
		{"id": json.Number("1"), "title": "duplicate"},
		{"id": "2", "title": "string id"},
	}

	found, ok := FindByID(items, "1")
	require.True(t, ok)
	assert.Equal(t, "first", found.Text("title"))

	found, ok = FindByID(items, "2")
	require.True(t, ok)
	assert.Equal(t, "string id", found.Text("title"))

	_, ok = FindByID(items, "99")
	assert.False(t, ok)

	_, ok = FindByID(items, "")
	assert.False(t, ok)

	_, ok = FindByID(nil, "1")
	assert.False(t, ok)
}

func TestParseCollection(t *testing.T) {
	c, err := ParseCollection(" News ")
	require.NoError(t, err)
	assert.Equal(t, News, c)
	assert.Equal(t, "news.json", c.FileName())

	_, err = ParseCollection("weather")
	assert.Error(t, err)
}
