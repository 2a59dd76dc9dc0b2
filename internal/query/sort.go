package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"abbaytv/portal/internal/models"
)

// Sort keys.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortAZ       = "az"
	SortZA       = "za"
	SortDeadline = "deadline"
)

// Epoch stands in for missing or unparseable dates, so such records sort
// last under newest and first under oldest.
var Epoch = time.Unix(0, 0).UTC()

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseDate parses the date formats found in the content files.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOf returns the record's date field, or Epoch.
func DateOf(r models.Record, field string) time.Time {
	if field == "" {
		return Epoch
	}
	if t, ok := ParseDate(r.Text(field)); ok {
		return t
	}
	return Epoch
}

// Sort orders a copy of items by the given key. The sort is stable; unknown
// keys, and deadline on collections without deadlines, keep the input order.
func Sort(schema Schema, items []models.Record, key string) []models.Record {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case SortNewest:
		return byDate(items, schema.DateField, true)
	case SortOldest:
		return byDate(items, schema.DateField, false)
	case SortAZ:
		return byTitle(schema, items, false)
	case SortZA:
		return byTitle(schema, items, true)
	case SortDeadline:
		if schema.DeadlineField == "" {
			return clone(items)
		}
		return byDate(items, schema.DeadlineField, false)
	default:
		return clone(items)
	}
}

type dated struct {
	record models.Record
	at     time.Time
}

func byDate(items []models.Record, field string, descending bool) []models.Record {
	keyed := make([]dated, len(items))
	for i, item := range items {
		keyed[i] = dated{record: item, at: DateOf(item, field)}
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		if descending {
			return keyed[i].at.After(keyed[j].at)
		}
		return keyed[i].at.Before(keyed[j].at)
	})

	result := make([]models.Record, len(keyed))
	for i, k := range keyed {
		result[i] = k.record
	}
	return result
}

type titled struct {
	record models.Record
	title  string
}

func byTitle(schema Schema, items []models.Record, descending bool) []models.Record {
	keyed := make([]titled, len(items))
	for i, item := range items {
		keyed[i] = titled{record: item, title: schema.Title(item)}
	}

	// Collators keep per-instance buffers.
	col := collate.New(language.Und)
	sort.SliceStable(keyed, func(i, j int) bool {
		if descending {
			return col.CompareString(keyed[j].title, keyed[i].title) < 0
		}
		return col.CompareString(keyed[i].title, keyed[j].title) < 0
	})

	result := make([]models.Record, len(keyed))
	for i, k := range keyed {
		result[i] = k.record
	}
	return result
}
