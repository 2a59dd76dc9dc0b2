package query

import (
	"strings"

	"abbaytv/portal/internal/models"
)

// TypeAll disables the type filter.
const TypeAll = "all"

// Predicate decides whether a record passes a type filter.
type Predicate func(models.Record) bool

// Schema describes where the pipeline finds things in one collection's records.
type Schema struct {
	Collection    models.Collection
	CategoryField string   // empty: collection has no category filter
	TitleFields   []string // first non-empty wins, used by az/za
	DateField     string   // newest/oldest
	DeadlineField string   // empty: deadline sort is a no-op
	SearchFields  []string
	Types         map[string]Predicate
	// TypeField, when set, filters on case-insensitive equality with the
	// requested type instead of the fixed Types table.
	TypeField     string
	LocationField string
}

var schemas = map[models.Collection]Schema{
	models.News: {
		Collection:    models.News,
		CategoryField: "category",
		TitleFields:   []string{"title", "name"},
		DateField:     "date",
		SearchFields:  []string{"title", "description", "category"},
		Types: map[string]Predicate{
			"featured": func(r models.Record) bool { return r.Truthy("is_featured") },
			"video":    func(r models.Record) bool { return strings.TrimSpace(r.Text("youtube_url")) != "" },
		},
	},
	models.Programs: {
		Collection:    models.Programs,
		CategoryField: "category",
		TitleFields:   []string{"name", "title"},
		DateField:     "air_date",
		SearchFields:  []string{"name", "description", "category"},
		Types: map[string]Predicate{
			"series":  func(r models.Record) bool { return r.Truthy("episode") },
			"special": func(r models.Record) bool { return !r.Truthy("episode") },
		},
	},
	models.Live: {
		Collection:   models.Live,
		TitleFields:  []string{"title", "name"},
		DateField:    "schedule_date",
		SearchFields: []string{"title", "description"},
		Types: map[string]Predicate{
			"live":     func(r models.Record) bool { return r.Truthy("is_live") },
			"upcoming": func(r models.Record) bool { return !r.Truthy("is_live") },
		},
	},
	models.Jobs: {
		Collection:    models.Jobs,
		TitleFields:   []string{"title", "name"},
		DateField:     "deadline",
		DeadlineField: "deadline",
		SearchFields:  []string{"title", "description", "company", "location"},
		TypeField:     "job_type",
		LocationField: "location",
	},
}

// SchemaFor returns the schema of a known collection.
func SchemaFor(c models.Collection) (Schema, bool) {
	s, ok := schemas[c]
	return s, ok
}

// Title returns the display title of a record under this schema.
func (s Schema) Title(r models.Record) string {
	for _, f := range s.TitleFields {
		if t := r.Text(f); t != "" {
			return t
		}
	}
	return ""
}
