// Package query provides the pure filter, search and sort stages that turn a
// raw collection into a result list. Every function is []Record in,
// []Record out: inputs are never mutated and a nil input yields an empty slice.
package query

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"abbaytv/portal/internal/models"
)

// MinSearchLength is the shortest search term, in runes, that filters anything.
const MinSearchLength = 2

// Query is the (category, type, search, sort) tuple driving one pipeline run.
// Location only applies to collections whose schema names a location field.
type Query struct {
	Category string
	Type     string
	Search   string
	Sort     string
	Location string
}

// Normalize trims every selection and lower-cases the ones matched case-insensitively.
func (q Query) Normalize() Query {
	return Query{
		Category: strings.TrimSpace(q.Category),
		Type:     strings.ToLower(strings.TrimSpace(q.Type)),
		Search:   strings.TrimSpace(q.Search),
		Sort:     strings.ToLower(strings.TrimSpace(q.Sort)),
		Location: strings.TrimSpace(q.Location),
	}
}

// Key is a stable fingerprint of the query; two queries with equal keys
// produce the same result list from the same input.
func (q Query) Key() string {
	n := q.Normalize()
	return fmt.Sprintf("c=%s|t=%s|l=%s|q=%s|s=%s",
		strings.ToLower(n.Category), n.Type, strings.ToLower(n.Location), strings.ToLower(n.Search), n.Sort)
}

// Apply runs category, type, search and sort in that order.
func Apply(schema Schema, items []models.Record, q Query) []models.Record {
	q = q.Normalize()

	result := ByCategory(schema, items, q.Category)
	result = ByType(schema, result, q.Type)
	result = ByLocation(schema, result, q.Location)
	result = BySearch(schema, result, q.Search)
	return Sort(schema, result, q.Sort)
}

// ByCategory keeps records whose category equals the requested one, ignoring case.
func ByCategory(schema Schema, items []models.Record, category string) []models.Record {
	category = strings.TrimSpace(category)
	if category == "" || schema.CategoryField == "" {
		return clone(items)
	}

	return keep(items, func(r models.Record) bool {
		return strings.EqualFold(r.Text(schema.CategoryField), category)
	})
}

// ByType applies the collection-specific type predicate. "all", empty and
// tags the collection does not know leave the list unchanged.
func ByType(schema Schema, items []models.Record, tag string) []models.Record {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, TypeAll) {
		return clone(items)
	}

	if schema.TypeField != "" {
		return keep(items, func(r models.Record) bool {
			return strings.EqualFold(r.Text(schema.TypeField), tag)
		})
	}

	pred, ok := schema.Types[strings.ToLower(tag)]
	if !ok {
		return clone(items)
	}
	return keep(items, pred)
}

// ByLocation keeps records whose location contains the requested text.
func ByLocation(schema Schema, items []models.Record, location string) []models.Record {
	location = strings.TrimSpace(location)
	if location == "" || schema.LocationField == "" {
		return clone(items)
	}

	folder := cases.Fold()
	needle := folder.String(location)
	return keep(items, func(r models.Record) bool {
		return strings.Contains(folder.String(r.Text(schema.LocationField)), needle)
	})
}

// BySearch keeps records where any search field contains the term, ignoring
// case. Terms shorter than MinSearchLength runes leave the list unchanged.
func BySearch(schema Schema, items []models.Record, term string) []models.Record {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchLength {
		return clone(items)
	}

	folder := cases.Fold()
	needle := folder.String(term)
	return keep(items, func(r models.Record) bool {
		for _, field := range schema.SearchFields {
			text := r.Text(field)
			if text == "" {
				continue
			}
			if strings.Contains(folder.String(text), needle) {
				return true
			}
		}
		return false
	})
}

// Distinct returns the sorted set of non-empty values a field takes, for
// building filter option lists.
func Distinct(items []models.Record, field string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, item := range items {
		v := strings.TrimSpace(item.Text(field))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func keep(items []models.Record, pred func(models.Record) bool) []models.Record {
	result := make([]models.Record, 0, len(items))
	for _, item := range items {
		if pred(item) {
			result = append(result, item)
		}
	}
	return result
}

func clone(items []models.Record) []models.Record {
	result := make([]models.Record, len(items))
	copy(result, items)
	return result
}
