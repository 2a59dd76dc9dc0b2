package store

import (
	"fmt"
	"strings"

	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/query"
)

// Field names one filter selection.
type Field string

const (
	FieldCategory Field = "category"
	FieldType     Field = "type"
	FieldSort     Field = "sort"
	FieldSearch   Field = "search"
	FieldLocation Field = "location"
)

// Filters are the active selections of one view.
type Filters struct {
	Category string
	Type     string
	Sort     string
	Search   string
	Location string
}

// DefaultFilters is the state a view starts in and returns to on reset.
func DefaultFilters() Filters {
	return Filters{
		Type: query.TypeAll,
		Sort: query.SortNewest,
	}
}

// Query converts the selections into a pipeline query.
func (f Filters) Query() query.Query {
	return query.Query{
		Category: f.Category,
		Type:     f.Type,
		Search:   f.Search,
		Sort:     f.Sort,
		Location: f.Location,
	}
}

// View is the explicit context one browsing view works against: its filters
// and a page cursor per collection. A view has a single writer and is not
// safe for concurrent use.
type View struct {
	filters Filters
	pages   map[models.Collection]int
}

// NewView returns a view with default filters and every cursor at page 1.
func NewView() *View {
	return &View{
		filters: DefaultFilters(),
		pages:   make(map[models.Collection]int),
	}
}

// Filters returns the current selections.
func (v *View) Filters() Filters {
	return v.filters
}

// SetFilter updates one selection. Any change is a fresh query, so every page
// cursor goes back to 1; the caller is expected to re-run the pipeline.
func (v *View) SetFilter(field Field, value string) error {
	switch field {
	case FieldCategory:
		v.filters.Category = value
	case FieldType:
		if strings.TrimSpace(value) == "" {
			value = query.TypeAll
		}
		v.filters.Type = value
	case FieldSort:
		if strings.TrimSpace(value) == "" {
			value = query.SortNewest
		}
		v.filters.Sort = value
	case FieldSearch:
		v.filters.Search = value
	case FieldLocation:
		v.filters.Location = value
	default:
		return fmt.Errorf("unknown filter field %q", field)
	}
	v.ResetPages()
	return nil
}

// ResetFilters restores the defaults and resets every cursor.
func (v *View) ResetFilters() {
	v.filters = DefaultFilters()
	v.ResetPages()
}

// PageIndex returns the cursor for a collection, starting at 1.
func (v *View) PageIndex(c models.Collection) int {
	if p, ok := v.pages[c]; ok && p > 0 {
		return p
	}
	return 1
}

// AdvancePage moves a cursor forward by one page and returns the new index.
func (v *View) AdvancePage(c models.Collection) int {
	next := v.PageIndex(c) + 1
	v.pages[c] = next
	return next
}

// ResetPage puts one cursor back to 1, after a reload replaced its list.
func (v *View) ResetPage(c models.Collection) {
	delete(v.pages, c)
}

// ResetPages puts every cursor back to 1.
func (v *View) ResetPages() {
	v.pages = make(map[models.Collection]int)
}
