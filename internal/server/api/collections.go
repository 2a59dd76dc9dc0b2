package api

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/rs/zerolog/hlog"

	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/query"
	"abbaytv/portal/internal/server/pagination"
	"abbaytv/portal/internal/store"
)

// maxPage bounds how far a client can ask to reveal in one request.
const maxPage = 1000

// FilterOptions are the choices a client can offer for a collection.
type FilterOptions struct {
	Categories []string `json:"categories,omitempty"`
	Types      []string `json:"types"`
	Locations  []string `json:"locations,omitempty"`
	Sorts      []string `json:"sorts"`
}

// CollectionResponse is one page of a filtered collection.
type CollectionResponse struct {
	Collection string          `json:"collection"`
	Items      []models.Record `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	HasMore    bool            `json:"has_more"`
	NextCursor *string         `json:"next_cursor,omitempty"`
	Empty      bool            `json:"empty"`
	Message    string          `json:"message,omitempty"`
	Filters    FilterOptions   `json:"filters"`
}

// CollectionsHandler serves filtered, paginated collections from the cache.
type CollectionsHandler struct {
	ctrl *controller.Controller
}

// NewCollectionsHandler creates a new handler instance.
func NewCollectionsHandler(ctrl *controller.Controller) *CollectionsHandler {
	return &CollectionsHandler{ctrl: ctrl}
}

// GetCollection handles GET /v1/collections/{name}.
func (h *CollectionsHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	log := hlog.FromRequest(r)

	coll, err := models.ParseCollection(r.PathValue("name"))
	if err != nil {
		log.Warn().Err(err).Msg("Unknown collection requested")
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	params := r.URL.Query()
	view := store.NewView()
	selections := []struct {
		field store.Field
		param string
	}{
		{store.FieldCategory, "category"},
		{store.FieldType, "type"},
		{store.FieldSearch, "q"},
		{store.FieldSort, "sort"},
		{store.FieldLocation, "location"},
	}
	for _, s := range selections {
		if params.Has(s.param) {
			if err := view.SetFilter(s.field, params.Get(s.param)); err != nil {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
		}
	}
	q := view.Filters().Query()

	page, ok := parsePage(params.Get("page"))
	if !ok {
		log.Warn().Str("page", params.Get("page")).Msg("Invalid 'page' parameter")
		writeError(w, r, http.StatusBadRequest, "Invalid 'page' parameter: must be a positive integer")
		return
	}

	if cursorStr := params.Get("cursor"); cursorStr != "" {
		cursor, err := pagination.DecodeCursor(cursorStr)
		if err != nil {
			log.Warn().Err(err).Str("cursor", cursorStr).Msg("Invalid 'cursor' parameter")
			writeError(w, r, http.StatusBadRequest, "Invalid 'cursor' parameter")
			return
		}

		page = cursor.Page
		if !cursor.Matches(h.ctrl.Store().Generation(coll), q.Key()) {
			log.Debug().Str("collection", string(coll)).Msg("Stale cursor, restarting at page 1")
			page = 1
		}
	}
	if page > maxPage {
		page = maxPage
	}

	res := h.ctrl.Run(coll, q, page)

	resp := CollectionResponse{
		Collection: string(coll),
		Items:      res.Items,
		Total:      res.Total,
		Page:       res.PageIndex,
		PageSize:   h.ctrl.PageSize(),
		HasMore:    res.HasMore,
		Empty:      res.Empty,
		Filters:    h.filterOptions(coll),
	}
	if res.HasMore {
		next := pagination.EncodeCursor(pagination.Cursor{
			Page:       res.PageIndex + 1,
			Generation: res.Generation,
			QueryKey:   res.QueryKey,
		})
		resp.NextCursor = &next
	}
	if res.Empty {
		resp.Message = fmt.Sprintf("No %s found", coll)
	}

	writeJSON(w, r, http.StatusOK, resp)
}

// GetItem handles GET /v1/collections/{name}/{id}.
func (h *CollectionsHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	coll, err := models.ParseCollection(r.PathValue("name"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	item, ok := models.FindByID(h.ctrl.Store().Collection(coll), r.PathValue("id"))
	if !ok {
		hlog.FromRequest(r).Debug().Str("collection", string(coll)).Str("id", r.PathValue("id")).Msg("Item not found")
		writeError(w, r, http.StatusNotFound, "Item not found")
		return
	}

	writeJSON(w, r, http.StatusOK, item)
}

func (h *CollectionsHandler) filterOptions(coll models.Collection) FilterOptions {
	schema, _ := query.SchemaFor(coll)
	items := h.ctrl.Store().Collection(coll)

	opts := FilterOptions{
		Types: []string{query.TypeAll},
		Sorts: []string{query.SortNewest, query.SortOldest, query.SortAZ, query.SortZA},
	}
	if schema.DeadlineField != "" {
		opts.Sorts = append(opts.Sorts, query.SortDeadline)
	}
	if schema.CategoryField != "" {
		opts.Categories = query.Distinct(items, schema.CategoryField)
	}
	if schema.LocationField != "" {
		opts.Locations = query.Distinct(items, schema.LocationField)
	}

	if schema.TypeField != "" {
		opts.Types = append(opts.Types, query.Distinct(items, schema.TypeField)...)
	} else {
		tags := make([]string, 0, len(schema.Types))
		for tag := range schema.Types {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		opts.Types = append(opts.Types, tags...)
	}
	return opts
}
