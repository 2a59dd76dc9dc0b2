// Package controller wires the loader, the store and the query pipeline into
// page loads, result pages, the home page sections and the refresh loop.
package controller

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/query"
	"abbaytv/portal/internal/server/pagination"
	"abbaytv/portal/internal/source"
	"abbaytv/portal/internal/store"
)

// Result is one page worth of a pipeline run.
type Result struct {
	Items     []models.Record
	Total     int
	PageIndex int
	HasMore   bool
	// Empty is set when the filtered list has no items at all.
	Empty      bool
	Generation uint64
	QueryKey   string
}

// Controller owns the cache for one process. It is safe for concurrent use.
type Controller struct {
	loader   source.Loader
	store    *store.Store
	pageSize int

	inFlight   atomic.Int32
	refreshing atomic.Bool

	newTicker tickerFactory
}

// New creates a controller. A non-positive page size falls back to 12.
func New(loader source.Loader, st *store.Store, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = 12
	}
	if st == nil {
		st = store.New()
	}
	return &Controller{
		loader:   loader,
		store:    st,
		pageSize: pageSize,
		newTicker: func(d time.Duration) ticker {
			return &timeTicker{time.NewTicker(d)}
		},
	}
}

// Store exposes the underlying cache.
func (c *Controller) Store() *store.Store {
	return c.store
}

// PageSize is the number of items added per page.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Loading reports whether any load is running.
func (c *Controller) Loading() bool {
	return c.inFlight.Load() > 0
}

// LoadPage loads the collections a page shows and replaces them in the store.
// The index page loads all four concurrently and stores them only once every
// load has finished. If ctx ends first the store is left untouched.
func (c *Controller) LoadPage(ctx context.Context, page Page) error {
	collections := page.Collections()
	if len(collections) == 0 {
		log.Debug().Str("page", string(page)).Msg("Page has no collections to load")
		return nil
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	start := time.Now()
	results := make([][]models.Record, len(collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range collections {
		g.Go(func() error {
			items := c.loader.Load(gctx, coll)
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("load %s: %w", coll, err)
			}
			results[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("page", string(page)).Msg("Page load failed")
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load %s: %w", page, err)
	}

	for i, coll := range collections {
		c.store.SetCollection(coll, results[i])
	}

	log.Info().
		Str("page", string(page)).
		Int("collections", len(collections)).
		Dur("duration", time.Since(start)).
		Msg("Page loaded")
	return nil
}

// Run applies a query to the cached collection and cuts page pageIndex.
func (c *Controller) Run(coll models.Collection, q query.Query, pageIndex int) Result {
	items, gen := c.store.Snapshot(coll)
	if pageIndex < 1 {
		pageIndex = 1
	}

	result := Result{
		Items:      []models.Record{},
		PageIndex:  pageIndex,
		Generation: gen,
		QueryKey:   q.Key(),
	}

	schema, ok := query.SchemaFor(coll)
	if !ok {
		result.Empty = true
		return result
	}

	filtered := query.Apply(schema, items, q)
	result.Total = len(filtered)
	result.Empty = len(filtered) == 0
	result.Items = pagination.VisibleSlice(filtered, pageIndex, c.pageSize)
	result.HasMore = pagination.HasMore(len(filtered), pageIndex, c.pageSize)
	return result
}

// Results runs a view's filters against a collection at the view's cursor.
func (c *Controller) Results(coll models.Collection, view *store.View) Result {
	return c.Run(coll, view.Filters().Query(), view.PageIndex(coll))
}
