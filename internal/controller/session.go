package controller

import (
	"sync"
	"time"

	"abbaytv/portal/internal/debounce"
	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/store"
)

// Session is one browsing view of a collection: its filters, its page cursor
// and the debounced search box feeding them.
type Session struct {
	ctrl *Controller
	coll models.Collection

	mu   sync.Mutex
	view *store.View
	gen  uint64
	seen bool

	search   *debounce.Debouncer
	onResult func(Result)
}

// NewSession opens a view on coll. onResult, when set, receives the result of
// every debounced search.
func (c *Controller) NewSession(coll models.Collection, searchDebounce time.Duration, onResult func(Result)) *Session {
	return &Session{
		ctrl:     c,
		coll:     coll,
		view:     store.NewView(),
		search:   debounce.New(searchDebounce),
		onResult: onResult,
	}
}

// Collection is the collection this session browses.
func (s *Session) Collection() models.Collection {
	return s.coll
}

// Filters returns the current selections.
func (s *Session) Filters() store.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Filters()
}

// Current re-runs the pipeline at the current cursor.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run()
}

// SetFilter changes one selection and starts over at page 1.
func (s *Session) SetFilter(field store.Field, value string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.view.SetFilter(field, value); err != nil {
		return Result{}, err
	}
	return s.run(), nil
}

// ResetFilters restores the default selections.
func (s *Session) ResetFilters() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.ResetFilters()
	return s.run()
}

// LoadMore reveals the next page. Once everything is visible it is a no-op.
func (s *Session) LoadMore() Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.run()
	if !current.HasMore {
		return current
	}
	s.view.AdvancePage(s.coll)
	return s.run()
}

// SearchInput records a keystroke in the search box. Only the last input
// within the debounce window runs the pipeline.
func (s *Session) SearchInput(term string) {
	s.search.Trigger(func() {
		res, err := s.SetFilter(store.FieldSearch, term)
		if err == nil && s.onResult != nil {
			s.onResult(res)
		}
	})
}

// Close drops any pending search.
func (s *Session) Close() {
	s.search.Stop()
}

// run must be called with mu held.
func (s *Session) run() Result {
	// a reload replaced the list, so the cursor starts over
	gen := s.ctrl.store.Generation(s.coll)
	if s.seen && gen != s.gen {
		s.view.ResetPage(s.coll)
	}
	s.gen, s.seen = gen, true

	return s.ctrl.Results(s.coll, s.view)
}
