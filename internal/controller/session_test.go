package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/store"
)

func TestSessionLoadMoreStopsAtEnd(t *testing.T) {
	st := store.New()
	st.SetCollection(models.News, records("n", 30))
	ctrl := New(nil, st, 12)

	sess := ctrl.NewSession(models.News, time.Millisecond, nil)
	defer sess.Close()

	assert.Len(t, sess.Current().Items, 12)
	assert.Len(t, sess.LoadMore().Items, 24)

	res := sess.LoadMore()
	assert.Len(t, res.Items, 30)
	assert.False(t, res.HasMore)
	assert.Equal(t, 3, res.PageIndex)

	res = sess.LoadMore()
	assert.Len(t, res.Items, 30)
	assert.Equal(t, 3, res.PageIndex)
}

func TestSessionFilterChangeResetsCursor(t *testing.T) {
	st := store.New()
	st.SetCollection(models.News, records("n", 30))
	ctrl := New(nil, st, 12)
	sess := ctrl.NewSession(models.News, time.Millisecond, nil)
	defer sess.Close()

	sess.LoadMore()
	res, err := sess.SetFilter(store.FieldSort, "za")
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageIndex)
	assert.Len(t, res.Items, 12)

	_, err = sess.SetFilter(store.Field("bogus"), "x")
	assert.Error(t, err)

	sess.LoadMore()
	res = sess.ResetFilters()
	assert.Equal(t, 1, res.PageIndex)
	assert.Equal(t, store.DefaultFilters(), sess.Filters())
}

func TestSessionReloadResetsCursor(t *testing.T) {
	st := store.New()
	st.SetCollection(models.Jobs, records("j", 30))
	ctrl := New(nil, st, 12)
	sess := ctrl.NewSession(models.Jobs, time.Millisecond, nil)
	defer sess.Close()

	assert.Equal(t, 2, sess.LoadMore().PageIndex)
	assert.Equal(t, 2, sess.Current().PageIndex)

	st.SetCollection(models.Jobs, records("j", 30))
	assert.Equal(t, 1, sess.Current().PageIndex)
}

func TestSessionSearchInputIsDebounced(t *testing.T) {
	st := store.New()
	st.SetCollection(models.News, []models.Record{
		{"id": 1, "title": "Abbay News"},
		{"id": 2, "title": "Abebe wins"},
		{"id": 3, "title": "Other"},
	})
	ctrl := New(nil, st, 12)

	results := make(chan Result, 4)
	sess := ctrl.NewSession(models.News, 20*time.Millisecond, func(r Result) { results <- r })
	defer sess.Close()

	sess.SearchInput("a")
	sess.SearchInput("ab")
	sess.SearchInput("abb")

	select {
	case res := <-results:
		require.Len(t, res.Items, 1)
		assert.Equal(t, "1", res.Items[0].ID())
	case <-time.After(time.Second):
		t.Fatal("debounced search never ran")
	}

	select {
	case res := <-results:
		t.Fatalf("unexpected extra search result: %+v", res)
	case <-time.After(60 * time.Millisecond):
	}

	assert.Equal(t, "abb", sess.Filters().Search)
}
