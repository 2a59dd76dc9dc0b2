package controller

import (
	"time"

	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/query"
)

// Section sizes on the home page.
const (
	FeaturedNewsLimit    = 4
	PopularProgramsLimit = 4
	LiveNowLimit         = 3
	JobHighlightsLimit   = 3

	urgentWindow = 7 * 24 * time.Hour
)

// Stats are the counters shown on the home page.
type Stats struct {
	Jobs       int `json:"job_count"`
	UrgentJobs int `json:"urgent_jobs"`
	LiveNow    int `json:"live_now"`
	News       int `json:"news_count"`
	Programs   int `json:"program_count"`
}

// Home holds the sections of the landing page.
type Home struct {
	FeaturedNews    []models.Record `json:"featured_news"`
	PopularPrograms []models.Record `json:"popular_programs"`
	LiveNow         []models.Record `json:"live_now"`
	JobHighlights   []models.Record `json:"job_highlights"`
	Stats           Stats           `json:"stats"`
}

// Home builds the landing page from the cache.
func (c *Controller) Home(now time.Time) Home {
	news := c.store.Collection(models.News)
	programs := c.store.Collection(models.Programs)
	live := c.store.Collection(models.Live)
	jobs := c.store.Collection(models.Jobs)

	newsSchema, _ := query.SchemaFor(models.News)
	featured := query.ByType(newsSchema, news, "featured")
	featured = query.Sort(newsSchema, featured, query.SortNewest)

	programSchema, _ := query.SchemaFor(models.Programs)
	popular := query.Sort(programSchema, programs, query.SortNewest)

	liveSchema, _ := query.SchemaFor(models.Live)
	liveNow := query.ByType(liveSchema, live, "live")

	jobSchema, _ := query.SchemaFor(models.Jobs)
	// latest deadline first; jobs without one go last
	highlights := query.Sort(jobSchema, jobs, query.SortNewest)

	return Home{
		FeaturedNews:    head(featured, FeaturedNewsLimit),
		PopularPrograms: head(popular, PopularProgramsLimit),
		LiveNow:         head(liveNow, LiveNowLimit),
		JobHighlights:   head(highlights, JobHighlightsLimit),
		Stats: Stats{
			Jobs:       len(jobs),
			UrgentJobs: countUrgent(jobs, now),
			LiveNow:    len(liveNow),
			News:       len(news),
			Programs:   len(programs),
		},
	}
}

// SearchResults are the cross-collection matches for one term.
type SearchResults struct {
	Term     string          `json:"term"`
	News     []models.Record `json:"news"`
	Programs []models.Record `json:"programs"`
	Live     []models.Record `json:"live"`
	Jobs     []models.Record `json:"jobs"`
}

// SearchAll searches every collection, capped at the home section sizes.
// Terms shorter than the minimum search length match everything.
func (c *Controller) SearchAll(term string) SearchResults {
	search := func(coll models.Collection, limit int) []models.Record {
		schema, _ := query.SchemaFor(coll)
		return head(query.BySearch(schema, c.store.Collection(coll), term), limit)
	}

	return SearchResults{
		Term:     term,
		News:     search(models.News, FeaturedNewsLimit),
		Programs: search(models.Programs, PopularProgramsLimit),
		Live:     search(models.Live, LiveNowLimit),
		Jobs:     search(models.Jobs, JobHighlightsLimit),
	}
}

// countUrgent counts jobs whose deadline falls within the next seven days.
func countUrgent(jobs []models.Record, now time.Time) int {
	until := now.Add(urgentWindow)
	n := 0
	for _, job := range jobs {
		deadline, ok := query.ParseDate(job.Text("deadline"))
		if !ok {
			continue
		}
		if !deadline.Before(now) && !deadline.After(until) {
			n++
		}
	}
	return n
}

func head(items []models.Record, n int) []models.Record {
	if items == nil {
		return []models.Record{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
