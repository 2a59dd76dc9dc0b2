package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"abbaytv/portal/internal/controller"
	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/server/api"
)

type memoryContacts struct {
	mu       sync.Mutex
	messages []models.ContactMessage
}

func (m *memoryContacts) Append(_ context.Context, msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memoryContacts) List(_ context.Context, _ int) ([]models.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ContactMessage(nil), m.messages...), nil
}

type staticLoader struct {
	mu    sync.Mutex
	data  map[models.Collection][]models.Record
	loads int
}

func (l *staticLoader) Load(_ context.Context, c models.Collection) []models.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	return l.data[c]
}

func (l *staticLoader) Loads() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

func newsFixture(n int) []models.Record {
	items := make([]models.Record, n)
	for i := range items {
		category := "Sports"
		if i%2 == 0 {
			category = "Politics"
		}
		items[i] = models.Record{
			"id":       json.Number(fmt.Sprint(i + 1)),
			"title":    fmt.Sprintf("Story %02d", i+1),
			"category": category,
			"date":     fmt.Sprintf("2024-01-%02d", i+1),
		}
	}
	return items
}

type ServerSuite struct {
	suite.Suite

	loader   *staticLoader
	ctrl     *controller.Controller
	contacts *memoryContacts
	srv      *httptest.Server
	stop     func()
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.loader = &staticLoader{data: map[models.Collection][]models.Record{
		models.News: newsFixture(30),
		models.Jobs: {
			{"id": 1, "title": "Reporter", "job_type": "Full-time", "location": "Addis Ababa", "deadline": "2024-06-03"},
			{"id": 2, "title": "Editor", "job_type": "Part-time", "location": "Bahir Dar", "deadline": "2024-06-20"},
		},
		models.Live: {{"id": 1, "title": "Parliament", "is_live": true}},
	}}
	s.ctrl = controller.New(s.loader, nil, 12)
	s.contacts = &memoryContacts{}

	h, stop := NewHandler(s.ctrl, s.contacts, zerolog.Nop(), Options{
		APIKey:               "secret",
		ContactRatePerMinute: 2,
		RefreshDebounce:      100 * time.Millisecond,
		RefreshTimeout:       time.Second,
	})
	s.srv = httptest.NewServer(h)
	s.stop = stop
}

func (s *ServerSuite) TearDownTest() {
	s.stop()
	s.srv.Close()
}

func (s *ServerSuite) load() {
	s.Require().NoError(s.ctrl.LoadPage(context.Background(), controller.PageIndex))
}

func (s *ServerSuite) getJSON(path string, out any) int {
	resp, err := http.Get(s.srv.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *ServerSuite) TestHealthReportsLoading() {
	resp, err := http.Get(s.srv.URL + "/health")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)

	s.load()

	resp, err = http.Get(s.srv.URL + "/health")
	s.Require().NoError(err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", string(body))
}

func (s *ServerSuite) TestCollectionPagesWithCursor() {
	s.load()

	var first api.CollectionResponse
	s.Equal(http.StatusOK, s.getJSON("/v1/collections/news", &first))
	s.Len(first.Items, 12)
	s.Equal(30, first.Total)
	s.True(first.HasMore)
	s.Require().NotNil(first.NextCursor)
	s.Equal("30", models.Record(first.Items[0]).ID())
	s.Equal([]string{"Politics", "Sports"}, first.Filters.Categories)
	s.Equal([]string{"all", "featured", "video"}, first.Filters.Types)

	var second api.CollectionResponse
	s.getJSON("/v1/collections/news?cursor="+url.QueryEscape(*first.NextCursor), &second)
	s.Len(second.Items, 24)
	s.Equal(2, second.Page)

	var last api.CollectionResponse
	s.getJSON("/v1/collections/news?page=3", &last)
	s.Len(last.Items, 30)
	s.False(last.HasMore)
	s.Nil(last.NextCursor)
}

func (s *ServerSuite) TestStaleCursorRestartsAtFirstPage() {
	s.load()

	var first api.CollectionResponse
	s.getJSON("/v1/collections/news", &first)
	s.Require().NotNil(first.NextCursor)

	// reload replaces the list
	s.load()

	var again api.CollectionResponse
	s.getJSON("/v1/collections/news?cursor="+url.QueryEscape(*first.NextCursor), &again)
	s.Equal(1, again.Page)
	s.Len(again.Items, 12)

	// a cursor issued for a different query restarts too
	var filtered api.CollectionResponse
	s.getJSON("/v1/collections/news?category=politics&cursor="+url.QueryEscape(*first.NextCursor), &filtered)
	s.Equal(1, filtered.Page)
}

func (s *ServerSuite) TestCollectionFilters() {
	s.load()

	var politics api.CollectionResponse
	s.getJSON("/v1/collections/news?category=politics&sort=oldest", &politics)
	s.Equal(15, politics.Total)
	s.Equal("1", models.Record(politics.Items[0]).ID())

	var search api.CollectionResponse
	s.getJSON("/v1/collections/news?q=story%2007", &search)
	s.Equal(1, search.Total)

	var jobs api.CollectionResponse
	s.getJSON("/v1/collections/jobs?type=part-time", &jobs)
	s.Equal(1, jobs.Total)
	s.Contains(jobs.Filters.Sorts, "deadline")
	s.Equal([]string{"Addis Ababa", "Bahir Dar"}, jobs.Filters.Locations)

	var located api.CollectionResponse
	s.getJSON("/v1/collections/jobs?location=addis", &located)
	s.Equal(1, located.Total)

	var empty api.CollectionResponse
	s.getJSON("/v1/collections/programs", &empty)
	s.True(empty.Empty)
	s.NotNil(empty.Items)
	s.Equal("No programs found", empty.Message)
}

func (s *ServerSuite) TestCollectionBadRequests() {
	s.Equal(http.StatusNotFound, s.getJSON("/v1/collections/weather", nil))
	s.Equal(http.StatusBadRequest, s.getJSON("/v1/collections/news?page=0", nil))
	s.Equal(http.StatusBadRequest, s.getJSON("/v1/collections/news?page=abc", nil))
	s.Equal(http.StatusBadRequest, s.getJSON("/v1/collections/news?cursor=%25%25", nil))
}

func (s *ServerSuite) TestGetItem() {
	s.load()

	var item map[string]any
	s.Equal(http.StatusOK, s.getJSON("/v1/collections/jobs/2", &item))
	s.Equal("Editor", item["title"])

	s.Equal(http.StatusNotFound, s.getJSON("/v1/collections/jobs/99", nil))
}

func (s *ServerSuite) TestHomeAndSearch() {
	s.load()

	var home controller.Home
	s.Equal(http.StatusOK, s.getJSON("/v1/home", &home))
	s.Equal(2, home.Stats.Jobs)
	s.Equal(1, home.Stats.LiveNow)
	s.Len(home.LiveNow, 1)
	s.Len(home.JobHighlights, 2)

	var results controller.SearchResults
	s.getJSON("/v1/home?q=reporter", &results)
	s.Equal("reporter", results.Term)
	s.Len(results.Jobs, 1)
	s.Empty(results.News)
}

func (s *ServerSuite) postContact(body string) *http.Response {
	resp, err := http.Post(s.srv.URL+"/v1/contact", "application/json", strings.NewReader(body))
	s.Require().NoError(err)
	return resp
}

func (s *ServerSuite) TestContactSubmission() {
	resp := s.postContact(`{"name":"Abebe","email":"abebe@example.com","message":"Hello"}`)
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	var body api.ContactResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(models.ContactMessageStatusNew, body.Status)
	s.NotEmpty(body.ID)

	stored, _ := s.contacts.List(context.Background(), 0)
	s.Require().Len(stored, 1)
	s.Equal("Abebe", stored[0].Name)
}

func (s *ServerSuite) TestContactValidation() {
	resp := s.postContact(`{"name":"Abebe","email":"not-an-email","message":"Hello"}`)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	var body api.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("email", body.Field)

	bad := s.postContact(`{not json`)
	bad.Body.Close()
	s.Equal(http.StatusBadRequest, bad.StatusCode)
}

func (s *ServerSuite) TestContactRateLimited() {
	statuses := make([]int, 0, 3)
	for range 3 {
		resp := s.postContact(`{"name":"A","email":"a@b.co","message":"m"}`)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}
	s.Equal([]int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, statuses)
}

func (s *ServerSuite) TestContactExportRequiresKey() {
	resp, err := http.Get(s.srv.URL + "/v1/contact-messages")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	s.postContact(`{"name":"Abebe","email":"abebe@example.com","message":"Hi, there"}`).Body.Close()

	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+"/v1/contact-messages", nil)
	req.Header.Set("X-API-Key", "secret")
	resp, err = http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("text/csv", resp.Header.Get("Content-Type"))

	rows, err := csv.NewReader(resp.Body).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("id", rows[0][0])
	s.Equal("Hi, there", rows[1][7])
}

func (s *ServerSuite) TestRefreshIsDebounced() {
	send := func(key string) int {
		req, _ := http.NewRequest(http.MethodPost, s.srv.URL+"/v1/refresh", nil)
		req.Header.Set("X-API-Key", key)
		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		resp.Body.Close()
		return resp.StatusCode
	}

	s.Equal(http.StatusUnauthorized, send("wrong"))

	for range 3 {
		s.Equal(http.StatusAccepted, send("secret"))
	}

	s.Eventually(func() bool {
		return s.ctrl.Store().Generation(models.News) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(200 * time.Millisecond)
	s.Equal(uint64(1), s.ctrl.Store().Generation(models.News))
	s.Equal(len(models.Collections), s.loader.Loads())
}

func TestAPIKeyMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	open := apiKeyMiddleware("")(ok)
	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	guarded := apiKeyMiddleware("k")(ok)
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "k")
	rec = httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRunServerStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServer(ctx, http.NotFoundHandler(), "127.0.0.1:0", zerolog.Nop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
