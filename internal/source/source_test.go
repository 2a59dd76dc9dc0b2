package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abbaytv/portal/internal/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{name: "array of objects", input: `[{"id":1},{"id":2}]`, wantLen: 2},
		{name: "empty array", input: `[]`, wantLen: 0},
		{name: "object root is wrapped", input: `{"id":7,"title":"Only"}`, wantLen: 1},
		{name: "non-object elements dropped", input: `[{"id":1}, 3, "x", null]`, wantLen: 1},
		{name: "scalar root", input: `42`, wantErr: true},
		{name: "string root", input: `"news"`, wantErr: true},
		{name: "null root", input: `null`, wantErr: true},
		{name: "invalid json", input: `[{"id":`, wantErr: true},
		{name: "empty document", input: ``, wantErr: true},
		{name: "trailing data", input: `[] []`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Decode(strings.NewReader(tt.input))
			require.NotNil(t, items)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, items)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.wantLen)
		})
	}
}

func TestDecodeKeepsNumbersExact(t *testing.T) {
	items, err := Decode(strings.NewReader(`[{"id": 9007199254740993}]`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	id, ok := items[0].NumericID()
	require.True(t, ok)
	assert.Equal(t, int64(9007199254740993), id)
}

func TestHTTPSourceLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/news.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":1,"title":"Abbay News"},{"id":2,"title":"Other"}]`))
		case "/data/programs.json":
			_, _ = w.Write([]byte(`{"id":1,"title":"Weekly"}`))
		case "/data/live.json":
			_, _ = w.Write([]byte(`not json`))
		case "/data/jobs.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/data", srv.Client())
	require.NoError(t, err)
	src.initialBackoff = time.Millisecond
	assert.Equal(t, srv.URL+"/data/news.json", src.URL(models.News))

	ctx := context.Background()
	assert.Len(t, src.Load(ctx, models.News), 2)

	programs := src.Load(ctx, models.Programs)
	require.Len(t, programs, 1)
	assert.Equal(t, "Weekly", programs[0].Text("title"))

	live := src.Load(ctx, models.Live)
	require.NotNil(t, live)
	assert.Empty(t, live)

	jobs := src.Load(ctx, models.Jobs)
	require.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestHTTPSourceNotFoundYieldsEmpty(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)

	items := src.Load(context.Background(), models.News)
	require.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, int32(1), hits.Load(), "client errors are not retried")
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)
	src.initialBackoff = time.Millisecond

	assert.Len(t, src.Load(context.Background(), models.Jobs), 1)
	assert.Equal(t, int32(3), hits.Load())
}

func TestHTTPSourceGivesUpAfterMaxRetries(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, srv.Client())
	require.NoError(t, err)
	src.initialBackoff = time.Millisecond

	assert.Empty(t, src.Load(context.Background(), models.Live))
	assert.Equal(t, int32(defaultMaxRetries+1), hits.Load())
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &statusError{code: 500, status: "500 Internal Server Error"}, true},
		{"rate limited", &statusError{code: 429, status: "429 Too Many Requests"}, true},
		{"not found", &statusError{code: 404, status: "404 Not Found"}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"truncated body", fmt.Errorf("read: %w", io.ErrUnexpectedEOF), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetriable(tt.err))
		})
	}
}

func TestHTTPSourceUnreachableYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	src, err := NewHTTPSource(base, &http.Client{Timeout: time.Second})
	require.NoError(t, err)
	src.initialBackoff = time.Millisecond

	items := src.Load(context.Background(), models.News)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDirSourceLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "news.json"), []byte(`[{"id":1},{"id":2},{"id":3}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jobs.json"), []byte(`{{`), 0o644))

	src, err := NewDirSource(dir)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Len(t, src.Load(ctx, models.News), 3)

	jobs := src.Load(ctx, models.Jobs)
	require.NotNil(t, jobs)
	assert.Empty(t, jobs)

	missing := src.Load(ctx, models.Live)
	require.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestDirSourceCancelledContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "news.json"), []byte(`[{"id":1}]`), 0o644))

	src, err := NewDirSource(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, src.Load(ctx, models.News))
}

func TestNewLoader(t *testing.T) {
	dir := t.TempDir()

	l, err := NewLoader(dir, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, l)

	l, err = NewLoader("https://cdn.example.com/content", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, l)

	_, err = NewLoader(filepath.Join(dir, "missing"), time.Second)
	assert.Error(t, err)

	file := filepath.Join(dir, "file.json")
	require.NoError(t, os.WriteFile(file, []byte(`[]`), 0o644))
	_, err = NewLoader(file, time.Second)
	assert.Error(t, err)
}
