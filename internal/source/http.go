package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"abbaytv/portal/internal/models"
)

// HTTPSource fetches <base>/<collection>.json. Server errors, rate limiting
// and dropped connections are retried with exponential backoff.
type HTTPSource struct {
	base *url.URL
	http *http.Client

	maxRetries     int
	initialBackoff time.Duration
}

// NewHTTPSource resolves collection documents relative to baseURL.
func NewHTTPSource(baseURL string, httpClient *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid content origin %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPSource{
		base:           u,
		http:           httpClient,
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
	}, nil
}

// URL returns where a collection is fetched from.
func (s *HTTPSource) URL(c models.Collection) string {
	return s.base.ResolveReference(&url.URL{Path: c.FileName()}).String()
}

// Load fetches and decodes a collection. Failures are logged and yield [].
func (s *HTTPSource) Load(ctx context.Context, c models.Collection) []models.Record {
	target := s.URL(c)

	var body []byte
	err := retryWithBackoff(ctx, s.maxRetries, s.initialBackoff, func() error {
		var fetchErr error
		body, fetchErr = s.fetch(ctx, target)
		return fetchErr
	})
	if err != nil {
		log.Error().Err(err).Str("collection", string(c)).Str("url", target).Msg("Failed to load collection")
		return []models.Record{}
	}
	return decodeBody(c, target, body)
}

func (s *HTTPSource) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode, status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}
