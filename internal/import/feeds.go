package importfeeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reddot-watch/feedfetcher"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"

	"abbaytv/portal/internal/models"
	"abbaytv/portal/internal/newsfile"
)

const (
	defaultCategory      = "General"
	maxDescriptionLength = 600
)

// Entry is one headline pulled from a feed.
type Entry struct {
	URL         string
	Headline    string
	Content     string
	PublishedAt time.Time
}

type fetchFunc func(ctx context.Context, feedURL string) ([]Entry, error)

// Config tunes the feed fetcher.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	MaxItems       int
	MaxAge         time.Duration
}

// Options decide how imported headlines are filed.
type Options struct {
	Category string
	Author   string
	Featured bool
}

// Summary reports what an import did.
type Summary struct {
	Fetched    int
	Added      int
	Duplicates int
	Skipped    int
	Total      int
}

// Importer appends feed headlines to the news document
type Importer struct {
	newsPath  string
	indexPath string
	fetch     fetchFunc
	now       func() time.Time
}

// NewImporter creates an importer writing to newsPath and, when it exists, indexPath
func NewImporter(newsPath, indexPath string, cfg Config) *Importer {
	fetcher := feedfetcher.NewFeedFetcher(feedfetcher.Config{
		UserAgent:            cfg.UserAgent,
		RequestTimeout:       cfg.RequestTimeout,
		MaxItems:             cfg.MaxItems,
		MaxHeadingLength:     200,
		MaxAge:               cfg.MaxAge,
		FutureDriftTolerance: 12 * time.Hour,
	})

	return &Importer{
		newsPath:  newsPath,
		indexPath: indexPath,
		fetch: func(ctx context.Context, feedURL string) ([]Entry, error) {
			items, err := fetcher.FetchAndProcess(ctx, feedURL)
			if err != nil {
				return nil, err
			}
			entries := make([]Entry, 0, len(items))
			for _, item := range items {
				entries = append(entries, Entry{
					URL:         item.URL,
					Headline:    item.Headline,
					Content:     item.Content,
					PublishedAt: item.PublishedAt,
				})
			}
			return entries, nil
		},
		now: time.Now,
	}
}

// Import fetches feedURL and appends every headline not already present,
// matched by title or source link.
func (i *Importer) Import(ctx context.Context, feedURL string, opts Options) (Summary, error) {
	log.Info().Str("feed", feedURL).Str("news", i.newsPath).Msg("Starting feed import")

	if _, err := url.ParseRequestURI(feedURL); err != nil {
		return Summary{}, fmt.Errorf("invalid feed URL %q: %w", feedURL, err)
	}

	entries, err := i.fetch(ctx, feedURL)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch feed: %w", err)
	}

	existing, err := newsfile.Read(i.newsPath)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read news file: %w", err)
	}

	folder := cases.Fold()
	seenTitles := make(map[string]bool, len(existing))
	seenLinks := make(map[string]bool, len(existing))
	for _, r := range existing {
		if t := strings.TrimSpace(r.Text("title")); t != "" {
			seenTitles[folder.String(t)] = true
		}
		if u := strings.TrimSpace(r.Text("source_url")); u != "" {
			seenLinks[u] = true
		}
	}

	category := strings.TrimSpace(opts.Category)
	if category == "" {
		category = defaultCategory
	}
	author := strings.TrimSpace(opts.Author)
	if author == "" {
		author = hostOf(feedURL)
	}

	summary := Summary{Fetched: len(entries)}
	var fresh []models.NewsItem

	for _, entry := range entries {
		title := strings.TrimSpace(entry.Headline)
		link := strings.TrimSpace(entry.URL)

		logger := log.With().Str("url", link).Str("title", title).Logger()

		if title == "" {
			logger.Debug().Msg("Skipping entry without headline")
			summary.Skipped++
			continue
		}

		key := folder.String(title)
		if seenTitles[key] || (link != "" && seenLinks[link]) {
			logger.Debug().Msg("Duplicate headline")
			summary.Duplicates++
			continue
		}
		seenTitles[key] = true
		if link != "" {
			seenLinks[link] = true
		}

		item := models.NewsItem{
			Title:       title,
			Description: truncate(strings.TrimSpace(entry.Content), maxDescriptionLength),
			Category:    category,
			Author:      author,
			IsFeatured:  opts.Featured,
			SourceURL:   link,
		}
		if !entry.PublishedAt.IsZero() {
			item.Date = entry.PublishedAt.UTC().Format("2006-01-02")
		}
		fresh = append(fresh, item)
	}

	summary.Total = len(existing)
	if len(fresh) > 0 {
		added, total, err := newsfile.AppendAll(i.newsPath, fresh, i.now())
		if err != nil {
			return summary, fmt.Errorf("failed to append news: %w", err)
		}
		summary.Added = len(added)
		summary.Total = total

		if err := newsfile.UpdateIndexStats(i.indexPath, total); err != nil {
			return summary, fmt.Errorf("failed to update index stats: %w", err)
		}
	}

	log.Info().
		Int("fetched", summary.Fetched).
		Int("added", summary.Added).
		Int("duplicates", summary.Duplicates).
		Int("skipped", summary.Skipped).
		Msg("Import summary")

	return summary, nil
}

func hostOf(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// truncate cuts s to at most n runes, on a word boundary when one is near.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > n/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}
