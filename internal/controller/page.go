package controller

import (
	"path"
	"strings"

	"abbaytv/portal/internal/models"
)

// Page is one screen of the portal.
type Page string

const (
	PageIndex    Page = "index"
	PageNews     Page = "news"
	PagePrograms Page = "programs"
	PageLive     Page = "live"
	PageJobs     Page = "jobs"
	PageContact  Page = "contact"
)

// PageFromPath maps a request path such as "/news.html" to its page. The
// root path is the index; anything unrecognised reports ok=false.
func PageFromPath(p string) (Page, bool) {
	name := strings.TrimSuffix(path.Base("/"+strings.TrimSpace(p)), ".html")
	if name == "" || name == "/" || name == "." {
		return PageIndex, true
	}

	switch page := Page(strings.ToLower(name)); page {
	case PageIndex, PageNews, PagePrograms, PageLive, PageJobs, PageContact:
		return page, true
	default:
		return "", false
	}
}

// Collections lists what a page needs loaded.
func (p Page) Collections() []models.Collection {
	switch p {
	case PageIndex:
		return models.Collections
	case PageNews:
		return []models.Collection{models.News}
	case PagePrograms:
		return []models.Collection{models.Programs}
	case PageLive:
		return []models.Collection{models.Live}
	case PageJobs:
		return []models.Collection{models.Jobs}
	default:
		return nil
	}
}

// AutoRefreshes reports whether a browsing view of this page reloads on a timer.
func (p Page) AutoRefreshes() bool {
	switch p {
	case PageNews, PagePrograms, PageLive:
		return true
	default:
		return false
	}
}
