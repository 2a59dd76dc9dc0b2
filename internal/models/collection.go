package models

import (
	"fmt"
	"strings"
)

// Collection names one of the JSON-backed content lists.
type Collection string

const (
	News     Collection = "news"
	Programs Collection = "programs"
	Live     Collection = "live"
	Jobs     Collection = "jobs"
)

// Collections lists every collection in landing-page order.
var Collections = []Collection{News, Programs, Live, Jobs}

// ParseCollection validates a collection name, case-insensitively.
func ParseCollection(name string) (Collection, error) {
	c := Collection(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Collections {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", name)
}

// FileName is the JSON document the collection is published as.
func (c Collection) FileName() string {
	return string(c) + ".json"
}
