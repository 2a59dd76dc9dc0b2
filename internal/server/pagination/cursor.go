package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const cursorSeparator = ","

// Cursor is the decoded form of a load-more token: the page to show next and
// the list it was issued for.
type Cursor struct {
	Page       int
	Generation uint64
	QueryKey   string
}

// EncodeCursor creates an opaque cursor string from a page index, the
// collection generation and the query fingerprint.
func EncodeCursor(c Cursor) string {
	key := fmt.Sprintf("%d%s%d%s%s", c.Page, cursorSeparator, c.Generation, cursorSeparator, c.QueryKey)
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor parses the opaque cursor string back into its parts.
func DecodeCursor(encodedCursor string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(encodedCursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	parts := strings.SplitN(string(decodedBytes), cursorSeparator, 3)
	if len(parts) != 3 {
		return Cursor{}, fmt.Errorf("invalid cursor format")
	}

	page, err := strconv.Atoi(parts[0])
	if err != nil || page < 1 {
		return Cursor{}, fmt.Errorf("invalid page in cursor: %q", parts[0])
	}

	gen, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid generation in cursor: %w", err)
	}

	return Cursor{Page: page, Generation: gen, QueryKey: parts[2]}, nil
}

// Matches reports whether the cursor was issued for the given list. A cursor
// for an older snapshot or a different query starts over at page 1.
func (c Cursor) Matches(generation uint64, queryKey string) bool {
	return c.Generation == generation && c.QueryKey == queryKey
}
