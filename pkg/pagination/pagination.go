package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"

	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows a single page can hold.
	MaxLimit = 100

	cursorPrefix = "after|"
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Page is one slice of a list plus the cursor of the next slice, empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Cursor points just after the item with key After.
type Cursor struct {
	After string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds an opaque cursor string.
func EncodeCursor(cursor Cursor) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + cursor.After))
}

// ParseCursor decodes the cursor string back into its components. A blank
// value yields nil.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	after, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok || after == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	return &Cursor{After: after}, nil
}

// Paginate returns the page of items that follows params.Cursor, keyed by key.
// Items inserted ahead of the cursor do not shift the next page.
func Paginate[T any](items []T, key func(T) string, params Params) (Page[T], error) {
	limit := NormalizeLimit(params.Limit)
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
			WithDetails(map[string]string{"cursor": "is not a valid cursor"})
	}

	start := 0
	if cursor != nil {
		start = -1
		for i, item := range items {
			if key(item) == cursor.After {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return Page[T]{}, pkgerrors.New(pkgerrors.CodeValidation, "cursor no longer matches an item").
				WithDetails(map[string]string{"cursor": "refers to a removed item"})
		}
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := Page[T]{Items: append([]T{}, items[start:end]...)}
	if end < len(items) && end > start {
		page.NextCursor = EncodeCursor(Cursor{After: key(items[end-1])})
	}
	return page, nil
}
