package pagination

import (
	"testing"

	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

func identity(s string) string { return s }

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(MaxLimit + 1); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := NormalizeLimit(7); got != 7 {
		t.Fatalf("expected limit passthrough, got %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	encoded := EncodeCursor(Cursor{After: "order|with|pipes"})
	decoded, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if decoded.After != "order|with|pipes" {
		t.Fatalf("unexpected cursor %q", decoded.After)
	}
	if c, err := ParseCursor(" "); err != nil || c != nil {
		t.Fatalf("blank cursor should be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("!!!"); err == nil {
		t.Fatalf("expected garbage cursor to fail")
	}
}

func TestPaginateWalksAllPages(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	var seen []string
	params := Params{Limit: 2}
	for i := 0; i < 5; i++ {
		page, err := Paginate(items, identity, params)
		if err != nil {
			t.Fatalf("paginate: %v", err)
		}
		seen = append(seen, page.Items...)
		if page.NextCursor == "" {
			break
		}
		params.Cursor = page.NextCursor
	}
	if len(seen) != len(items) {
		t.Fatalf("expected every item once, got %v", seen)
	}
}

func TestPaginateSurvivesInsertAhead(t *testing.T) {
	page, err := Paginate([]string{"c", "b", "a"}, identity, Params{Limit: 1})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	next, err := Paginate([]string{"d", "c", "b", "a"}, identity, Params{Limit: 1, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if len(next.Items) != 1 || next.Items[0] != "b" {
		t.Fatalf("expected b after c, got %v", next.Items)
	}
}

func TestPaginateRejectsStaleCursor(t *testing.T) {
	cursor := EncodeCursor(Cursor{After: "gone"})
	_, err := Paginate([]string{"a"}, identity, Params{Cursor: cursor})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
