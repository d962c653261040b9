package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/internal/orders"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

const filenamePrefix = "fig-preorders"

// Document is an export ready to be downloaded.
type Document struct {
	Filename string
	Body     []byte
	Count    int
}

// Filename names a full export by UTC date and a selection export by UTC timestamp.
func Filename(selection bool, now time.Time) string {
	now = now.UTC()
	if selection {
		return fmt.Sprintf("%s-selection-%s.json", filenamePrefix, now.Format("20060102-150405"))
	}
	return fmt.Sprintf("%s-%s.json", filenamePrefix, now.Format("2006-01-02"))
}

// Export serializes all orders, or only those whose id is in ids when ids is
// non-empty. Collection order is kept.
func Export(all []orders.Order, ids []string, now time.Time) (Document, error) {
	selection := len(ids) > 0
	picked := all
	if selection {
		picked = orders.NewCollection(all).Select(ids)
		if len(picked) == 0 {
			return Document{}, pkgerrors.New(pkgerrors.CodeValidation, "no orders selected").
				WithDetails(map[string]string{"ids": "match no order"})
		}
	}
	if picked == nil {
		picked = []orders.Order{}
	}
	body, err := json.MarshalIndent(picked, "", "  ")
	if err != nil {
		return Document{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode export")
	}
	return Document{Filename: Filename(selection, now), Body: body, Count: len(picked)}, nil
}

// Import parses an uploaded document. Anything but a JSON array of orders is
// MALFORMED_INPUT.
func Import(r io.Reader) ([]orders.Order, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "read import")
	}
	return linkedfile.DecodeArray[orders.Order](data)
}
