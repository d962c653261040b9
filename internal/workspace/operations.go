package workspace

import (
	"context"
	"io"

	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/internal/orders"
	"github.com/figpreorders/figorders/internal/transfer"
	"github.com/figpreorders/figorders/internal/varieties"
	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

// ListOrders returns the orders matching query and status in stored order.
func (w *Workspace) ListOrders(query, status string) []orders.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.orders.Filter(query, status)
}

// GetOrder returns a single order.
func (w *Workspace) GetOrder(id string) (orders.Order, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	order, ok := w.orders.Find(id)
	if !ok {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// SetStatus moves an order to status and commits the collection.
func (w *Workspace) SetStatus(ctx context.Context, id string, status enums.OrderStatus) (orders.Order, Saved, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	order, err := w.orders.SetStatus(id, status, w.now())
	if err != nil {
		return orders.Order{}, Saved{}, err
	}
	return order, w.commitLocked(ctx, enums.CollectionOrders), nil
}

// DeleteOrder removes an order. Deleting the order being edited drops the draft.
func (w *Workspace) DeleteOrder(ctx context.Context, id string, confirmed bool) (Saved, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.orders.Delete(id, confirmed); err != nil {
		return Saved{}, err
	}
	if editing, ok := w.draft.EditingID(); ok && editing == id {
		w.draft.Reset()
	}
	return w.commitLocked(ctx, enums.CollectionOrders), nil
}

// Stats aggregates the whole collection.
func (w *Workspace) Stats() orders.Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return orders.ComputeStats(w.orders.Snapshot())
}

// Draft returns the current draft.
func (w *Workspace) Draft() orders.DraftState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.State()
}

// BeginEdit loads an existing order into the draft.
func (w *Workspace) BeginEdit(id string) (orders.DraftState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	order, ok := w.orders.Find(id)
	if !ok {
		return orders.DraftState{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	w.draft.BeginEdit(order)
	return w.draft.State(), nil
}

// AddDraftItem appends a line to the draft. A nil unitPrice takes the catalog price.
func (w *Workspace) AddDraftItem(variety string, quantity int, unitPrice *float64) (orders.DraftState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.draft.AddItem(w.catalog, variety, quantity, unitPrice); err != nil {
		return orders.DraftState{}, err
	}
	return w.draft.State(), nil
}

func (w *Workspace) RemoveDraftItem(index int) (orders.DraftState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.draft.RemoveItem(index); err != nil {
		return orders.DraftState{}, err
	}
	return w.draft.State(), nil
}

func (w *Workspace) ResetDraft() orders.DraftState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Reset()
	return w.draft.State()
}

// SubmitDraft creates or edits an order from form plus the draft items and
// commits the collection. created reports which of the two happened.
func (w *Workspace) SubmitDraft(ctx context.Context, form orders.Input) (orders.Order, bool, Saved, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	order, created, err := w.draft.Submit(w.orders, form, w.now())
	if err != nil {
		return orders.Order{}, false, Saved{}, err
	}
	return order, created, w.commitLocked(ctx, enums.CollectionOrders), nil
}

// Export builds the download document for all orders or the given selection.
func (w *Workspace) Export(ids []string) (transfer.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return transfer.Export(w.orders.Snapshot(), ids, w.now())
}

// Import replaces the collection with the decoded document. On any decode
// error the collection is left untouched.
func (w *Workspace) Import(ctx context.Context, r io.Reader) (int, Saved, error) {
	imported, err := transfer.Import(r)
	if err != nil {
		return 0, Saved{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.orders.Replace(imported)
	if _, editing := w.draft.EditingID(); editing {
		w.draft.Reset()
	}
	return len(imported), w.commitLocked(ctx, enums.CollectionOrders), nil
}

// Varieties returns the catalog.
func (w *Workspace) Varieties() []varieties.Variety {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.catalog.Snapshot()
}

// AddVariety appends a stub entry that stays in memory until saved.
func (w *Workspace) AddVariety() []varieties.Variety {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.catalog.Add()
	return w.catalog.Snapshot()
}

// SaveVarieties replaces the catalog with edits and commits it.
func (w *Workspace) SaveVarieties(ctx context.Context, edits []varieties.Variety) ([]varieties.Variety, Saved, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	saved, err := w.catalog.Save(edits)
	if err != nil {
		return nil, Saved{}, err
	}
	return saved, w.commitLocked(ctx, enums.CollectionVarieties), nil
}

// DeleteVariety removes an entry in memory; the next save persists it.
func (w *Workspace) DeleteVariety(index int) ([]varieties.Variety, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.catalog.Delete(index); err != nil {
		return nil, err
	}
	return w.catalog.Snapshot(), nil
}

// Links lists the active handles.
func (w *Workspace) Links() []linkedfile.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.links.Snapshot()
}

// LinkResult describes what a link adopted.
type LinkResult struct {
	Handle    linkedfile.Handle `json:"handle"`
	Loaded    int               `json:"loaded"`
	Malformed bool              `json:"malformed"`
	Warnings  []Warning         `json:"warnings"`
}

// Link opens path as the linked file for kind and adopts its content as the
// in-memory collection. When memory holds data that differs from the file the
// link is refused with CONFLICT unless discard is set. A malformed file is
// adopted as empty.
func (w *Workspace) Link(ctx context.Context, kind enums.CollectionKind, path string, discard bool) (LinkResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	h, err := w.files.Link(ctx, kind, path)
	if err != nil {
		return LinkResult{}, err
	}

	res := LinkResult{Handle: h}
	switch kind {
	case enums.CollectionOrders:
		loaded, err := linkedfile.Load[orders.Order](ctx, w.files, h)
		if res.Malformed, err = w.malformedOnly(ctx, h, err); err != nil {
			return LinkResult{}, err
		}
		current := w.orders.Snapshot()
		if !discard && len(current) > 0 && !sameJSON(current, loaded) {
			return LinkResult{}, conflict(kind, len(current))
		}
		w.orders.Replace(loaded)
		if _, editing := w.draft.EditingID(); editing {
			w.draft.Reset()
		}
		res.Loaded = len(loaded)
	case enums.CollectionVarieties:
		loaded, err := linkedfile.Load[varieties.Variety](ctx, w.files, h)
		if res.Malformed, err = w.malformedOnly(ctx, h, err); err != nil {
			return LinkResult{}, err
		}
		loaded = varieties.Normalize(loaded)
		current := w.catalog.Snapshot()
		if !discard && len(current) > 0 && !sameJSON(current, loaded) {
			return LinkResult{}, conflict(kind, len(current))
		}
		w.catalog.Replace(loaded)
		res.Loaded = len(loaded)
	}

	w.links.Set(h)
	delete(w.fileFailed, kind)
	w.logg.Info(w.logg.WithFields(w.logg.WithCollection(ctx, string(kind)), map[string]any{
		"path":      h.Path,
		"loaded":    res.Loaded,
		"malformed": res.Malformed,
	}), "linked file adopted")
	res.Warnings = w.warningsLocked()
	return res, nil
}

// malformedOnly swallows a MALFORMED_INPUT load error after logging it and
// passes anything else through.
func (w *Workspace) malformedOnly(ctx context.Context, h linkedfile.Handle, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if pkgerrors.HasCode(err, pkgerrors.CodeMalformedInput) {
		w.logg.Warn(w.logg.WithField(w.logg.WithCollection(ctx, string(h.Kind)), "path", h.Path),
			"linked file is malformed; starting empty")
		return true, nil
	}
	return false, err
}

func conflict(kind enums.CollectionKind, held int) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "unsaved in-memory data differs from the linked file; retry with discard to replace it").
		WithDetails(map[string]any{"collection": kind, "inMemory": held})
}

// Unlink drops the handle for kind. The in-memory collection is kept.
func (w *Workspace) Unlink(kind enums.CollectionKind) (bool, error) {
	if !kind.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "unknown collection").
			WithDetails(map[string]string{"collection": string(kind)})
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	removed := w.links.Clear(kind)
	delete(w.fileFailed, kind)
	return removed, nil
}

