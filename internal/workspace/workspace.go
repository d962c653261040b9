package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/figpreorders/figorders/internal/bootstrap"
	"github.com/figpreorders/figorders/internal/commit"
	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/internal/orders"
	"github.com/figpreorders/figorders/internal/varieties"
	"github.com/figpreorders/figorders/pkg/enums"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/figpreorders/figorders/pkg/metrics"
)

const (
	WarningStorageLow      = "storage_low"
	WarningFileSyncFailed  = "file_sync_failed"
	WarningLocalSyncFailed = "local_sync_failed"
)

type committer interface {
	Commit(ctx context.Context, kind enums.CollectionKind, value any) commit.Outcome
}

// Warning is a persistent condition shown next to every response until it clears.
type Warning struct {
	Code       string               `json:"code"`
	Collection enums.CollectionKind `json:"collection,omitempty"`
	Message    string               `json:"message"`
}

// Saved reports how a mutation was persisted.
type Saved struct {
	Sync     commit.Sync `json:"sync"`
	Warnings []Warning   `json:"warnings"`
}

// Deps are the collaborators a workspace threads every operation through.
type Deps struct {
	Files    *linkedfile.Adapter
	Links    *linkedfile.Registry
	Pipeline committer
	Metrics  *metrics.CommitMetrics
	Logger   *logger.Logger
	Clock    func() time.Time
}

// Workspace owns the in-memory collections, the draft and the linked handles.
// One mutex serializes every operation so a mutation, its commit and the
// snapshot returned to the caller run to completion before the next request.
type Workspace struct {
	mu sync.Mutex

	orders  *orders.Collection
	catalog *varieties.Catalog
	draft   orders.Draft

	files    *linkedfile.Adapter
	links    *linkedfile.Registry
	pipeline committer
	metrics  *metrics.CommitMetrics
	logg     *logger.Logger
	now      func() time.Time

	storageLow  bool
	fileFailed  map[enums.CollectionKind]bool
	localFailed map[enums.CollectionKind]bool
	sources    map[enums.CollectionKind]bootstrap.Source
}

// New seeds a workspace from a bootstrap result.
func New(deps Deps, boot bootstrap.Result) (*Workspace, error) {
	if deps.Files == nil {
		return nil, fmt.Errorf("linked file adapter required")
	}
	if deps.Links == nil {
		return nil, fmt.Errorf("link registry required")
	}
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("commit pipeline required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	w := &Workspace{
		orders:     orders.NewCollection(boot.Orders),
		catalog:    varieties.NewCatalog(boot.Varieties),
		files:      deps.Files,
		links:      deps.Links,
		pipeline:   deps.Pipeline,
		metrics:    deps.Metrics,
		logg:       deps.Logger,
		now:        clock,
		fileFailed:  map[enums.CollectionKind]bool{},
		localFailed: map[enums.CollectionKind]bool{},
		sources: map[enums.CollectionKind]bootstrap.Source{
			enums.CollectionOrders:    boot.OrdersSource,
			enums.CollectionVarieties: boot.VarietiesSource,
		},
	}
	if boot.MirrorErr != nil {
		w.recordLocal(commit.Outcome{Collection: enums.CollectionVarieties, LocalErr: boot.MirrorErr})
	}
	return w, nil
}

// commitLocked runs the pipeline for kind and folds the outcome into the warnings.
func (w *Workspace) commitLocked(ctx context.Context, kind enums.CollectionKind) Saved {
	var payload any
	switch kind {
	case enums.CollectionOrders:
		payload = w.orders.Snapshot()
	case enums.CollectionVarieties:
		payload = w.catalog.Snapshot()
	}
	out := w.pipeline.Commit(ctx, kind, payload)

	w.recordLocal(out)
	w.fileFailed[kind] = out.FileLinked && out.FileErr != nil

	return Saved{Sync: out.Sync(), Warnings: w.warningsLocked()}
}

// recordLocal folds the durable store result into the warnings. A full store
// raises storage_low; any other failure raises local_sync_failed for the
// collection. Both clear on the next successful mirror.
func (w *Workspace) recordLocal(out commit.Outcome) {
	switch {
	case out.LocalMirrored():
		w.setStorageLow(false)
		delete(w.localFailed, out.Collection)
	case out.StorageExhausted():
		w.setStorageLow(true)
		delete(w.localFailed, out.Collection)
	default:
		w.localFailed[out.Collection] = true
	}
}

func (w *Workspace) setStorageLow(low bool) {
	w.storageLow = low
	w.metrics.SetStorageLow(low)
}

func (w *Workspace) warningsLocked() []Warning {
	out := []Warning{}
	if w.storageLow {
		out = append(out, Warning{
			Code:    WarningStorageLow,
			Message: "local storage is full; changes are kept in memory only",
		})
	}
	for _, kind := range enums.CollectionKinds() {
		if w.fileFailed[kind] {
			out = append(out, Warning{
				Code:       WarningFileSyncFailed,
				Collection: kind,
				Message:    fmt.Sprintf("the linked %s file could not be written", kind),
			})
		}
		if w.localFailed[kind] {
			out = append(out, Warning{
				Code:       WarningLocalSyncFailed,
				Collection: kind,
				Message:    fmt.Sprintf("%s could not be saved to local storage; changes are kept in memory only", kind),
			})
		}
	}
	return out
}

// Warnings lists the active warnings.
func (w *Workspace) Warnings() []Warning {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.warningsLocked()
}

// Status summarizes the workspace.
type Status struct {
	Orders         int                                       `json:"orders"`
	Varieties      int                                       `json:"varieties"`
	DraftMode      orders.DraftMode                          `json:"draftMode"`
	LinkingEnabled bool                                      `json:"linkingEnabled"`
	Links          []linkedfile.Handle                       `json:"links"`
	Sources        map[enums.CollectionKind]bootstrap.Source `json:"sources"`
	Warnings       []Warning                                 `json:"warnings"`
}

func (w *Workspace) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	sources := make(map[enums.CollectionKind]bootstrap.Source, len(w.sources))
	for k, v := range w.sources {
		sources[k] = v
	}
	return Status{
		Orders:         w.orders.Len(),
		Varieties:      w.catalog.Len(),
		DraftMode:      w.draft.Mode(),
		LinkingEnabled: w.files.Enabled(),
		Links:          w.links.Snapshot(),
		Sources:        sources,
		Warnings:       w.warningsLocked(),
	}
}

func sameJSON(a, b any) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(left, right)
}
