package commit

import (
	"context"
	"fmt"
	"time"

	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/kvstore"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/figpreorders/figorders/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	StateOK        = "ok"
	StateFailed    = "failed"
	StateNotLinked = "not_linked"
)

type fileWriter interface {
	Commit(ctx context.Context, h linkedfile.Handle, value any) error
}

type handleSource interface {
	Get(kind enums.CollectionKind) (linkedfile.Handle, bool)
}

type localWriter interface {
	Set(ctx context.Context, key string, value any) error
}

// Pipeline is the single path by which a collection is persisted: the linked
// file when one is set, then the durable store regardless of the file result.
type Pipeline struct {
	files   fileWriter
	handles handleSource
	local   localWriter
	keys    kvstore.SlotKeys
	metrics *metrics.CommitMetrics
	logg    *logger.Logger
}

func New(files fileWriter, handles handleSource, local localWriter, keys kvstore.SlotKeys, m *metrics.CommitMetrics, logg *logger.Logger) (*Pipeline, error) {
	if files == nil {
		return nil, fmt.Errorf("linked file writer required")
	}
	if handles == nil {
		return nil, fmt.Errorf("handle registry required")
	}
	if local == nil {
		return nil, fmt.Errorf("durable store required")
	}
	if keys.Orders == "" || keys.Varieties == "" {
		return nil, fmt.Errorf("slot keys required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Pipeline{
		files:   files,
		handles: handles,
		local:   local,
		keys:    keys,
		metrics: m,
		logg:    logg,
	}, nil
}

// Outcome keeps the file and durable store results apart.
type Outcome struct {
	Collection enums.CollectionKind
	FileLinked bool
	FileErr    error
	LocalErr   error
}

// FileCommitted reports whether a linked file now holds the new content.
func (o Outcome) FileCommitted() bool { return o.FileLinked && o.FileErr == nil }

// LocalMirrored reports whether the durable store holds the new content.
func (o Outcome) LocalMirrored() bool { return o.LocalErr == nil }

// OK is true when every attempted target succeeded.
func (o Outcome) OK() bool { return o.FileErr == nil && o.LocalErr == nil }

// Err combines both failures.
func (o Outcome) Err() error { return multierr.Combine(o.FileErr, o.LocalErr) }

// StorageExhausted reports a full durable store.
func (o Outcome) StorageExhausted() bool {
	return pkgerrors.HasCode(o.LocalErr, pkgerrors.CodeStorageExhausted)
}

// Sync is the wire form of an outcome.
type Sync struct {
	Collection enums.CollectionKind `json:"collection"`
	File       string               `json:"file"`
	Local      string               `json:"local"`
}

func (o Outcome) Sync() Sync {
	s := Sync{Collection: o.Collection, File: StateNotLinked, Local: StateOK}
	if o.FileLinked {
		s.File = StateOK
		if o.FileErr != nil {
			s.File = StateFailed
		}
	}
	if o.LocalErr != nil {
		s.Local = StateFailed
	}
	return s
}

// Commit persists value as the whole content of kind. Nothing is retried or
// rolled back; the caller keeps its in-memory state either way.
func (p *Pipeline) Commit(ctx context.Context, kind enums.CollectionKind, value any) Outcome {
	out := Outcome{Collection: kind}
	ctx = p.logg.WithCollection(ctx, kind.String())

	key, ok := p.keys.For(kind)
	if !ok {
		out.LocalErr = pkgerrors.New(pkgerrors.CodeInternal, "no slot for collection")
		return out
	}

	if h, linked := p.handles.Get(kind); linked {
		out.FileLinked = true
		start := time.Now()
		out.FileErr = p.files.Commit(ctx, h, value)
		p.metrics.Observe(kind.String(), metrics.TargetFile, out.FileErr, time.Since(start))
		if out.FileErr != nil {
			p.logg.Warn(p.logg.WithFields(ctx, map[string]any{"path": h.Path, "error": out.FileErr.Error()}), "linked file commit failed")
		}
	}

	start := time.Now()
	out.LocalErr = p.local.Set(ctx, key, value)
	p.metrics.Observe(kind.String(), metrics.TargetLocal, out.LocalErr, time.Since(start))
	if out.LocalErr != nil {
		p.logg.Warn(p.logg.WithFields(ctx, map[string]any{"slot": key, "error": out.LocalErr.Error()}), "durable store write failed")
	}
	return out
}
