package bootstrap

import (
	"context"
	"fmt"

	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/internal/orders"
	"github.com/figpreorders/figorders/internal/varieties"
	"github.com/figpreorders/figorders/pkg/kvstore"
	"github.com/figpreorders/figorders/pkg/logger"
)

// Source names where a collection came from at startup.
type Source string

const (
	SourceBundle Source = "bundle"
	SourceStore  Source = "store"
	SourceSeed   Source = "seed"
	SourceEmpty  Source = "empty"
)

type slotStore interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any) error
}

// Result is the initial in-memory state.
type Result struct {
	Orders          []orders.Order
	OrdersSource    Source
	Varieties       []varieties.Variety
	VarietiesSource Source
	// MirrorErr is set when the bundled catalog could not be copied into the store.
	MirrorErr error
}

// Sequencer decides which source seeds each collection.
type Sequencer struct {
	bundle Fetcher
	store  slotStore
	keys   kvstore.SlotKeys
	logg   *logger.Logger
}

func NewSequencer(bundle Fetcher, store slotStore, keys kvstore.SlotKeys, logg *logger.Logger) (*Sequencer, error) {
	if bundle == nil {
		return nil, fmt.Errorf("bundle fetcher required")
	}
	if store == nil {
		return nil, fmt.Errorf("durable store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Sequencer{bundle: bundle, store: store, keys: keys, logg: logg}, nil
}

// Run loads varieties then orders. It never fails: every source problem
// degrades to the next source.
func (s *Sequencer) Run(ctx context.Context) Result {
	var res Result
	res.Varieties, res.VarietiesSource, res.MirrorErr = s.loadVarieties(ctx)
	res.Orders, res.OrdersSource = s.loadOrders(ctx)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"orders":           len(res.Orders),
		"orders_source":    res.OrdersSource,
		"varieties":        len(res.Varieties),
		"varieties_source": res.VarietiesSource,
	}), "bootstrap complete")
	return res
}

// loadVarieties: bundle (mirrored into the store), else store, else seed.
func (s *Sequencer) loadVarieties(ctx context.Context) ([]varieties.Variety, Source, error) {
	ctx = s.logg.WithCollection(ctx, "varieties")
	if data, err := s.bundle.Fetch(ctx, VarietiesResource); err != nil {
		s.logg.Debug(s.logg.WithField(ctx, "error", err.Error()), "bundled varieties unavailable")
	} else if list, err := varieties.Decode(data); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "bundled varieties malformed")
	} else {
		mirrorErr := s.store.Set(ctx, s.keys.Varieties, list)
		if mirrorErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", mirrorErr.Error()), "mirroring bundled varieties failed")
		}
		return list, SourceBundle, mirrorErr
	}

	var stored []varieties.Variety
	if s.store.Get(ctx, s.keys.Varieties, &stored) && len(stored) > 0 {
		return varieties.Normalize(stored), SourceStore, nil
	}
	return varieties.Seed(), SourceSeed, nil
}

// loadOrders: a bundled array wins for the session without being mirrored;
// otherwise the store; otherwise empty.
func (s *Sequencer) loadOrders(ctx context.Context) ([]orders.Order, Source) {
	ctx = s.logg.WithCollection(ctx, "orders")
	if data, err := s.bundle.Fetch(ctx, OrdersResource); err != nil {
		s.logg.Debug(s.logg.WithField(ctx, "error", err.Error()), "bundled orders unavailable")
	} else if list, err := linkedfile.DecodeArray[orders.Order](data); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "bundled orders malformed")
	} else {
		return list, SourceBundle
	}

	var stored []orders.Order
	if s.store.Get(ctx, s.keys.Orders, &stored) && stored != nil {
		return stored, SourceStore
	}
	return []orders.Order{}, SourceEmpty
}
