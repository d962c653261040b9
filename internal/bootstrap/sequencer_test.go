package bootstrap

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/figpreorders/figorders/internal/orders"
	"github.com/figpreorders/figorders/internal/varieties"
	"github.com/figpreorders/figorders/pkg/config"
	"github.com/figpreorders/figorders/pkg/kvstore"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = kvstore.SlotKeys{Orders: "figPreordersV3_Orders", Varieties: "figVarietiesV3"}

func newSequencer(t *testing.T, bundle Fetcher, quota int) (*Sequencer, *kvstore.Store, *kvstore.MemoryBackend) {
	t.Helper()
	logg := logger.New(logger.Options{Output: io.Discard})
	backend := kvstore.NewMemoryBackend()
	store, err := kvstore.New(backend, quota, logg)
	require.NoError(t, err)
	seq, err := NewSequencer(bundle, store, keys, logg)
	require.NoError(t, err)
	return seq, store, backend
}

func TestBundleVarietiesWinAndAreMirrored(t *testing.T) {
	bundle := NewFSFetcher(fstest.MapFS{
		VarietiesResource: {Data: []byte(`["Kadota", {"name":"Black Mission","price":250}]`)},
	})
	seq, store, backend := newSequencer(t, bundle, 0)
	backend.Put(keys.Varieties, []byte(`[{"name":"Old","price":1}]`))

	res := seq.Run(context.Background())

	assert.Equal(t, SourceBundle, res.VarietiesSource)
	assert.Equal(t, []varieties.Variety{{Name: "Kadota"}, {Name: "Black Mission", Price: 250}}, res.Varieties)
	assert.NoError(t, res.MirrorErr)
	mirrored := kvstore.GetOr(context.Background(), store, keys.Varieties, []varieties.Variety(nil))
	assert.Equal(t, res.Varieties, mirrored)
}

func TestStoreVarietiesWhenBundleMissingOrMalformed(t *testing.T) {
	for name, bundle := range map[string]Fetcher{
		"missing":   NewFSFetcher(fstest.MapFS{}),
		"malformed": NewFSFetcher(fstest.MapFS{VarietiesResource: {Data: []byte(`{"a":1}`)}}),
		"none":      noBundle{},
	} {
		t.Run(name, func(t *testing.T) {
			seq, _, backend := newSequencer(t, bundle, 0)
			backend.Put(keys.Varieties, []byte(`["Kadota"]`))

			res := seq.Run(context.Background())
			assert.Equal(t, SourceStore, res.VarietiesSource)
			assert.Equal(t, []varieties.Variety{{Name: "Kadota"}}, res.Varieties)
		})
	}
}

func TestSeedVarietiesWhenEverythingIsEmpty(t *testing.T) {
	seq, _, backend := newSequencer(t, noBundle{}, 0)
	backend.Put(keys.Varieties, []byte(`[]`))

	res := seq.Run(context.Background())
	assert.Equal(t, SourceSeed, res.VarietiesSource)
	assert.Equal(t, varieties.Seed(), res.Varieties)
}

func TestMirrorFailureIsReported(t *testing.T) {
	bundle := NewFSFetcher(fstest.MapFS{VarietiesResource: {Data: []byte(`["Kadota","Black Mission","Brown Turkey"]`)}})
	seq, _, _ := newSequencer(t, bundle, 8)

	res := seq.Run(context.Background())
	assert.Equal(t, SourceBundle, res.VarietiesSource)
	assert.Error(t, res.MirrorErr)
}

func TestBundleOrdersWinWithoutMirroring(t *testing.T) {
	bundle := NewFSFetcher(fstest.MapFS{
		OrdersResource: {Data: []byte(`[{"id":"bundled","customerName":"A","items":[]}]`)},
	})
	seq, _, backend := newSequencer(t, bundle, 0)
	backend.Put(keys.Orders, []byte(`[{"id":"stored"}]`))

	res := seq.Run(context.Background())
	assert.Equal(t, SourceBundle, res.OrdersSource)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "bundled", res.Orders[0].ID)

	raw, _ := backend.Raw(keys.Orders)
	assert.JSONEq(t, `[{"id":"stored"}]`, string(raw))
}

func TestOrdersFallBackToStoreThenEmpty(t *testing.T) {
	bundle := NewFSFetcher(fstest.MapFS{OrdersResource: {Data: []byte(`{"not":"array"}`)}})
	seq, _, backend := newSequencer(t, bundle, 0)
	backend.Put(keys.Orders, []byte(`[{"id":"stored"}]`))

	res := seq.Run(context.Background())
	assert.Equal(t, SourceStore, res.OrdersSource)
	assert.Equal(t, []orders.Order{{ID: "stored"}}, res.Orders)

	seq, _, backend = newSequencer(t, noBundle{}, 0)
	backend.Put(keys.Orders, []byte(`garbage`))
	res = seq.Run(context.Background())
	assert.Equal(t, SourceEmpty, res.OrdersSource)
	assert.NotNil(t, res.Orders)
	assert.Empty(t, res.Orders)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		switch r.URL.Path {
		case "/static/varieties.json":
			_, _ = w.Write([]byte(`["Kadota"]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(config.BundleConfig{URL: srv.URL + "/static", Dir: "ignored", Timeout: time.Second})
	data, err := f.Fetch(context.Background(), VarietiesResource)
	require.NoError(t, err)
	assert.Equal(t, `["Kadota"]`, string(data))

	_, err = f.Fetch(context.Background(), OrdersResource)
	assert.Error(t, err)
}

func TestNewFetcherWithoutSources(t *testing.T) {
	_, err := NewFetcher(config.BundleConfig{}).Fetch(context.Background(), OrdersResource)
	assert.ErrorIs(t, err, ErrNoBundle)
}
