package commit

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/figpreorders/figorders/internal/linkedfile"
	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/kvstore"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/figpreorders/figorders/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type fakeFiles struct {
	err     error
	written map[string]any
}

func (f *fakeFiles) Commit(_ context.Context, h linkedfile.Handle, value any) error {
	if f.err != nil {
		return f.err
	}
	if f.written == nil {
		f.written = map[string]any{}
	}
	f.written[h.Path] = value
	return nil
}

type fixture struct {
	pipeline *Pipeline
	files    *fakeFiles
	handles  *linkedfile.Registry
	backend  *kvstore.MemoryBackend
	store    *kvstore.Store
	reg      *prometheus.Registry
}

func newFixture(t *testing.T, quota int) fixture {
	t.Helper()
	logg := logger.New(logger.Options{Output: io.Discard})
	backend := kvstore.NewMemoryBackend()
	store, err := kvstore.New(backend, quota, logg)
	require.NoError(t, err)
	files := &fakeFiles{}
	handles := linkedfile.NewRegistry()
	reg := prometheus.NewRegistry()
	p, err := New(files, handles, store, kvstore.SlotKeys{Orders: "o", Varieties: "v"}, metrics.NewCommitMetrics(reg), logg)
	require.NoError(t, err)
	return fixture{pipeline: p, files: files, handles: handles, backend: backend, store: store, reg: reg}
}

func TestCommitWithoutLinkWritesStoreOnly(t *testing.T) {
	f := newFixture(t, 0)

	out := f.pipeline.Commit(context.Background(), enums.CollectionOrders, []string{"a"})

	assert.True(t, out.OK())
	assert.False(t, out.FileLinked)
	assert.False(t, out.FileCommitted())
	assert.True(t, out.LocalMirrored())
	assert.Equal(t, Sync{Collection: enums.CollectionOrders, File: StateNotLinked, Local: StateOK}, out.Sync())
	raw, ok := f.backend.Raw("o")
	require.True(t, ok)
	assert.JSONEq(t, `["a"]`, string(raw))
	assert.Empty(t, f.files.written)
}

func TestCommitWritesBothTargets(t *testing.T) {
	f := newFixture(t, 0)
	f.handles.Set(linkedfile.Handle{Kind: enums.CollectionVarieties, Path: "/v.json"})

	out := f.pipeline.Commit(context.Background(), enums.CollectionVarieties, []string{"fig"})

	assert.True(t, out.OK())
	assert.True(t, out.FileCommitted())
	assert.Equal(t, []string{"fig"}, f.files.written["/v.json"])
	_, ok := f.backend.Raw("v")
	assert.True(t, ok)
	_, ok = f.backend.Raw("o")
	assert.False(t, ok)
}

func TestFileFailureStillMirrorsLocally(t *testing.T) {
	f := newFixture(t, 0)
	f.handles.Set(linkedfile.Handle{Kind: enums.CollectionOrders, Path: "/o.json"})
	f.files.err = pkgerrors.New(pkgerrors.CodePermissionDenied, "read-only")

	out := f.pipeline.Commit(context.Background(), enums.CollectionOrders, []string{"new"})

	assert.False(t, out.OK())
	assert.True(t, out.FileLinked)
	assert.False(t, out.FileCommitted())
	assert.True(t, out.LocalMirrored())
	assert.Equal(t, StateFailed, out.Sync().File)
	assert.Equal(t, StateOK, out.Sync().Local)
	raw, _ := f.backend.Raw("o")
	assert.JSONEq(t, `["new"]`, string(raw))
	assert.ErrorIs(t, out.Err(), f.files.err)
}

func TestBothFailuresAreCombined(t *testing.T) {
	f := newFixture(t, 4)
	f.handles.Set(linkedfile.Handle{Kind: enums.CollectionOrders, Path: "/o.json"})
	f.files.err = errors.New("disk")

	out := f.pipeline.Commit(context.Background(), enums.CollectionOrders, []string{"too long for quota"})

	assert.True(t, out.StorageExhausted())
	assert.Equal(t, Sync{Collection: enums.CollectionOrders, File: StateFailed, Local: StateFailed}, out.Sync())
	assert.Len(t, multierr.Errors(out.Err()), 2)
}

func TestCommitRecordsMetrics(t *testing.T) {
	f := newFixture(t, 0)
	f.handles.Set(linkedfile.Handle{Kind: enums.CollectionOrders, Path: "/o.json"})
	f.pipeline.Commit(context.Background(), enums.CollectionOrders, []string{})

	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != "commit_attempts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, total)
}

func TestNewValidatesDependencies(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	store, err := kvstore.New(kvstore.NewMemoryBackend(), 0, logg)
	require.NoError(t, err)

	_, err = New(&fakeFiles{}, linkedfile.NewRegistry(), store, kvstore.SlotKeys{Orders: "o"}, nil, logg)
	assert.Error(t, err)
	_, err = New(nil, linkedfile.NewRegistry(), store, kvstore.SlotKeys{Orders: "o", Varieties: "v"}, nil, logg)
	assert.Error(t, err)
	_, err = New(&fakeFiles{}, linkedfile.NewRegistry(), store, kvstore.SlotKeys{Orders: "o", Varieties: "v"}, nil, logg)
	assert.NoError(t, err)
}
