package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func newTestStore(t *testing.T, quota int) (*Store, *MemoryBackend) {
	t.Helper()
	backend := NewMemoryBackend()
	store, err := New(backend, quota, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return store, backend
}

func TestSetThenGet(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "figVarietiesV3", []entry{{Name: "A", Price: 100}}))

	var got []entry
	require.True(t, store.Get(ctx, "figVarietiesV3", &got))
	assert.Equal(t, []entry{{Name: "A", Price: 100}}, got)
}

func TestGetFallbacks(t *testing.T) {
	store, backend := newTestStore(t, 0)
	ctx := context.Background()
	fallback := []entry{{Name: "seed"}}

	assert.Equal(t, fallback, GetOr(ctx, store, "missing", fallback))

	backend.Put("empty", []byte("  "))
	assert.Equal(t, fallback, GetOr(ctx, store, "empty", fallback))

	backend.Put("null", []byte("null"))
	assert.Equal(t, fallback, GetOr(ctx, store, "null", fallback))

	backend.Put("garbage", []byte("{not json"))
	assert.Equal(t, fallback, GetOr(ctx, store, "garbage", fallback))

	backend.Put("shape", []byte(`{"not":"array"}`))
	assert.Equal(t, fallback, GetOr(ctx, store, "shape", fallback))

	backend.FailReads(errors.New("disk gone"))
	backend.Put("ok", []byte(`[]`))
	assert.Equal(t, fallback, GetOr(ctx, store, "ok", fallback))
}

func TestGetLeavesDestinationOnFailure(t *testing.T) {
	store, backend := newTestStore(t, 0)
	backend.Put("shape", []byte(`[{"name":"A"}, 7]`))

	dest := []entry{{Name: "kept"}}
	assert.False(t, store.Get(context.Background(), "shape", &dest))
	assert.Equal(t, []entry{{Name: "kept"}}, dest)
	assert.False(t, store.Get(context.Background(), "shape", nil))
}

func TestSetQuotaOverflow(t *testing.T) {
	store, backend := newTestStore(t, 16)

	err := store.Set(context.Background(), "orders", strings.Repeat("x", 32))
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStorageExhausted))
	_, written := backend.Raw("orders")
	assert.False(t, written)
}

func TestSetClassifiesBackendFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code pkgerrors.Code
	}{
		{name: "no space", err: fmt.Errorf("write: %w", ErrNoSpace), code: pkgerrors.CodeStorageExhausted},
		{name: "sqlite full", err: errors.New("database or disk is full"), code: pkgerrors.CodeStorageExhausted},
		{name: "redis oom", err: errors.New("OOM command not allowed when used memory > 'maxmemory'."), code: pkgerrors.CodeStorageExhausted},
		{name: "other", err: errors.New("connection refused"), code: pkgerrors.CodeDependency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, backend := newTestStore(t, 0)
			backend.FailWrites(tc.err)

			err := store.Set(context.Background(), "orders", []entry{})
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tc.code, typed.Code())
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestSetRecoversAfterFailure(t *testing.T) {
	store, backend := newTestStore(t, 0)
	ctx := context.Background()

	backend.FailWrites(ErrNoSpace)
	require.Error(t, store.Set(ctx, "orders", []entry{{Name: "a"}}))

	backend.FailWrites(nil)
	require.NoError(t, store.Set(ctx, "orders", []entry{{Name: "a"}, {Name: "b"}}))
	assert.Equal(t, 1, backend.Writes())

	got := GetOr(ctx, store, "orders", []entry(nil))
	assert.Len(t, got, 2)
}

func TestNewValidatesArguments(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	_, err := New(nil, 0, logg)
	assert.Error(t, err)
	_, err = New(NewMemoryBackend(), 0, nil)
	assert.Error(t, err)
	_, err = New(NewMemoryBackend(), -1, logg)
	assert.Error(t, err)
}
