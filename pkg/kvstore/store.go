package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/figpreorders/figorders/pkg/db"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
	"github.com/figpreorders/figorders/pkg/logger"
)

// Backend reads and writes whole slot payloads by key.
type Backend interface {
	ReadSlot(ctx context.Context, key string) ([]byte, bool, error)
	WriteSlot(ctx context.Context, key string, payload []byte) error
	Ping(ctx context.Context) error
}

// Store is the durable key-value adapter: JSON in and out of named slots.
// Reads never fail the caller; writes report a typed error.
type Store struct {
	backend Backend
	quota   int
	logg    *logger.Logger
}

// New builds a store over backend. quotaBytes caps a single slot payload; zero disables the cap.
func New(backend Backend, quotaBytes int, logg *logger.Logger) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("slot backend required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if quotaBytes < 0 {
		return nil, fmt.Errorf("quota must not be negative")
	}
	return &Store{backend: backend, quota: quotaBytes, logg: logg}, nil
}

// Get decodes the slot at key into dest and reports whether it did. An absent,
// unreadable or malformed slot returns false and leaves dest untouched.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	target := reflect.ValueOf(dest)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false
	}
	ctx = s.logg.WithField(ctx, "slot", key)

	payload, found, err := s.backend.ReadSlot(ctx, key)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "slot read failed")
		return false
	}
	payload = bytes.TrimSpace(payload)
	if !found || len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return false
	}

	fresh := reflect.New(target.Elem().Type())
	if err := json.Unmarshal(payload, fresh.Interface()); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "slot payload malformed")
		return false
	}
	target.Elem().Set(fresh.Elem())
	return true
}

// GetOr returns the decoded slot or fallback.
func GetOr[T any](ctx context.Context, s *Store, key string, fallback T) T {
	var value T
	if !s.Get(ctx, key, &value) {
		return fallback
	}
	return value
}

// Set serializes value and overwrites the slot at key. Quota overflow and
// out-of-space backends yield STORAGE_EXHAUSTED; other failures DEPENDENCY_ERROR.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode slot payload")
	}
	if s.quota > 0 && len(payload) > s.quota {
		return pkgerrors.New(pkgerrors.CodeStorageExhausted, "slot payload exceeds storage quota").
			WithDetails(map[string]any{"slot": key, "bytes": len(payload), "quota": s.quota})
	}

	if err := s.backend.WriteSlot(ctx, key, payload); err != nil {
		if isExhausted(err) {
			return pkgerrors.Wrap(pkgerrors.CodeStorageExhausted, err, "storage backend is full").
				WithDetails(map[string]any{"slot": key})
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write slot").
			WithDetails(map[string]any{"slot": key})
	}
	return nil
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// ErrNoSpace is what backends return when they cannot grow.
var ErrNoSpace = errors.New("no space left on device")

func isExhausted(err error) bool {
	if errors.Is(err, ErrNoSpace) || db.IsStorageFull(err) {
		return true
	}
	// redis rejects writes past maxmemory with an OOM reply
	return strings.HasPrefix(err.Error(), "OOM ")
}
