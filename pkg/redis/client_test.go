package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/figpreorders/figorders/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if _, found, err := client.ReadSlot(ctx, "figPreordersV3_Orders"); err != nil || found {
		t.Fatalf("expected empty slot, found=%v err=%v", found, err)
	}

	if err := client.WriteSlot(ctx, "figPreordersV3_Orders", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, ok := mock.data["fp:slot:figPreordersV3_Orders"]; !ok {
		t.Fatalf("expected namespaced key, got %v", mock.data)
	}
	if mock.lastTTL != 0 {
		t.Fatalf("slots must not expire, got ttl %v", mock.lastTTL)
	}

	payload, found, err := client.ReadSlot(ctx, "figPreordersV3_Orders")
	if err != nil || !found {
		t.Fatalf("expected slot, found=%v err=%v", found, err)
	}
	if string(payload) != `[{"id":"a"}]` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestWriteSlotSurfacesServerErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.setErr = errors.New("OOM command not allowed when used memory > 'maxmemory'")
	client := &Client{store: mock}

	err := client.WriteSlot(context.Background(), "figVarietiesV3", []byte(`[]`))
	if err == nil || err.Error() != mock.setErr.Error() {
		t.Fatalf("expected OOM error, got %v", err)
	}
}

func TestIdempotencyRecordIsWrittenOnce(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.IdempotencyKey("POST|/api/v1/draft/submit", "abc")

	ok, err := client.SetNX(ctx, key, "first", time.Hour)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, key, "second", time.Hour)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
	if got, _ := client.Get(ctx, key); got != "first" {
		t.Fatalf("expected first record kept, got %q", got)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.SlotKey("figVarietiesV3"); got != "fp:slot:figVarietiesV3" {
		t.Fatalf("unexpected slot key %s", got)
	}
	if got := client.IdempotencyKey("scope", "id"); got != "fp:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.IdempotencyKey("scope", " "); got != "fp:idempotency:scope" {
		t.Fatalf("blank parts should be skipped, got %s", got)
	}
}

func TestUninitializedClientFails(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping on empty client to fail")
	}
	if _, _, err := client.ReadSlot(context.Background(), "x"); err == nil {
		t.Fatalf("expected read on empty client to fail")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected missing endpoint to fail")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 {
		t.Fatalf("unexpected parsed options addr=%s db=%d", opts.Addr, opts.DB)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("expected config fallbacks applied, got pool=%d dial=%v", opts.PoolSize, opts.DialTimeout)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 3 {
		t.Fatalf("unexpected address options %s %d", opts.Addr, opts.DB)
	}
}

type mockCmdable struct {
	data    map[string]string
	setErr  error
	lastTTL time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if m.setErr != nil {
		return redis.NewStatusResult("", m.setErr)
	}
	m.lastTTL = expiration
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
