package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/figpreorders/figorders/pkg/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newSlotDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "slots.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Slot{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestSlotRepository_ReadMissing(t *testing.T) {
	repo := NewSlotRepository(newSlotDB(t))

	payload, found, err := repo.ReadSlot(context.Background(), "figVarietiesV3")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, payload)
}

func TestSlotRepository_WriteOverwrites(t *testing.T) {
	conn := newSlotDB(t)
	repo := NewSlotRepository(conn)
	stamp := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return stamp }
	ctx := context.Background()

	require.NoError(t, repo.WriteSlot(ctx, "figPreordersV3_Orders", []byte(`[{"id":"1"}]`)))
	stamp = stamp.Add(time.Hour)
	require.NoError(t, repo.WriteSlot(ctx, "figPreordersV3_Orders", []byte(`[]`)))

	payload, found, err := repo.ReadSlot(ctx, "figPreordersV3_Orders")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `[]`, string(payload))

	var rows []models.Slot
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.True(t, rows[0].UpdatedAt.Equal(stamp))
}

func TestSlotRepository_KeysAreIndependent(t *testing.T) {
	repo := NewSlotRepository(newSlotDB(t))
	ctx := context.Background()

	require.NoError(t, repo.WriteSlot(ctx, "a", []byte("1")))
	require.NoError(t, repo.WriteSlot(ctx, "b", []byte("2")))

	got, _, err := repo.ReadSlot(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", string(got))
	require.NoError(t, repo.Ping(ctx))
}
