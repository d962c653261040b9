package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBaseDBBindsContext(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "base.db")), &gorm.Config{})
	require.NoError(t, err)
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, conn, base.DB(nil))
	assert.NoError(t, base.Ping(context.Background()))
}

func TestBasePingWithoutConnection(t *testing.T) {
	assert.ErrorIs(t, Base{}.Ping(context.Background()), errNoConnection)
}
