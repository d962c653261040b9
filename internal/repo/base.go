package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var errNoConnection = errors.New("repository has no database connection")

// Base carries the GORM connection shared by the SQL-backed repositories.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Ping checks the pooled connection behind the repository.
func (b Base) Ping(ctx context.Context) error {
	if b.db == nil {
		return errNoConnection
	}
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
