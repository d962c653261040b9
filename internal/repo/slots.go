package repo

import (
	"context"
	"errors"
	"time"

	"github.com/figpreorders/figorders/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotRepository persists collection payloads in the slots table.
type SlotRepository struct {
	Base
	now func() time.Time
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{Base: NewBase(db), now: time.Now}
}

// ReadSlot returns the stored payload; a missing row yields found=false.
func (r *SlotRepository) ReadSlot(ctx context.Context, key string) ([]byte, bool, error) {
	var slot models.Slot
	err := r.DB(ctx).Where("key = ?", key).Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(slot.Value), true, nil
}

// WriteSlot upserts the payload stored under key.
func (r *SlotRepository) WriteSlot(ctx context.Context, key string, payload []byte) error {
	slot := models.Slot{
		Key:       key,
		Value:     string(payload),
		UpdatedAt: r.now().UTC(),
	}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&slot).Error
}
