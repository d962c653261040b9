package models

import "time"

// Slot holds the serialized payload of one collection under its storage key.
type Slot struct {
	Key       string    `gorm:"column:key;type:varchar(128);primaryKey"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (Slot) TableName() string { return "slots" }
