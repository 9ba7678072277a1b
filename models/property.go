package models

import "time"

// Property is one durable key-value row. Values are JSON-serialized strings
// written atomically per key (upsert on conflict).
type Property struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Property
func (Property) TableName() string { return "properties" }
