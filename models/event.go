package models

import "time"

// Event statuses. Archived is terminal.
const (
	EventStatusActive   = "active"
	EventStatusArchived = "archived"
)

// Event represents a managed event row
// Name is the dedup key for idempotent creation (case-sensitive, exact match)
// UUID is the opaque public identifier used in URLs and shortlink keys
// PageAssetKey points at the provisioned landing page object in object storage
// PublicToken is the shortlink token minted at creation time
type Event struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"size:36;not null;uniqueIndex:uk_events_uuid" json:"uuid"`
	Name         string    `gorm:"type:text;not null;index:idx_events_name" json:"name"`
	Slug         string    `gorm:"size:255;not null" json:"slug"`
	StartDate    string    `gorm:"size:10;not null" json:"start_date"`
	Status       string    `gorm:"size:20;not null;default:active;index:idx_events_status" json:"status"`
	IsDefault    bool      `gorm:"not null;default:false" json:"is_default"`
	PageAssetKey *string   `gorm:"type:text" json:"page_asset_key,omitempty"`
	PublicToken  *string   `gorm:"size:64" json:"public_token,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_events_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for Event
func (Event) TableName() string { return "events" }

// IsArchived reports whether the event has reached its terminal state.
func (e *Event) IsArchived() bool { return e.Status == EventStatusArchived }

// EventFilter provides filter fields for repository queries
type EventFilter struct {
	ID            *uint
	UUID          *string
	Name          *string
	Status        *string
	IsDefault     *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
