package model

import "time"

// ActivityKind is the type of a ledger event.
type ActivityKind string

const (
	ActivityEntry ActivityKind = "ENTRY"
	ActivityExit  ActivityKind = "EXIT"
)

// ActivityRecord is one append-only ledger event. Occupancy of spots and the
// active entry of users are always derived from these rows.
type ActivityRecord struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	SpotID     uint         `gorm:"not null;index" json:"spot_id"`
	UserID     uint         `gorm:"not null;index" json:"user_id"`
	Kind       ActivityKind `gorm:"size:16;not null" json:"kind"`
	RecordedAt time.Time    `gorm:"not null;index" json:"recorded_at"`
	AccessPath string       `gorm:"size:256;not null" json:"access_path"`

	// Associations
	Spot Spot `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}
