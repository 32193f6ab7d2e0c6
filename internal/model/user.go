package model

import "time"

// User is a person allowed to park. WorkLocationID points at the place they
// walk to after parking, when one is assigned.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:128;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	WorkLocationID *uint     `json:"work_location_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Associations
	WorkLocation *WorkLocation `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// WorkLocation is an auxiliary routing target on the grid.
type WorkLocation struct {
	ID   uint    `gorm:"primaryKey" json:"id"`
	Name string  `gorm:"size:128;not null" json:"name"`
	X    float64 `gorm:"not null" json:"x"`
	Y    float64 `gorm:"not null" json:"y"`
}

// Vehicle belongs to a user and determines which spot categories fit it.
type Vehicle struct {
	ID     uint        `gorm:"primaryKey" json:"id"`
	UserID uint        `gorm:"not null;index" json:"user_id"`
	Plate  string      `gorm:"size:16;not null" json:"plate"`
	Type   VehicleType `gorm:"size:32;not null" json:"type"`

	// Associations
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
