package model

import "time"

// PushSubscription holds a browser push subscription waiting for a spot of
// VehicleType to become free.
type PushSubscription struct {
	Endpoint    string      `gorm:"primaryKey"`
	P256DH      string      `gorm:"column:p256dh;not null"`
	Auth        string      `gorm:"not null"`
	VehicleType VehicleType `gorm:"size:32;not null;index"`
	CreatedAt   time.Time   `gorm:"not null"`
}
