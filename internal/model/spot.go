package model

import "time"

// VehicleType is the category shared by spots and vehicles.
type VehicleType string

const (
	VehicleMoto          VehicleType = "MOTO"
	VehicleCarro         VehicleType = "CARRO"
	VehiclePCD           VehicleType = "PCD"
	VehicleCarroEletrico VehicleType = "CARRO_ELETRICO"
)

// VehicleTypes lists every known category in display order.
var VehicleTypes = []VehicleType{VehicleMoto, VehicleCarro, VehiclePCD, VehicleCarroEletrico}

// Valid reports whether t is one of the known categories.
func (t VehicleType) Valid() bool {
	for _, known := range VehicleTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Spot represents a single parking space on the map.
type Spot struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Code            string      `gorm:"size:16;not null;index" json:"code"`
	Category        VehicleType `gorm:"size:32;not null;index" json:"category"`
	GeneralPosition int         `gorm:"not null" json:"general_position"`
	X               float64     `gorm:"not null" json:"x"`
	Y               float64     `gorm:"not null" json:"y"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
