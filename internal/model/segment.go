package model

import "time"

// PathSegment is a stored, axis-aligned stretch of walkable path.
// Endpoints are kept normalized: (OriginX, OriginY) is the smaller point.
type PathSegment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	OriginX      int       `gorm:"not null;uniqueIndex:idx_segment_endpoints" json:"origin_x"`
	OriginY      int       `gorm:"not null;uniqueIndex:idx_segment_endpoints" json:"origin_y"`
	DestinationX int       `gorm:"not null;uniqueIndex:idx_segment_endpoints" json:"destination_x"`
	DestinationY int       `gorm:"not null;uniqueIndex:idx_segment_endpoints" json:"destination_y"`
	Direction    string    `gorm:"size:32;not null" json:"direction"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
