package store

import (
	"errors"
	"fmt"
	"log"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrSpotOccupied      = errors.New("spot is occupied")
	ErrActiveEntryExists = errors.New("user already has an active entry")
	ErrNoActiveEntry     = errors.New("user has no active entry")
	ErrSpotReferenced    = errors.New("spot is referenced by the activity ledger")
	ErrSpotOnPath        = errors.New("spot cannot be placed on a path cell")
	ErrInvalidSpot       = errors.New("invalid spot")
)

// Snapshot is a consistent read of everything an allocation needs.
type Snapshot struct {
	Spots    []model.Spot
	Segments []model.PathSegment
	Records  []model.ActivityRecord
}

// GridSegments converts the stored segments for the graph builder, dropping
// rows that do not form a valid segment.
func (s Snapshot) GridSegments() []grid.Segment {
	return GridSegments(s.Segments)
}

// GridSegments converts stored segments, logging and skipping invalid rows.
func GridSegments(rows []model.PathSegment) []grid.Segment {
	out := make([]grid.Segment, 0, len(rows))
	for _, m := range rows {
		seg, err := SegmentFromModel(m)
		if err != nil {
			log.Printf("Skipping stored segment %d: %v", m.ID, err)
			continue
		}
		out = append(out, seg)
	}
	return out
}

// SegmentFromModel converts and validates one stored segment.
func SegmentFromModel(m model.PathSegment) (grid.Segment, error) {
	dir, err := grid.ParseDirection(m.Direction)
	if err != nil {
		return grid.Segment{}, fmt.Errorf("%w: %v", grid.ErrInvalidSegment, err)
	}
	seg := grid.Segment{
		From:      grid.Pt(m.OriginX, m.OriginY),
		To:        grid.Pt(m.DestinationX, m.DestinationY),
		Direction: dir,
	}
	if err := seg.Validate(); err != nil {
		return grid.Segment{}, err
	}
	return seg, nil
}

// SpotPoint returns the grid position of a spot.
func SpotPoint(s model.Spot) grid.Point {
	return grid.Point{X: s.X, Y: s.Y}
}

// SpotPatch carries the mutable attributes of a spot; nil fields are left
// unchanged.
type SpotPatch struct {
	Category *model.VehicleType
	X        *float64
	Y        *float64
}
