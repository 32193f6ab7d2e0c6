// Package occupancy replays the activity ledger into the current state of
// spots and users. Nothing here is cached between calls.
package occupancy

import "parking-allocator/internal/model"

// Occupancy is the reduced view of a ledger: the latest record per spot and
// per user.
type Occupancy struct {
	bySpot map[uint]model.ActivityRecord
	byUser map[uint]model.ActivityRecord
}

// Resolve reduces records, in any order, to the latest record per spot and
// per user.
func Resolve(records []model.ActivityRecord) *Occupancy {
	o := &Occupancy{
		bySpot: make(map[uint]model.ActivityRecord),
		byUser: make(map[uint]model.ActivityRecord),
	}
	for _, r := range records {
		if cur, ok := o.bySpot[r.SpotID]; !ok || newer(r, cur) {
			o.bySpot[r.SpotID] = r
		}
		if cur, ok := o.byUser[r.UserID]; !ok || newer(r, cur) {
			o.byUser[r.UserID] = r
		}
	}
	return o
}

// newer orders records by timestamp, then by ID for equal timestamps.
func newer(a, b model.ActivityRecord) bool {
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.After(b.RecordedAt)
	}
	return a.ID > b.ID
}

// IsOccupied reports whether the latest record for the spot is an entry.
func (o *Occupancy) IsOccupied(spotID uint) bool {
	r, ok := o.bySpot[spotID]
	return ok && r.Kind == model.ActivityEntry
}

// OccupiedSet returns the IDs of every occupied spot.
func (o *Occupancy) OccupiedSet() map[uint]struct{} {
	out := make(map[uint]struct{})
	for id, r := range o.bySpot {
		if r.Kind == model.ActivityEntry {
			out[id] = struct{}{}
		}
	}
	return out
}

// HasActiveEntry reports whether the user's latest record is an entry.
func (o *Occupancy) HasActiveEntry(userID uint) bool {
	_, ok := o.ActiveEntry(userID)
	return ok
}

// ActiveEntry returns the user's unmatched entry, if any.
func (o *Occupancy) ActiveEntry(userID uint) (model.ActivityRecord, bool) {
	r, ok := o.byUser[userID]
	if !ok || r.Kind != model.ActivityEntry {
		return model.ActivityRecord{}, false
	}
	return r, true
}

// LatestForSpot returns the most recent record referencing the spot.
func (o *Occupancy) LatestForSpot(spotID uint) (model.ActivityRecord, bool) {
	r, ok := o.bySpot[spotID]
	return r, ok
}

// LatestForUser returns the most recent record of the user.
func (o *Occupancy) LatestForUser(userID uint) (model.ActivityRecord, bool) {
	r, ok := o.byUser[userID]
	return r, ok
}
