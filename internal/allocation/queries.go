package allocation

import (
	"context"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/metrics"
	"parking-allocator/internal/model"
	"parking-allocator/internal/occupancy"
)

// SpotState is a spot together with its replayed occupancy.
type SpotState struct {
	model.Spot
	Occupied bool `json:"occupied"`
}

// UserStatus describes a user's active entry, if any.
type UserStatus struct {
	UserID uint                  `json:"user_id"`
	Active bool                  `json:"active"`
	Entry  *model.ActivityRecord `json:"entry,omitempty"`
	Spot   *model.Spot           `json:"spot,omitempty"`
}

// Spots lists every spot with its current occupancy.
func (s *Service) Spots(ctx context.Context) ([]SpotState, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	occ := occupancy.Resolve(snap.Records)
	out := make([]SpotState, 0, len(snap.Spots))
	for _, sp := range snap.Spots {
		out = append(out, SpotState{Spot: sp, Occupied: occ.IsOccupied(sp.ID)})
	}
	return out, nil
}

// Status reports the user's active entry and the spot it holds.
func (s *Service) Status(ctx context.Context, userID uint) (UserStatus, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return UserStatus{}, err
	}
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return UserStatus{}, err
	}
	st := UserStatus{UserID: userID}
	entry, ok := occupancy.Resolve(snap.Records).ActiveEntry(userID)
	if !ok {
		return st, nil
	}
	st.Active = true
	st.Entry = &entry
	for i := range snap.Spots {
		if snap.Spots[i].ID == entry.SpotID {
			st.Spot = &snap.Spots[i]
			break
		}
	}
	return st, nil
}

// Route returns the walking distance between two points over the current
// path network, or grid.Unreachable.
func (s *Service) Route(ctx context.Context, from, to grid.Point) (int, error) {
	metrics.RouteRequestsTotal.Inc()
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return grid.Unreachable, err
	}
	g := grid.Build(snap.GridSegments(), from, to)
	return grid.ShortestPath(g, from, to), nil
}
