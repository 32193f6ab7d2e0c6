// Package allocation assigns parking spots on entry and releases them on
// exit. Every decision is made from a fresh snapshot of the map and the
// activity ledger, under the allocation lock.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/lock"
	"parking-allocator/internal/metrics"
	"parking-allocator/internal/model"
	"parking-allocator/internal/occupancy"
	"parking-allocator/internal/store"
)

// lockKey names the single critical section shared by entries and exits.
const lockKey = "allocation"

// Store is the persistence the service depends on.
type Store interface {
	LoadSnapshot(ctx context.Context) (store.Snapshot, error)
	LoadLedger(ctx context.Context) ([]model.ActivityRecord, error)
	GetUser(ctx context.Context, id uint) (model.User, error)
	GetVehicle(ctx context.Context, id uint) (model.Vehicle, error)
	AppendEntry(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error)
	AppendExit(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error)
}

// Notifier is told about spots freed by an exit.
type Notifier interface {
	Dispatch(spotID uint)
}

type Service struct {
	store    Store
	locker   lock.Locker
	entrance grid.Point
	notifier Notifier
}

// NewService wires the allocation engine. notifier may be nil.
func NewService(st Store, locker lock.Locker, entrance grid.Point, notifier Notifier) *Service {
	return &Service{store: st, locker: locker, entrance: entrance, notifier: notifier}
}

// EntryRequest asks for a spot. Either VehicleType or VehicleID must be set;
// a vehicle's type wins when both are.
type EntryRequest struct {
	UserID      uint
	VehicleType model.VehicleType
	VehicleID   uint
	AccessPath  string
}

type ExitRequest struct {
	UserID     uint
	AccessPath string
}

// Allocation is the outcome of a successful entry.
type Allocation struct {
	Spot     model.Spot           `json:"spot"`
	Record   model.ActivityRecord `json:"record"`
	Distance int                  `json:"distance"`
	Origin   grid.Point           `json:"origin"`
}

// RequestEntry selects the nearest compatible vacant spot for the user and
// appends an ENTRY record for it.
func (s *Service) RequestEntry(ctx context.Context, req EntryRequest) (Allocation, error) {
	start := time.Now()
	alloc, err := s.requestEntry(ctx, req)
	metrics.AllocationDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	metrics.AllocationsTotal.WithLabelValues(result(err)).Inc()
	return alloc, err
}

func (s *Service) requestEntry(ctx context.Context, req EntryRequest) (Allocation, error) {
	vt, err := s.vehicleType(ctx, req)
	if err != nil {
		return Allocation{}, err
	}
	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return Allocation{}, err
	}

	release, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		return Allocation{}, fmt.Errorf("failed to acquire allocation lock: %w", err)
	}
	defer release()

	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return Allocation{}, err
	}
	occ := occupancy.Resolve(snap.Records)
	if occ.HasActiveEntry(user.ID) {
		return Allocation{}, fmt.Errorf("%w: user %d", ErrDuplicateEntry, user.ID)
	}

	occupied := occ.OccupiedSet()
	candidates := compatible(snap.Spots, occupied, vt)
	if len(candidates) == 0 {
		return Allocation{}, fmt.Errorf("%w: no vacant %s spot", ErrNoSpotAvailable, vt)
	}

	work := workPoint(user)
	// The entrance is routed from only when it lies on a path cell.
	special := make([]grid.Point, 0, len(candidates)+1)
	for _, c := range candidates {
		special = append(special, store.SpotPoint(c))
	}
	if work != nil {
		special = append(special, *work)
	}
	g := grid.Build(snap.GridSegments(), special...)

	origin := ResolveOrigin(g, s.entrance, work)
	if g.Degree(origin) == 0 {
		return Allocation{}, fmt.Errorf("%w: %s", ErrUnreachableOrigin, origin)
	}

	spot, dist, ok := SelectBestSpot(candidates, occupied, vt, origin, g)
	if !ok {
		return Allocation{}, fmt.Errorf("%w: no reachable %s spot from %s", ErrNoSpotAvailable, vt, origin)
	}

	rec, err := s.store.AppendEntry(ctx, model.ActivityRecord{
		SpotID:     spot.ID,
		UserID:     user.ID,
		AccessPath: req.AccessPath,
	})
	switch {
	case errors.Is(err, store.ErrActiveEntryExists):
		return Allocation{}, fmt.Errorf("%w: %v", ErrDuplicateEntry, err)
	case errors.Is(err, store.ErrSpotOccupied):
		return Allocation{}, fmt.Errorf("%w: %v", ErrNoSpotAvailable, err)
	case err != nil:
		return Allocation{}, err
	}

	log.Printf("Allocated spot %s (#%d) to user %d, %d steps from %s", spot.Code, spot.ID, user.ID, dist, origin)
	return Allocation{Spot: spot, Record: rec, Distance: dist, Origin: origin}, nil
}

// RequestExit closes the user's active entry and hands the freed spot to the
// notifier.
func (s *Service) RequestExit(ctx context.Context, req ExitRequest) (model.ActivityRecord, error) {
	rec, err := s.requestExit(ctx, req)
	metrics.ExitsTotal.WithLabelValues(result(err)).Inc()
	if err == nil && s.notifier != nil {
		s.notifier.Dispatch(rec.SpotID)
	}
	return rec, err
}

func (s *Service) requestExit(ctx context.Context, req ExitRequest) (model.ActivityRecord, error) {
	release, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("failed to acquire allocation lock: %w", err)
	}
	defer release()

	records, err := s.store.LoadLedger(ctx)
	if err != nil {
		return model.ActivityRecord{}, err
	}
	entry, ok := occupancy.Resolve(records).ActiveEntry(req.UserID)
	if !ok {
		return model.ActivityRecord{}, fmt.Errorf("%w: user %d", ErrNoActiveEntry, req.UserID)
	}

	rec, err := s.store.AppendExit(ctx, model.ActivityRecord{
		SpotID:     entry.SpotID,
		UserID:     req.UserID,
		AccessPath: req.AccessPath,
	})
	if errors.Is(err, store.ErrNoActiveEntry) {
		return model.ActivityRecord{}, fmt.Errorf("%w: %v", ErrNoActiveEntry, err)
	}
	if err != nil {
		return model.ActivityRecord{}, err
	}
	log.Printf("User %d left spot #%d", req.UserID, rec.SpotID)
	return rec, nil
}

func (s *Service) vehicleType(ctx context.Context, req EntryRequest) (model.VehicleType, error) {
	vt := req.VehicleType
	if req.VehicleID != 0 {
		v, err := s.store.GetVehicle(ctx, req.VehicleID)
		if err != nil {
			return "", err
		}
		if v.UserID != req.UserID {
			return "", fmt.Errorf("%w: vehicle %d, user %d", ErrVehicleNotOwned, v.ID, req.UserID)
		}
		vt = v.Type
	}
	if !vt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVehicleType, vt)
	}
	return vt, nil
}

func workPoint(u model.User) *grid.Point {
	if u.WorkLocation == nil {
		return nil
	}
	return &grid.Point{X: u.WorkLocation.X, Y: u.WorkLocation.Y}
}
