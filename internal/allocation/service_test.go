package allocation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/lock"
	"parking-allocator/internal/model"
	"parking-allocator/internal/occupancy"
	"parking-allocator/internal/store"
)

// memStore is an in-memory Store with the same re-check semantics as the
// gorm store.
type memStore struct {
	mu       sync.Mutex
	spots    []model.Spot
	segments []model.PathSegment
	records  []model.ActivityRecord
	users    map[uint]model.User
	vehicles map[uint]model.Vehicle
	clock    time.Time

	// readDelay widens the window between reading a snapshot and appending.
	readDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uint]model.User),
		vehicles: make(map[uint]model.Vehicle),
		clock:    time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addUser(id uint, work *model.WorkLocation) {
	m.users[id] = model.User{ID: id, Username: fmt.Sprintf("user%d", id), WorkLocation: work}
}

func (m *memStore) addSegment(x1, y1, x2, y2 int, dir grid.Direction) {
	m.segments = append(m.segments, model.PathSegment{
		ID: uint(len(m.segments) + 1), OriginX: x1, OriginY: y1, DestinationX: x2, DestinationY: y2,
		Direction: string(dir),
	})
}

func (m *memStore) LoadSnapshot(ctx context.Context) (store.Snapshot, error) {
	m.mu.Lock()
	snap := store.Snapshot{
		Spots:    append([]model.Spot(nil), m.spots...),
		Segments: append([]model.PathSegment(nil), m.segments...),
		Records:  append([]model.ActivityRecord(nil), m.records...),
	}
	m.mu.Unlock()
	time.Sleep(m.readDelay)
	return snap, nil
}

func (m *memStore) LoadLedger(ctx context.Context) ([]model.ActivityRecord, error) {
	snap, err := m.LoadSnapshot(ctx)
	return snap.Records, err
}

func (m *memStore) GetUser(ctx context.Context, id uint) (model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("%w: user %d", store.ErrNotFound, id)
	}
	return u, nil
}

func (m *memStore) GetVehicle(ctx context.Context, id uint) (model.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: vehicle %d", store.ErrNotFound, id)
	}
	return v, nil
}

func (m *memStore) AppendEntry(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	occ := occupancy.Resolve(m.records)
	if occ.IsOccupied(rec.SpotID) {
		return model.ActivityRecord{}, store.ErrSpotOccupied
	}
	if occ.HasActiveEntry(rec.UserID) {
		return model.ActivityRecord{}, store.ErrActiveEntryExists
	}
	rec.Kind = model.ActivityEntry
	return m.append(rec), nil
}

func (m *memStore) AppendExit(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := occupancy.Resolve(m.records).ActiveEntry(rec.UserID)
	if !ok {
		return model.ActivityRecord{}, store.ErrNoActiveEntry
	}
	rec.Kind = model.ActivityExit
	rec.SpotID = entry.SpotID
	return m.append(rec), nil
}

func (m *memStore) append(rec model.ActivityRecord) model.ActivityRecord {
	m.clock = m.clock.Add(time.Second)
	rec.ID = uint(len(m.records) + 1)
	rec.RecordedAt = m.clock
	m.records = append(m.records, rec)
	return rec
}

type recordingNotifier struct {
	mu    sync.Mutex
	spots []uint
}

func (n *recordingNotifier) Dispatch(spotID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spots = append(n.spots, spotID)
}

// scenarioStore lays out a corridor from the entrance with
// S1 (CARRO, 4 steps), S2 (CARRO, 2 steps) and S3 (MOTO, 2 steps).
func scenarioStore() *memStore {
	m := newMemStore()
	m.addSegment(0, 0, 5, 0, grid.Bidirectional)
	m.spots = []model.Spot{
		{ID: 1, Code: "S1", Category: model.VehicleCarro, X: 3, Y: 1},
		{ID: 2, Code: "S2", Category: model.VehicleCarro, X: 1, Y: 1},
		{ID: 3, Code: "S3", Category: model.VehicleMoto, X: 1, Y: -1},
	}
	m.addUser(1, nil)
	m.addUser(2, nil)
	m.addUser(3, nil)
	return m
}

func newTestService(m *memStore, n Notifier) *Service {
	return NewService(m, lock.NewLocal(), grid.Entrance, n)
}

func TestService_RequestEntry_SkipsOccupiedAndOtherTypes(t *testing.T) {
	m := scenarioStore()
	svc := newTestService(m, nil)
	ctx := context.Background()

	// User 3 takes S2 first.
	first, err := svc.RequestEntry(ctx, EntryRequest{UserID: 3, VehicleType: model.VehicleCarro})
	require.NoError(t, err)
	assert.Equal(t, uint(2), first.Spot.ID)

	alloc, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro, AccessPath: "gate-a"})
	require.NoError(t, err)
	assert.Equal(t, "S1", alloc.Spot.Code)
	assert.Equal(t, 4, alloc.Distance)
	assert.Equal(t, grid.Entrance, alloc.Origin)
	assert.Equal(t, model.ActivityEntry, alloc.Record.Kind)
	assert.Equal(t, "gate-a", alloc.Record.AccessPath)
	assert.Len(t, m.records, 2)
}

func TestService_RequestEntry_RoutesFromWorkLocation(t *testing.T) {
	m := newMemStore()
	m.addSegment(0, 0, 10, 0, grid.Bidirectional)
	m.spots = []model.Spot{
		{ID: 1, Code: "A", Category: model.VehicleCarro, X: 2, Y: 1},
		{ID: 2, Code: "B", Category: model.VehicleCarro, X: 8, Y: 1},
	}
	m.addUser(1, &model.WorkLocation{ID: 1, Name: "Bloco B", X: 9, Y: -1})
	m.addUser(2, &model.WorkLocation{ID: 2, Name: "Anexo", X: 30, Y: 30})
	m.addUser(3, nil)
	svc := newTestService(m, nil)
	ctx := context.Background()

	alloc, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
	require.NoError(t, err)
	assert.Equal(t, "B", alloc.Spot.Code)
	assert.Equal(t, grid.Point{X: 9, Y: -1}, alloc.Origin)
	assert.Equal(t, 3, alloc.Distance)

	// A work location off the network falls back to the entrance.
	m2 := newMemStore()
	m2.segments, m2.spots, m2.users = m.segments, m.spots, m.users
	alloc, err = newTestService(m2, nil).RequestEntry(ctx, EntryRequest{UserID: 2, VehicleType: model.VehicleCarro})
	require.NoError(t, err)
	assert.Equal(t, "A", alloc.Spot.Code)
	assert.Equal(t, grid.Entrance, alloc.Origin)
}

func TestService_RequestEntry_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate entry", func(t *testing.T) {
		svc := newTestService(scenarioStore(), nil)
		_, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
		require.NoError(t, err)
		_, err = svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleMoto})
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	})

	t.Run("no compatible spot", func(t *testing.T) {
		svc := newTestService(scenarioStore(), nil)
		_, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehiclePCD})
		assert.ErrorIs(t, err, ErrNoSpotAvailable)
		assert.False(t, errors.Is(err, ErrUnreachableOrigin))
	})

	t.Run("origin off the network", func(t *testing.T) {
		m := newMemStore()
		m.addSegment(5, 5, 8, 5, grid.Bidirectional)
		m.spots = []model.Spot{{ID: 1, Category: model.VehicleCarro, X: 6, Y: 6}}
		m.addUser(1, nil)
		_, err := newTestService(m, nil).RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
		assert.ErrorIs(t, err, ErrUnreachableOrigin)
		assert.ErrorIs(t, err, ErrNoSpotAvailable)
		assert.Empty(t, m.records)
	})

	t.Run("entrance beside the network but not on it", func(t *testing.T) {
		m := newMemStore()
		m.addSegment(0, 1, 4, 1, grid.Bidirectional)
		m.spots = []model.Spot{{ID: 1, Code: "A", Category: model.VehicleCarro, X: 4, Y: 2}}
		m.addUser(1, nil)
		_, err := newTestService(m, nil).RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
		assert.ErrorIs(t, err, ErrUnreachableOrigin)
		assert.ErrorIs(t, err, ErrNoSpotAvailable)
		assert.Empty(t, m.records)
	})

	t.Run("unknown vehicle type", func(t *testing.T) {
		svc := newTestService(scenarioStore(), nil)
		_, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: "BUS"})
		assert.ErrorIs(t, err, ErrUnknownVehicleType)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newTestService(scenarioStore(), nil)
		_, err := svc.RequestEntry(ctx, EntryRequest{UserID: 99, VehicleType: model.VehicleCarro})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestService_RequestEntry_ByVehicle(t *testing.T) {
	m := scenarioStore()
	m.vehicles[7] = model.Vehicle{ID: 7, UserID: 1, Plate: "ABC1D23", Type: model.VehicleMoto}
	svc := newTestService(m, nil)
	ctx := context.Background()

	_, err := svc.RequestEntry(ctx, EntryRequest{UserID: 2, VehicleID: 7})
	assert.ErrorIs(t, err, ErrVehicleNotOwned)

	alloc, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleID: 7})
	require.NoError(t, err)
	assert.Equal(t, "S3", alloc.Spot.Code)
}

func TestService_RequestExit(t *testing.T) {
	m := scenarioStore()
	n := &recordingNotifier{}
	svc := newTestService(m, n)
	ctx := context.Background()

	_, err := svc.RequestExit(ctx, ExitRequest{UserID: 1})
	assert.ErrorIs(t, err, ErrNoActiveEntry)

	alloc, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
	require.NoError(t, err)

	rec, err := svc.RequestExit(ctx, ExitRequest{UserID: 1, AccessPath: "gate-b"})
	require.NoError(t, err)
	assert.Equal(t, model.ActivityExit, rec.Kind)
	assert.Equal(t, alloc.Spot.ID, rec.SpotID)
	assert.Equal(t, []uint{alloc.Spot.ID}, n.spots)

	_, err = svc.RequestExit(ctx, ExitRequest{UserID: 1})
	assert.ErrorIs(t, err, ErrNoActiveEntry)

	// The spot is free again for the next driver.
	again, err := svc.RequestEntry(ctx, EntryRequest{UserID: 2, VehicleType: model.VehicleCarro})
	require.NoError(t, err)
	assert.Equal(t, alloc.Spot.ID, again.Spot.ID)
}

func TestService_ConcurrentEntriesForLastSpot(t *testing.T) {
	m := newMemStore()
	m.addSegment(0, 0, 3, 0, grid.Bidirectional)
	m.spots = []model.Spot{{ID: 1, Code: "ONLY", Category: model.VehicleCarro, X: 2, Y: 1}}
	m.addUser(1, nil)
	m.addUser(2, nil)
	m.readDelay = 20 * time.Millisecond
	svc := newTestService(m, nil)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestEntry(context.Background(), EntryRequest{UserID: uint(i + 1), VehicleType: model.VehicleCarro})
		}(i)
	}
	wg.Wait()

	var ok, noSpot int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNoSpotAvailable):
			noSpot++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, noSpot)
	assert.Len(t, m.records, 1)
}

func TestService_ConcurrentEntriesSameUser(t *testing.T) {
	m := scenarioStore()
	m.readDelay = 20 * time.Millisecond
	svc := newTestService(m, nil)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestEntry(context.Background(), EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateEntry):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestService_ReadOperations(t *testing.T) {
	m := scenarioStore()
	svc := newTestService(m, nil)
	ctx := context.Background()

	alloc, err := svc.RequestEntry(ctx, EntryRequest{UserID: 1, VehicleType: model.VehicleCarro})
	require.NoError(t, err)

	status, err := svc.Status(ctx, 1)
	require.NoError(t, err)
	assert.True(t, status.Active)
	require.NotNil(t, status.Spot)
	assert.Equal(t, alloc.Spot.ID, status.Spot.ID)

	status, err = svc.Status(ctx, 2)
	require.NoError(t, err)
	assert.False(t, status.Active)
	assert.Nil(t, status.Entry)

	spots, err := svc.Spots(ctx)
	require.NoError(t, err)
	require.Len(t, spots, 3)
	for _, s := range spots {
		assert.Equal(t, s.ID == alloc.Spot.ID, s.Occupied, "spot %d", s.ID)
	}

	d, err := svc.Route(ctx, grid.Pt(0, 0), grid.Pt(5, 0))
	require.NoError(t, err)
	assert.Equal(t, 5, d)

	d, err = svc.Route(ctx, grid.Pt(0, 0), grid.Pt(9, 9))
	require.NoError(t, err)
	assert.Equal(t, grid.Unreachable, d)
}
