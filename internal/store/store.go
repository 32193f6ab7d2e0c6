package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	LoadSnapshot(ctx context.Context) (Snapshot, error)
	LoadLedger(ctx context.Context) ([]model.ActivityRecord, error)
	GetUser(ctx context.Context, id uint) (model.User, error)
	GetVehicle(ctx context.Context, id uint) (model.Vehicle, error)
	AppendEntry(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error)
	AppendExit(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error)

	ListSpots(ctx context.Context) ([]model.Spot, error)
	GetSpot(ctx context.Context, id uint) (model.Spot, error)
	CreateSpot(ctx context.Context, spot model.Spot) (model.Spot, error)
	UpdateSpot(ctx context.Context, id uint, patch SpotPatch) (model.Spot, error)
	DeleteSpot(ctx context.Context, id uint) error

	ListSegments(ctx context.Context) ([]model.PathSegment, error)
	SaveSegment(ctx context.Context, seg grid.Segment) (model.PathSegment, error)
	DeleteSegment(ctx context.Context, from, to grid.Point) error
	ClearSegments(ctx context.Context) error

	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// txOptions picks the isolation for a transaction. SQLite transactions are
// already serialized, so only postgres gets explicit options.
func (s *gormStore) txOptions(readOnly bool) []*sql.TxOptions {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	if readOnly {
		return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
	}
	return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
}

// notFound translates gorm's missing-row error into ErrNotFound.
func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %v", ErrNotFound, what, id)
	}
	return err
}
