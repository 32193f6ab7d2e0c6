package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parking-allocator/internal/model"
)

// LoadSnapshot reads spots, segments and the full ledger in one read
// transaction so the caller never sees a half-applied map edit.
func (s *gormStore) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Order("id").Find(&snap.Spots).Error; err != nil {
			return fmt.Errorf("failed to load spots: %w", err)
		}
		if err := tx.Order("id").Find(&snap.Segments).Error; err != nil {
			return fmt.Errorf("failed to load segments: %w", err)
		}
		if err := tx.Order("recorded_at").Order("id").Find(&snap.Records).Error; err != nil {
			return fmt.Errorf("failed to load activity records: %w", err)
		}
		return nil
	}, s.txOptions(true)...)
	return snap, err
}

// LoadLedger returns every activity record in chronological order.
func (s *gormStore) LoadLedger(ctx context.Context) ([]model.ActivityRecord, error) {
	var records []model.ActivityRecord
	if err := s.db.WithContext(ctx).Order("recorded_at").Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load activity records: %w", err)
	}
	return records, nil
}

// GetUser loads a user together with their work location.
func (s *gormStore) GetUser(ctx context.Context, id uint) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Preload("WorkLocation").First(&u, id).Error; err != nil {
		return model.User{}, notFound(err, "user", id)
	}
	return u, nil
}

func (s *gormStore) GetVehicle(ctx context.Context, id uint) (model.Vehicle, error) {
	var v model.Vehicle
	if err := s.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return model.Vehicle{}, notFound(err, "vehicle", id)
	}
	return v, nil
}

// AppendEntry writes an ENTRY record after re-checking, inside the same
// transaction, that the spot is vacant and the user has no active entry.
func (s *gormStore) AppendEntry(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error) {
	rec.ID = 0
	rec.Kind = model.ActivityEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var spot model.Spot
		if err := tx.First(&spot, rec.SpotID).Error; err != nil {
			return notFound(err, "spot", rec.SpotID)
		}

		last, found, err := latestRecord(tx.Where("spot_id = ?", rec.SpotID))
		if err != nil {
			return err
		}
		if found && last.Kind == model.ActivityEntry {
			return fmt.Errorf("%w: spot %d", ErrSpotOccupied, rec.SpotID)
		}

		last, found, err = latestRecord(tx.Where("user_id = ?", rec.UserID))
		if err != nil {
			return err
		}
		if found && last.Kind == model.ActivityEntry {
			return fmt.Errorf("%w: user %d", ErrActiveEntryExists, rec.UserID)
		}

		return s.appendRecord(tx, &rec)
	}, s.txOptions(false)...)
	if err != nil {
		return model.ActivityRecord{}, err
	}
	return rec, nil
}

// AppendExit writes an EXIT record for the spot of the user's active entry.
func (s *gormStore) AppendExit(ctx context.Context, rec model.ActivityRecord) (model.ActivityRecord, error) {
	rec.ID = 0
	rec.Kind = model.ActivityExit

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		last, found, err := latestRecord(tx.Where("user_id = ?", rec.UserID))
		if err != nil {
			return err
		}
		if !found || last.Kind != model.ActivityEntry {
			return fmt.Errorf("%w: user %d", ErrNoActiveEntry, rec.UserID)
		}
		rec.SpotID = last.SpotID
		return s.appendRecord(tx, &rec)
	}, s.txOptions(false)...)
	if err != nil {
		return model.ActivityRecord{}, err
	}
	return rec, nil
}

// appendRecord stamps rec strictly after the newest ledger row and inserts it.
func (s *gormStore) appendRecord(tx *gorm.DB, rec *model.ActivityRecord) error {
	now := s.now().UTC()
	last, found, err := latestRecord(tx)
	if err != nil {
		return err
	}
	if found && !now.After(last.RecordedAt) {
		now = last.RecordedAt.UTC().Add(time.Microsecond)
	}
	rec.RecordedAt = now

	if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to append %s record for user %d: %w", rec.Kind, rec.UserID, err)
	}
	return nil
}

func latestRecord(q *gorm.DB) (model.ActivityRecord, bool, error) {
	var records []model.ActivityRecord
	if err := q.Order("recorded_at DESC").Order("id DESC").Limit(1).Find(&records).Error; err != nil {
		return model.ActivityRecord{}, false, fmt.Errorf("failed to read latest activity record: %w", err)
	}
	if len(records) == 0 {
		return model.ActivityRecord{}, false, nil
	}
	return records[0], true, nil
}
