package store

import (
	"context"
	"fmt"
	"math/rand"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
	"parking-allocator/internal/parse"
)

const (
	spotCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	spotCodeLength   = 4
	spotCodeAttempts = 8
)

func (s *gormStore) ListSpots(ctx context.Context) ([]model.Spot, error) {
	var spots []model.Spot
	if err := s.db.WithContext(ctx).Order("id").Find(&spots).Error; err != nil {
		return nil, fmt.Errorf("failed to list spots: %w", err)
	}
	return spots, nil
}

func (s *gormStore) GetSpot(ctx context.Context, id uint) (model.Spot, error) {
	var spot model.Spot
	if err := s.db.WithContext(ctx).First(&spot, id).Error; err != nil {
		return model.Spot{}, notFound(err, "spot", id)
	}
	return spot, nil
}

// CreateSpot places a new spot. A missing code is generated and a zero
// GeneralPosition becomes one past the current maximum.
func (s *gormStore) CreateSpot(ctx context.Context, spot model.Spot) (model.Spot, error) {
	if !spot.Category.Valid() {
		return model.Spot{}, fmt.Errorf("%w: unknown category %q", ErrInvalidSpot, spot.Category)
	}
	spot.ID = 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := rejectOnPath(tx, SpotPoint(spot)); err != nil {
			return err
		}
		if spot.Code == "" {
			code, err := uniqueSpotCode(tx)
			if err != nil {
				return err
			}
			spot.Code = code
		}
		if spot.GeneralPosition == 0 {
			var top int
			if err := tx.Model(&model.Spot{}).Select("COALESCE(MAX(general_position), 0)").Row().Scan(&top); err != nil {
				return fmt.Errorf("failed to read spot positions: %w", err)
			}
			spot.GeneralPosition = top + 1
		}
		if err := tx.Create(&spot).Error; err != nil {
			return fmt.Errorf("failed to create spot: %w", err)
		}
		return nil
	}, s.txOptions(false)...)
	if err != nil {
		return model.Spot{}, err
	}
	return spot, nil
}

func (s *gormStore) UpdateSpot(ctx context.Context, id uint, patch SpotPatch) (model.Spot, error) {
	var spot model.Spot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&spot, id).Error; err != nil {
			return notFound(err, "spot", id)
		}
		if patch.Category != nil {
			if !patch.Category.Valid() {
				return fmt.Errorf("%w: unknown category %q", ErrInvalidSpot, *patch.Category)
			}
			spot.Category = *patch.Category
		}
		moved := false
		if patch.X != nil && *patch.X != spot.X {
			spot.X, moved = *patch.X, true
		}
		if patch.Y != nil && *patch.Y != spot.Y {
			spot.Y, moved = *patch.Y, true
		}
		if moved {
			if err := rejectOnPath(tx, SpotPoint(spot)); err != nil {
				return err
			}
		}
		if err := tx.Save(&spot).Error; err != nil {
			return fmt.Errorf("failed to update spot %d: %w", id, err)
		}
		return nil
	}, s.txOptions(false)...)
	if err != nil {
		return model.Spot{}, err
	}
	return spot, nil
}

// DeleteSpot removes a spot that has never been used. Spots referenced by the
// ledger stay, since occupancy history is derived from those rows.
func (s *gormStore) DeleteSpot(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&model.ActivityRecord{}).Where("spot_id = ?", id).Count(&refs).Error; err != nil {
			return fmt.Errorf("failed to count records for spot %d: %w", id, err)
		}
		if refs > 0 {
			return fmt.Errorf("%w: spot %d has %d records", ErrSpotReferenced, id, refs)
		}
		res := tx.Delete(&model.Spot{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete spot %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: spot %d", ErrNotFound, id)
		}
		return nil
	}, s.txOptions(false)...)
}

func (s *gormStore) ListSegments(ctx context.Context) ([]model.PathSegment, error) {
	var rows []model.PathSegment
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	return rows, nil
}

// SaveSegment validates and normalizes seg, then inserts it or replaces the
// direction of the segment already stored between the same endpoints.
func (s *gormStore) SaveSegment(ctx context.Context, seg grid.Segment) (model.PathSegment, error) {
	if err := seg.Validate(); err != nil {
		return model.PathSegment{}, err
	}
	seg = parse.NormalizeSegment(seg)
	row := segmentRow(seg)

	var stored model.PathSegment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "origin_x"}, {Name: "origin_y"},
				{Name: "destination_x"}, {Name: "destination_y"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to save segment %s -> %s: %w", seg.From, seg.To, err)
		}
		return tx.Where(endpointsQuery, row.OriginX, row.OriginY, row.DestinationX, row.DestinationY).
			First(&stored).Error
	}, s.txOptions(false)...)
	if err != nil {
		return model.PathSegment{}, err
	}
	return stored, nil
}

// DeleteSegment removes the segment between from and to, in either order.
func (s *gormStore) DeleteSegment(ctx context.Context, from, to grid.Point) error {
	seg := parse.NormalizeSegment(grid.Segment{From: from, To: to, Direction: grid.Bidirectional})
	row := segmentRow(seg)
	res := s.db.WithContext(ctx).
		Where(endpointsQuery, row.OriginX, row.OriginY, row.DestinationX, row.DestinationY).
		Delete(&model.PathSegment{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete segment %s -> %s: %w", from, to, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: segment %s -> %s", ErrNotFound, from, to)
	}
	return nil
}

// ClearSegments removes the whole path network.
func (s *gormStore) ClearSegments(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.PathSegment{}).Error; err != nil {
		return fmt.Errorf("failed to clear segments: %w", err)
	}
	return nil
}

const endpointsQuery = "origin_x = ? AND origin_y = ? AND destination_x = ? AND destination_y = ?"

func segmentRow(seg grid.Segment) model.PathSegment {
	return model.PathSegment{
		OriginX:      int(seg.From.X),
		OriginY:      int(seg.From.Y),
		DestinationX: int(seg.To.X),
		DestinationY: int(seg.To.Y),
		Direction:    string(seg.Direction),
	}
}

// rejectOnPath fails when p is a rasterized cell of the stored path network.
func rejectOnPath(tx *gorm.DB, p grid.Point) error {
	var rows []model.PathSegment
	if err := tx.Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load segments: %w", err)
	}
	if grid.Build(GridSegments(rows)).OnPath(p) {
		return fmt.Errorf("%w: %s", ErrSpotOnPath, p)
	}
	return nil
}

func uniqueSpotCode(tx *gorm.DB) (string, error) {
	for i := 0; i < spotCodeAttempts; i++ {
		code := randomSpotCode()
		var n int64
		if err := tx.Model(&model.Spot{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return "", fmt.Errorf("failed to check spot code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique spot code after %d attempts", spotCodeAttempts)
}

func randomSpotCode() string {
	b := make([]byte, spotCodeLength)
	for i := range b {
		b[i] = spotCodeAlphabet[rand.Intn(len(spotCodeAlphabet))]
	}
	return string(b)
}
