package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
)

// SeedDev loads a small demo lot into an empty database: a main aisle from
// the entrance, a one-way loop up one side aisle and down the other, and
// twenty spots of mixed categories beside the aisles.
func SeedDev(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Spot{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count spots: %w", err)
	}
	if count > 0 {
		log.Printf("Seed skipped: %d spots already present", count)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		segments := []model.PathSegment{
			{OriginX: 0, OriginY: 0, DestinationX: 12, DestinationY: 0, Direction: string(grid.Bidirectional)},
			{OriginX: 4, OriginY: 0, DestinationX: 4, DestinationY: 8, Direction: string(grid.OneWayForward)},
			{OriginX: 4, OriginY: 8, DestinationX: 8, DestinationY: 8, Direction: string(grid.Bidirectional)},
			{OriginX: 8, OriginY: 0, DestinationX: 8, DestinationY: 8, Direction: string(grid.OneWayBackward)},
		}
		if err := tx.Create(&segments).Error; err != nil {
			return fmt.Errorf("failed to seed segments: %w", err)
		}

		var positions [][2]float64
		for _, x := range []float64{1, 2, 3, 5, 6, 7, 9, 10} {
			positions = append(positions, [2]float64{x, -1})
		}
		for _, aisle := range []float64{4, 8} {
			for _, y := range []float64{2, 4, 6} {
				positions = append(positions, [2]float64{aisle - 1, y}, [2]float64{aisle + 1, y})
			}
		}

		spots := make([]model.Spot, 0, len(positions))
		for i, p := range positions {
			spots = append(spots, model.Spot{
				Code:            fmt.Sprintf("V%d", i+1),
				Category:        model.VehicleTypes[i%len(model.VehicleTypes)],
				GeneralPosition: i + 1,
				X:               p[0],
				Y:               p[1],
			})
		}
		if err := tx.Create(&spots).Error; err != nil {
			return fmt.Errorf("failed to seed spots: %w", err)
		}

		office := model.WorkLocation{Name: "Bloco A", X: 12, Y: 1}
		if err := tx.Create(&office).Error; err != nil {
			return fmt.Errorf("failed to seed work location: %w", err)
		}
		users := []model.User{
			{Username: "visitante", Email: "visitante@example.com"},
			{Username: "funcionario", Email: "funcionario@example.com", WorkLocationID: &office.ID},
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		vehicles := []model.Vehicle{
			{UserID: users[0].ID, Plate: "ABC1D23", Type: model.VehicleCarro},
			{UserID: users[1].ID, Plate: "XYZ9K87", Type: model.VehicleMoto},
		}
		if err := tx.Create(&vehicles).Error; err != nil {
			return fmt.Errorf("failed to seed vehicles: %w", err)
		}

		log.Printf("Seeded demo lot: %d segments, %d spots, %d users", len(segments), len(spots), len(users))
		return nil
	})
}
