package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
)

var pointRe = regexp.MustCompile(`^\(?\s*(-?\d+(?:\.\d+)?)\s*[,;]\s*(-?\d+(?:\.\d+)?)\s*\)?$`)

// ParsePoint reads "x,y" (optionally parenthesized) into a grid point.
func ParsePoint(raw string) (grid.Point, error) {
	m := pointRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return grid.Point{}, fmt.Errorf("unable to parse point: %q", raw)
	}
	x, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return grid.Point{}, fmt.Errorf("unable to parse x in %q: %w", raw, err)
	}
	y, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return grid.Point{}, fmt.Errorf("unable to parse y in %q: %w", raw, err)
	}
	return grid.Point{X: x, Y: y}, nil
}

var vehicleAliases = map[string]model.VehicleType{
	"MOTO":           model.VehicleMoto,
	"MOTORCYCLE":     model.VehicleMoto,
	"MOTOCICLETA":    model.VehicleMoto,
	"CARRO":          model.VehicleCarro,
	"CAR":            model.VehicleCarro,
	"PCD":            model.VehiclePCD,
	"ACCESSIBLE":     model.VehiclePCD,
	"CARRO_ELETRICO": model.VehicleCarroEletrico,
	"CARRO_ELÉTRICO": model.VehicleCarroEletrico,
	"ELECTRIC":       model.VehicleCarroEletrico,
	"EV":             model.VehicleCarroEletrico,
}

// ParseVehicleType maps user input to a vehicle category.
func ParseVehicleType(raw string) (model.VehicleType, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if t, ok := vehicleAliases[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown vehicle type: %q", raw)
}

// NormalizeSegment orders the endpoints so the smaller point (by x, then y)
// comes first. One-way directions are flipped when the endpoints are swapped
// so the segment still allows the same travel.
func NormalizeSegment(s grid.Segment) grid.Segment {
	if less(s.To, s.From) {
		return grid.Segment{From: s.To, To: s.From, Direction: s.Direction.Reverse()}
	}
	return s
}

func less(a, b grid.Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
