package grid

import (
	"fmt"
	"math"
)

// Point is a position on the parking map. Path cells always have integral
// coordinates; spots and work locations may sit between cells.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt builds a Point from integer grid coordinates.
func Pt(x, y int) Point {
	return Point{X: float64(x), Y: float64(y)}
}

// Entrance is the default routing origin.
var Entrance = Point{}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Manhattan returns the L1 distance between p and q.
func (p Point) Manhattan(q Point) float64 {
	return math.Abs(p.X-q.X) + math.Abs(p.Y-q.Y)
}

// aligned reports whether p and q share a row or a column.
func (p Point) aligned(q Point) bool {
	return p.X == q.X || p.Y == q.Y
}
