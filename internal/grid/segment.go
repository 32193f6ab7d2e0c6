package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSegment is returned for zero-length or diagonal segments.
var ErrInvalidSegment = errors.New("invalid segment")

// Direction is the travel policy of a segment, relative to From -> To.
type Direction string

const (
	OneWayForward  Direction = "ONE_WAY_FORWARD"
	OneWayBackward Direction = "ONE_WAY_BACKWARD"
	Bidirectional  Direction = "BIDIRECTIONAL"
)

// ParseDirection accepts the canonical names and the legacy IDA/VOLTA/AMBOS.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(OneWayForward), "FORWARD", "IDA":
		return OneWayForward, nil
	case string(OneWayBackward), "BACKWARD", "VOLTA":
		return OneWayBackward, nil
	case string(Bidirectional), "BOTH", "AMBOS":
		return Bidirectional, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// Reverse swaps the one-way policies; Bidirectional is unchanged.
func (d Direction) Reverse() Direction {
	switch d {
	case OneWayForward:
		return OneWayBackward
	case OneWayBackward:
		return OneWayForward
	}
	return d
}

// Segment is an axis-aligned path stretch between two integer grid points.
type Segment struct {
	From      Point
	To        Point
	Direction Direction
}

// Validate rejects zero-length, diagonal and off-grid segments.
func (s Segment) Validate() error {
	if s.From == s.To {
		return fmt.Errorf("%w: origin equals destination %s", ErrInvalidSegment, s.From)
	}
	if s.From.X != s.To.X && s.From.Y != s.To.Y {
		return fmt.Errorf("%w: %s -> %s is not horizontal or vertical", ErrInvalidSegment, s.From, s.To)
	}
	for _, p := range []Point{s.From, s.To} {
		if p.X != float64(int(p.X)) || p.Y != float64(int(p.Y)) {
			return fmt.Errorf("%w: %s is not a grid cell", ErrInvalidSegment, p)
		}
	}
	switch s.Direction {
	case OneWayForward, OneWayBackward, Bidirectional:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidSegment, s.Direction)
	}
	return nil
}

// cells returns every grid point from From to To inclusive, in walking order.
func (s Segment) cells() []Point {
	dx, dy := step(s.From.X, s.To.X), step(s.From.Y, s.To.Y)
	n := int(s.From.Manhattan(s.To))
	out := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, Point{X: s.From.X + float64(i*dx), Y: s.From.Y + float64(i*dy)})
	}
	return out
}

func step(from, to float64) int {
	switch {
	case to > from:
		return 1
	case to < from:
		return -1
	}
	return 0
}
