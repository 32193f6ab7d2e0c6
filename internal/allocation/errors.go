package allocation

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEntry     = errors.New("user already has an active entry")
	ErrNoActiveEntry      = errors.New("user has no active entry")
	ErrNoSpotAvailable    = errors.New("no compatible spot available")
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	ErrVehicleNotOwned    = errors.New("vehicle does not belong to user")

	// ErrUnreachableOrigin is reported when the routing origin has no edge
	// into the path network. errors.Is matches ErrNoSpotAvailable too.
	ErrUnreachableOrigin = fmt.Errorf("%w: origin is not connected to the path network", ErrNoSpotAvailable)
)

// result labels an outcome for the metrics counters.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnreachableOrigin):
		return "unreachable_origin"
	case errors.Is(err, ErrNoSpotAvailable):
		return "no_spot"
	case errors.Is(err, ErrDuplicateEntry):
		return "duplicate"
	case errors.Is(err, ErrNoActiveEntry):
		return "no_active_entry"
	default:
		return "error"
	}
}
