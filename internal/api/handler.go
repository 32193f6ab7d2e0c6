package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"parking-allocator/internal/allocation"
	"parking-allocator/internal/grid"
	"parking-allocator/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc      *allocation.Service
	store    store.Store
	entrance grid.Point
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *allocation.Service, s store.Store, entrance grid.Point, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		svc:      svc,
		store:    s,
		entrance: entrance,
		webpush:  webpushOptions,
	}
}

// errorStatus maps domain errors to an HTTP status and a stable code.
// Order matters: ErrUnreachableOrigin also matches ErrNoSpotAvailable.
var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{allocation.ErrDuplicateEntry, http.StatusConflict, "duplicate_entry"},
	{allocation.ErrUnreachableOrigin, http.StatusConflict, "unreachable_origin"},
	{allocation.ErrNoSpotAvailable, http.StatusConflict, "no_spot_available"},
	{allocation.ErrNoActiveEntry, http.StatusConflict, "no_active_entry"},
	{allocation.ErrUnknownVehicleType, http.StatusBadRequest, "unknown_vehicle_type"},
	{allocation.ErrVehicleNotOwned, http.StatusForbidden, "vehicle_not_owned"},
	{grid.ErrInvalidSegment, http.StatusBadRequest, "invalid_segment"},
	{store.ErrInvalidSpot, http.StatusBadRequest, "invalid_spot"},
	{store.ErrSpotOnPath, http.StatusUnprocessableEntity, "spot_on_path"},
	{store.ErrSpotReferenced, http.StatusConflict, "spot_referenced"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
}

func writeError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": err.Error(), "code": e.code})
			return
		}
	}
	log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_request"})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
