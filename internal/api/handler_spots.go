package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"parking-allocator/internal/allocation"
	"parking-allocator/internal/model"
	"parking-allocator/internal/parse"
	"parking-allocator/internal/store"
)

// GetSpots lists spots with their occupancy. Optional filters:
// vehicle_type and available=true|false.
func (h *Handler) GetSpots(c *gin.Context) {
	var vt model.VehicleType
	if raw := c.Query("vehicle_type"); raw != "" {
		parsed, err := parse.ParseVehicleType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "unknown_vehicle_type"})
			return
		}
		vt = parsed
	}
	var available *bool
	if raw := c.Query("available"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "available must be true or false")
			return
		}
		available = &b
	}

	spots, err := h.svc.Spots(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]allocation.SpotState, 0, len(spots))
	for _, s := range spots {
		if vt != "" && s.Category != vt {
			continue
		}
		if available != nil && *available == s.Occupied {
			continue
		}
		out = append(out, s)
	}
	c.JSON(http.StatusOK, out)
}

type createSpotRequest struct {
	Code            string   `json:"code"`
	Category        string   `json:"category" binding:"required"`
	GeneralPosition int      `json:"general_position"`
	X               *float64 `json:"x" binding:"required"`
	Y               *float64 `json:"y" binding:"required"`
}

// PostSpot places a new spot on the map.
func (h *Handler) PostSpot(c *gin.Context) {
	var req createSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	category, err := parse.ParseVehicleType(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_spot"})
		return
	}

	spot, err := h.store.CreateSpot(c.Request.Context(), model.Spot{
		Code:            req.Code,
		Category:        category,
		GeneralPosition: req.GeneralPosition,
		X:               *req.X,
		Y:               *req.Y,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

type patchSpotRequest struct {
	Category *string  `json:"category"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

// PatchSpot changes a spot's category or position.
func (h *Handler) PatchSpot(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req patchSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	patch := store.SpotPatch{X: req.X, Y: req.Y}
	if req.Category != nil {
		category, err := parse.ParseVehicleType(*req.Category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_spot"})
			return
		}
		patch.Category = &category
	}

	spot, err := h.store.UpdateSpot(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// DeleteSpot removes a spot that has no ledger history.
func (h *Handler) DeleteSpot(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteSpot(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
