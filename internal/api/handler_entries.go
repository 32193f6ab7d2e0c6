package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-allocator/internal/allocation"
	"parking-allocator/internal/model"
	"parking-allocator/internal/parse"
)

type entryRequest struct {
	UserID      uint   `json:"user_id" binding:"required"`
	VehicleType string `json:"vehicle_type"`
	VehicleID   uint   `json:"vehicle_id"`
	AccessPath  string `json:"access_path"`
}

// PostEntry allocates the best spot for an arriving driver.
func (h *Handler) PostEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.VehicleType == "" && req.VehicleID == 0 {
		badRequest(c, "vehicle_type or vehicle_id is required")
		return
	}

	var vt model.VehicleType
	if req.VehicleType != "" {
		parsed, err := parse.ParseVehicleType(req.VehicleType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "unknown_vehicle_type"})
			return
		}
		vt = parsed
	}

	alloc, err := h.svc.RequestEntry(c.Request.Context(), allocation.EntryRequest{
		UserID:      req.UserID,
		VehicleType: vt,
		VehicleID:   req.VehicleID,
		AccessPath:  req.AccessPath,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, alloc)
}

type exitRequest struct {
	UserID     uint   `json:"user_id" binding:"required"`
	AccessPath string `json:"access_path"`
}

// PostExit releases the spot held by the user.
func (h *Handler) PostExit(c *gin.Context) {
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	rec, err := h.svc.RequestExit(c.Request.Context(), allocation.ExitRequest{
		UserID:     req.UserID,
		AccessPath: req.AccessPath,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GetUserStatus reports the user's active entry, if any.
func (h *Handler) GetUserStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	status, err := h.svc.Status(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
