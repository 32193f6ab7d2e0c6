package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parking-allocator/internal/grid"
	"parking-allocator/internal/model"
	"parking-allocator/internal/parse"
)

// GetSegments lists the stored path network.
func (h *Handler) GetSegments(c *gin.Context) {
	rows, err := h.store.ListSegments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type putSegmentRequest struct {
	OriginX      *int   `json:"origin_x" binding:"required"`
	OriginY      *int   `json:"origin_y" binding:"required"`
	DestinationX *int   `json:"destination_x" binding:"required"`
	DestinationY *int   `json:"destination_y" binding:"required"`
	Direction    string `json:"direction" binding:"required"`
}

// PutSegment creates a segment or replaces the direction of the one already
// stored between the same endpoints.
func (h *Handler) PutSegment(c *gin.Context) {
	var req putSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	dir, err := grid.ParseDirection(req.Direction)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_segment"})
		return
	}

	row, err := h.store.SaveSegment(c.Request.Context(), grid.Segment{
		From:      grid.Pt(*req.OriginX, *req.OriginY),
		To:        grid.Pt(*req.DestinationX, *req.DestinationY),
		Direction: dir,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// DeleteSegments removes one segment (?from=x,y&to=x,y) or, with ?all=true,
// the whole network.
func (h *Handler) DeleteSegments(c *gin.Context) {
	if c.Query("all") == "true" {
		if err := h.store.ClearSegments(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	from, err := parse.ParsePoint(c.Query("from"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, err := parse.ParsePoint(c.Query("to"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.store.DeleteSegment(c.Request.Context(), from, to); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type mapResponse struct {
	Entrance grid.Point          `json:"entrance"`
	Segments []model.PathSegment `json:"segments"`
	Spots    []model.Spot        `json:"spots"`
}

// GetMap returns the static layout: entrance, segments and spots. Occupancy
// is left out so the response can be cached.
func (h *Handler) GetMap(c *gin.Context) {
	segments, err := h.store.ListSegments(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	spots, err := h.store.ListSpots(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapResponse{Entrance: h.entrance, Segments: segments, Spots: spots})
}

type routeResponse struct {
	From      grid.Point `json:"from"`
	To        grid.Point `json:"to"`
	Reachable bool       `json:"reachable"`
	Distance  *int       `json:"distance"`
}

// GetRoute returns the walking distance between two points on the live map.
func (h *Handler) GetRoute(c *gin.Context) {
	from, err := parse.ParsePoint(c.Query("from"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	to, err := parse.ParsePoint(c.Query("to"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	d, err := h.svc.Route(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := routeResponse{From: from, To: to}
	if d != grid.Unreachable {
		resp.Reachable = true
		resp.Distance = &d
	}
	c.JSON(http.StatusOK, resp)
}
