package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetEvents lists the calendar of the caller's effective branch,
// optionally windowed by from/to (RFC 3339).
func (h *Handler) GetEvents(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			from = t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			to = t
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	events, err := h.DB.ListEvents(ctx, branchID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list events", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// CreateEvent adds a calendar event to the caller's effective branch.
func (h *Handler) CreateEvent(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	event, err := h.DB.CreateEvent(ctx, branchID, viewer.ID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create event", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "event_created", map[string]interface{}{"event_id": event.ID, "title": event.Title})
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent applies a partial update to an event of the caller's
// effective branch.
func (h *Handler) UpdateEvent(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	existing, err := h.DB.GetEvent(ctx, c.Param("id"))
	if err != nil || existing.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Event not found", Message: "No such event in this branch"})
		return
	}

	event, err := h.DB.UpdateEvent(ctx, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update event", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "event_updated", map[string]interface{}{"event_id": event.ID})
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event of the caller's effective branch.
func (h *Handler) DeleteEvent(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	existing, err := h.DB.GetEvent(ctx, c.Param("id"))
	if err != nil || existing.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Event not found", Message: "No such event in this branch"})
		return
	}

	if err := h.DB.DeleteEvent(ctx, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete event", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "event_deleted", map[string]interface{}{"event_id": c.Param("id")})
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Event deleted"})
}
