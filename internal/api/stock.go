package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/db"
	"github.com/stocknexus/backend/internal/models"
)

// GetStock lists the classified stock of the caller's effective branch.
func (h *Handler) GetStock(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	entries, err := h.DB.ListStock(ctx, branchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list stock", Message: err.Error()})
		return
	}

	// Optional status filter for the critical/low dashboard drill-downs
	if status := c.Query("status"); status != "" {
		filtered := []models.StockEntry{}
		for _, e := range entries {
			if string(e.Status) == status {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	c.JSON(http.StatusOK, gin.H{"stock": entries, "count": len(entries)})
}

// RecordMovement appends an in/out movement against an item and
// adjusts the stock level atomically. The quantity update happens in
// the database routine, never client-side.
func (h *Handler) RecordMovement(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	itemID := c.Param("itemId")

	var req models.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if !req.MovementType.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid movement type", Message: "movement_type must be 'in' or 'out'"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	item, err := h.DB.GetItem(ctx, itemID)
	if err != nil || item.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Item not found", Message: "No such item in this branch"})
		return
	}

	movement, err := h.DB.RecordMovement(ctx, itemID, viewer.ID, req)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInsufficientStock):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "Insufficient stock",
				Message: "The requested out quantity exceeds the current stock level",
			})
		case errors.Is(err, db.ErrStockNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Stock record not found", Message: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record movement", Message: err.Error()})
		}
		return
	}
	movement.ItemName = item.Name

	h.logActivity(viewer.ID, "stock_movement", map[string]interface{}{
		"item_id":       itemID,
		"movement_type": string(req.MovementType),
		"quantity":      req.Quantity,
	})
	c.JSON(http.StatusCreated, movement)
}

// movementFilterFromQuery parses the shared ledger query parameters.
func movementFilterFromQuery(c *gin.Context) db.MovementFilter {
	filter := db.MovementFilter{
		ItemID: c.Query("item_id"),
		Type:   models.MovementType(c.Query("movement_type")),
		Limit:  getQueryInt(c, "limit", 0),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = t
		}
	}
	return filter
}

// GetMovements lists the movement ledger of the caller's effective
// branch, newest first.
func (h *Handler) GetMovements(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	movements, err := h.DB.ListMovements(ctx, branchID, movementFilterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list movements", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements, "count": len(movements)})
}

// GetItemMovements lists the ledger of a single item.
func (h *Handler) GetItemMovements(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	filter := movementFilterFromQuery(c)
	filter.ItemID = c.Param("itemId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	movements, err := h.DB.ListMovements(ctx, branchID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list movements", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements, "count": len(movements)})
}

// getQueryInt parses an integer query parameter with a default.
func getQueryInt(c *gin.Context, key string, defaultValue int) int {
	if raw := c.Query(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return defaultValue
}
