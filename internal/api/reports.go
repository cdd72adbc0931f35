package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetStockMovementReport returns the date-ranged movement ledger of
// the caller's effective branch with item and actor names resolved,
// shaped for export.
func (h *Handler) GetStockMovementReport(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	filter := movementFilterFromQuery(c)
	if filter.From.IsZero() {
		filter.From = time.Now().AddDate(0, -1, 0)
	}
	if filter.Limit <= 0 {
		filter.Limit = 500
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	movements, err := h.DB.ListMovements(ctx, branchID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build report", Message: err.Error()})
		return
	}

	var totalIn, totalOut int
	for _, m := range movements {
		if m.MovementType == models.MovementIn {
			totalIn += m.Quantity
		} else {
			totalOut += m.Quantity
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"branch_id":    branchID,
		"from":         filter.From,
		"to":           filter.To,
		"generated_at": time.Now().UTC(),
		"total_in":     totalIn,
		"total_out":    totalOut,
		"movements":    movements,
		"count":        len(movements),
	})
}
