package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetAnalyticsSummary returns the dashboard tile counts for the
// caller's effective branch.
func (h *Handler) GetAnalyticsSummary(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	summary, err := h.DB.StockSummary(ctx, branchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to compute summary", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetAnalyticsTrends returns daily in/out movement totals for the
// caller's effective branch.
func (h *Handler) GetAnalyticsTrends(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	trends, err := h.DB.MovementTrends(ctx, branchID, getQueryInt(c, "days", 14))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to compute trends", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": trends})
}
