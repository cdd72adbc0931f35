package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetBranchSettings returns the notification configuration of a branch
// the caller operates against.
func (h *Handler) GetBranchSettings(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	if id := c.Param("id"); id != branchID && viewer.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Wrong branch",
			Message: "Settings are only visible for your current branch",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	branch, err := h.DB.GetBranch(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Branch not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notification_settings": branch.NotificationSettings,
		"alert_frequency":       branch.AlertFrequency,
		"last_alert_at":         branch.LastAlertAt,
	})
}

// UpdateBranchSettings changes the notification toggles and/or alert
// cadence of the caller's branch (manager-and-above via route group).
func (h *Handler) UpdateBranchSettings(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	if id := c.Param("id"); id != branchID && viewer.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Wrong branch",
			Message: "Settings can only be changed for your current branch",
		})
		return
	}

	var req models.BranchSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if req.AlertFrequency != nil && !req.AlertFrequency.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid alert frequency",
			Message: "alert_frequency must be daily, weekly or monthly",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	branch, err := h.DB.UpdateBranchSettings(ctx, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update settings", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "branch_settings_updated", map[string]interface{}{"branch_id": branch.ID})
	c.JSON(http.StatusOK, branch)
}
