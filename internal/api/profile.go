package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetProfile returns the authenticated user's profile.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, ok := h.currentProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a self-service profile update.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	profile, err := h.DB.UpdateProfile(ctx, currentUserID(c), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update profile", Message: err.Error()})
		return
	}

	h.logActivity(profile.ID, "profile_updated", nil)
	c.JSON(http.StatusOK, profile)
}

// SetBranchContext switches the branch the caller is operating
// against. Only roles that span multiple branches may switch; the
// target must sit inside the caller's region or district.
func (h *Handler) SetBranchContext(c *gin.Context) {
	profile, ok := h.currentProfile(c)
	if !ok {
		return
	}

	var req models.BranchContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if profile.Role.Rank() < models.RoleDistrictManager.Rank() {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Branch context not available",
			Message: "Only district and regional managers switch branches",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if req.BranchID != "" {
		branch, err := h.DB.GetBranch(ctx, req.BranchID)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Branch not found", Message: err.Error()})
			return
		}
		switch profile.Role {
		case models.RoleRegionalManager:
			if profile.RegionID == nil || branch.RegionID != *profile.RegionID {
				c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "Branch outside region",
					Message: "Regional managers may only operate inside their own region",
				})
				return
			}
		case models.RoleDistrictManager:
			if profile.DistrictID == nil || branch.DistrictID != *profile.DistrictID {
				c.JSON(http.StatusForbidden, models.ErrorResponse{
					Error:   "Branch outside district",
					Message: "District managers may only operate inside their own district",
				})
				return
			}
		}
	}

	updated, err := h.DB.SetBranchContext(ctx, profile.ID, req.BranchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to set branch context", Message: err.Error()})
		return
	}

	h.logActivity(profile.ID, "branch_context_changed", map[string]interface{}{"branch_id": req.BranchID})
	c.JSON(http.StatusOK, updated)
}
