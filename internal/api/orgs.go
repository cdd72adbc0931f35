package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// ListRegions returns the region hierarchy roots.
func (h *Handler) ListRegions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	regions, err := h.DB.ListRegions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list regions", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"regions": regions})
}

// ListDistricts returns the districts of a region.
func (h *Handler) ListDistricts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	districts, err := h.DB.ListDistricts(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list districts", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"districts": districts})
}

// ListDistrictBranches returns the branches of one district. District
// managers may only read their own district.
func (h *Handler) ListDistrictBranches(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}
	districtID := c.Param("id")
	if viewer.Role == models.RoleDistrictManager &&
		(viewer.DistrictID == nil || *viewer.DistrictID != districtID) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "District outside scope",
			Message: "District managers may only list their own district",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	branches, err := h.DB.ListBranches(ctx, "", districtID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list branches", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// ListBranches returns branches, restricted to the caller's region or
// district unless the caller is an admin.
func (h *Handler) ListBranches(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}

	regionID := c.Query("region_id")
	districtID := c.Query("district_id")
	switch viewer.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleRegionalManager:
		if viewer.RegionID != nil {
			regionID = *viewer.RegionID
		}
	case models.RoleDistrictManager:
		if viewer.DistrictID != nil {
			districtID = *viewer.DistrictID
		}
	default:
		// Branch-bound roles only see their own branch.
		eff := viewer.EffectiveBranch()
		if eff == nil {
			c.JSON(http.StatusOK, gin.H{"branches": []models.Branch{}})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		branch, err := h.DB.GetBranch(ctx, *eff)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch branch", Message: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"branches": []models.Branch{*branch}})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	branches, err := h.DB.ListBranches(ctx, regionID, districtID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list branches", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

// CreateBranch adds a branch (admin only, enforced by route group).
func (h *Handler) CreateBranch(c *gin.Context) {
	var req models.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	branch, err := h.DB.CreateBranch(ctx, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create branch", Message: err.Error()})
		return
	}

	h.logActivity(currentUserID(c), "branch_created", map[string]interface{}{"branch_id": branch.ID, "name": branch.Name})
	c.JSON(http.StatusCreated, branch)
}

// UpdateBranch applies a partial branch update (admin only).
func (h *Handler) UpdateBranch(c *gin.Context) {
	var req models.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	branch, err := h.DB.UpdateBranch(ctx, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update branch", Message: err.Error()})
		return
	}

	h.logActivity(currentUserID(c), "branch_updated", map[string]interface{}{"branch_id": branch.ID})
	c.JSON(http.StatusOK, branch)
}

// DeleteBranch removes a branch (admin only).
func (h *Handler) DeleteBranch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.DB.DeleteBranch(ctx, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete branch", Message: err.Error()})
		return
	}

	h.logActivity(currentUserID(c), "branch_deleted", map[string]interface{}{"branch_id": c.Param("id")})
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Branch deleted"})
}
