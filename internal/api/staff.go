package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocknexus/backend/internal/models"
)

// withinScope reports whether the target profile sits inside the
// viewer's slice of the hierarchy: same effective branch when one is
// set, otherwise the viewer's district or region. Admins see all.
func withinScope(viewer, target *models.Profile) bool {
	if viewer.Role == models.RoleAdmin {
		return true
	}
	if eff := viewer.EffectiveBranch(); eff != nil {
		return target.BranchID != nil && *target.BranchID == *eff
	}
	switch viewer.Role {
	case models.RoleRegionalManager:
		return viewer.RegionID != nil && target.RegionID != nil && *viewer.RegionID == *target.RegionID
	case models.RoleDistrictManager:
		return viewer.DistrictID != nil && target.DistrictID != nil && *viewer.DistrictID == *target.DistrictID
	}
	return false
}

// staffPlacementAllowed verifies a requested branch/region/district
// placement sits inside the viewer's slice of the hierarchy, so a
// manager cannot create or move accounts into a foreign branch.
// Branch and district ids named by hierarchy-spanning viewers are
// resolved against the database to confirm their parentage.
func (h *Handler) staffPlacementAllowed(ctx context.Context, viewer *models.Profile, branchID, regionID, districtID *string) bool {
	if viewer.Role == models.RoleAdmin {
		return true
	}

	if eff := viewer.EffectiveBranch(); eff != nil {
		if branchID == nil || *branchID != *eff {
			return false
		}
		if regionID != nil && viewer.RegionID != nil && *regionID != *viewer.RegionID {
			return false
		}
		if districtID != nil && viewer.DistrictID != nil && *districtID != *viewer.DistrictID {
			return false
		}
		return true
	}

	switch viewer.Role {
	case models.RoleRegionalManager:
		if viewer.RegionID == nil || regionID == nil || *regionID != *viewer.RegionID {
			return false
		}
		if districtID != nil {
			district, err := h.DB.GetDistrict(ctx, *districtID)
			if err != nil || district.RegionID != *viewer.RegionID {
				return false
			}
		}
		if branchID != nil {
			branch, err := h.DB.GetBranch(ctx, *branchID)
			if err != nil || branch.RegionID != *viewer.RegionID {
				return false
			}
		}
		return true
	case models.RoleDistrictManager:
		if viewer.DistrictID == nil || districtID == nil || *districtID != *viewer.DistrictID {
			return false
		}
		if branchID != nil {
			branch, err := h.DB.GetBranch(ctx, *branchID)
			if err != nil || branch.DistrictID != *viewer.DistrictID {
				return false
			}
		}
		return true
	}
	return false
}

// ListStaff returns the profiles the viewer may see per the role
// hierarchy and branch scope.
func (h *Handler) ListStaff(c *gin.Context) {
	profile, ok := h.currentProfile(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	profiles, err := h.DB.ListProfiles(ctx, profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list staff", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": profiles, "count": len(profiles)})
}

// CreateStaff creates an account below the caller in the hierarchy.
func (h *Handler) CreateStaff(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}

	var req models.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid role", Message: "Unknown role " + string(req.Role)})
		return
	}
	if !viewer.Role.CanManage(req.Role) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Role too high",
			Message: "You may only create accounts below your own role",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	// Non-admin creators pin new accounts to their own slice of the
	// hierarchy; an explicitly requested placement must fall inside it.
	if viewer.Role != models.RoleAdmin {
		if eff := viewer.EffectiveBranch(); eff != nil && req.BranchID == nil {
			req.BranchID = eff
		}
		if viewer.RegionID != nil && req.RegionID == nil {
			req.RegionID = viewer.RegionID
		}
		if viewer.DistrictID != nil && req.DistrictID == nil {
			req.DistrictID = viewer.DistrictID
		}
		if !h.staffPlacementAllowed(ctx, viewer, req.BranchID, req.RegionID, req.DistrictID) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Placement outside scope",
				Message: "New accounts must belong to your own branch, district or region",
			})
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to process password", Message: err.Error()})
		return
	}

	created, err := h.DB.CreateProfile(ctx, req, string(hash))
	if err != nil {
		if isDuplicateEmailError(err) {
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "Email already registered", Message: "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "staff_created", map[string]interface{}{
		"staff_id": created.ID,
		"role":     string(created.Role),
	})
	c.JSON(http.StatusCreated, created)
}

// UpdateStaff applies a managerial update to a profile the caller may
// manage.
func (h *Handler) UpdateStaff(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}
	staffID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	target, err := h.DB.GetProfileByID(ctx, staffID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Staff member not found", Message: err.Error()})
		return
	}
	if !viewer.Role.CanManage(target.Role) || !withinScope(viewer, target) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Not manageable",
			Message: "You may only manage accounts below your role within your scope",
		})
		return
	}

	var req models.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid role", Message: "Unknown role " + string(*req.Role)})
			return
		}
		if !viewer.Role.CanManage(*req.Role) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Role too high",
				Message: "You may only assign roles below your own",
			})
			return
		}
	}

	// Moving a profile is bounded the same way as creating one: the
	// resulting placement must stay inside the viewer's scope.
	if viewer.Role != models.RoleAdmin && (req.BranchID != nil || req.RegionID != nil || req.DistrictID != nil) {
		branchID, regionID, districtID := target.BranchID, target.RegionID, target.DistrictID
		if req.BranchID != nil {
			branchID = req.BranchID
		}
		if req.RegionID != nil {
			regionID = req.RegionID
		}
		if req.DistrictID != nil {
			districtID = req.DistrictID
		}
		if !h.staffPlacementAllowed(ctx, viewer, branchID, regionID, districtID) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "Placement outside scope",
				Message: "Accounts may only be moved within your own branch, district or region",
			})
			return
		}
	}

	updated, err := h.DB.UpdateStaff(ctx, staffID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update staff member", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "staff_updated", map[string]interface{}{"staff_id": staffID})
	c.JSON(http.StatusOK, updated)
}

// DeleteStaff removes a profile the caller may manage.
func (h *Handler) DeleteStaff(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}
	staffID := c.Param("id")
	if staffID == viewer.ID {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Cannot delete yourself", Message: "Use account settings to deactivate your own account"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	target, err := h.DB.GetProfileByID(ctx, staffID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Staff member not found", Message: err.Error()})
		return
	}
	if !viewer.Role.CanManage(target.Role) || !withinScope(viewer, target) {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Not manageable",
			Message: "You may only manage accounts below your role within your scope",
		})
		return
	}

	if err := h.DB.DeleteProfile(ctx, staffID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete staff member", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "staff_deleted", map[string]interface{}{"staff_id": staffID})
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Staff member deleted"})
}
