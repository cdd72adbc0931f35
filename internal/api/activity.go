package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetActivity lists recent activity. Staff and assistant managers see
// only their own actions; everyone above sees the users inside their
// visibility scope.
func (h *Handler) GetActivity(c *gin.Context) {
	viewer, ok := h.currentProfile(c)
	if !ok {
		return
	}

	onlyUserID := ""
	if viewer.Role.Rank() < models.RoleManager.Rank() {
		onlyUserID = viewer.ID
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	logs, err := h.DB.ListActivity(ctx, viewer, onlyUserID, getQueryInt(c, "limit", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list activity", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": logs, "count": len(logs)})
}
