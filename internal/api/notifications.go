package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetNotifications lists the caller's notifications.
func (h *Handler) GetNotifications(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	notifications, err := h.DB.ListNotifications(ctx, currentUserID(c),
		c.Query("unread") == "true", getQueryInt(c, "limit", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list notifications", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// MarkNotificationRead marks one notification as read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.DB.MarkNotificationRead(ctx, currentUserID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Notification not found", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Notification marked read"})
}

// MarkAllNotificationsRead marks every unread notification as read.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.DB.MarkAllNotificationsRead(ctx, currentUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to mark notifications read", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "All notifications marked read"})
}
