package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/models"
)

// GetItems lists the items of the caller's effective branch.
func (h *Handler) GetItems(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	items, err := h.DB.ListItems(ctx, branchID, c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list items", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetItem returns a single item of the caller's effective branch.
func (h *Handler) GetItem(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.DB.GetItem(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Item not found", Message: err.Error()})
		return
	}
	if item.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Item not found", Message: "No such item in this branch"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem adds an item to the caller's effective branch and seeds
// its stock record.
func (h *Handler) CreateItem(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	var req models.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	item, err := h.DB.CreateItem(ctx, branchID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create item", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "item_created", map[string]interface{}{"item_id": item.ID, "name": item.Name})
	c.JSON(http.StatusCreated, item)
}

// UpdateItem applies a partial update to an item of the caller's
// effective branch.
func (h *Handler) UpdateItem(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	itemID := c.Param("id")

	var req models.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if req.ThresholdLevel != nil && *req.ThresholdLevel < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid threshold", Message: "threshold_level must be non-negative"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	existing, err := h.DB.GetItem(ctx, itemID)
	if err != nil || existing.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Item not found", Message: "No such item in this branch"})
		return
	}

	item, err := h.DB.UpdateItem(ctx, itemID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update item", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "item_updated", map[string]interface{}{"item_id": itemID})
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item and its stock record from the caller's
// effective branch. The movement ledger is untouched.
func (h *Handler) DeleteItem(c *gin.Context) {
	viewer, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}
	itemID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	existing, err := h.DB.GetItem(ctx, itemID)
	if err != nil || existing.BranchID != branchID {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Item not found", Message: "No such item in this branch"})
		return
	}

	if err := h.DB.DeleteItem(ctx, itemID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete item", Message: err.Error()})
		return
	}

	h.logActivity(viewer.ID, "item_deleted", map[string]interface{}{"item_id": itemID, "name": existing.Name})
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Item deleted"})
}
