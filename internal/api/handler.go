package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocknexus/backend/internal/db"
	"github.com/stocknexus/backend/internal/models"
	"github.com/stocknexus/backend/internal/services"
)

// Handler holds the database connection and collaborating services and
// handles HTTP requests.
type Handler struct {
	DB       *db.Database
	Email    *services.EmailService
	SMS      *services.SmsService
	WhatsApp *services.WhatsAppService
	Weather  *services.WeatherService
}

// NewHandler creates a new handler instance
func NewHandler(database *db.Database, email *services.EmailService, sms *services.SmsService, whatsapp *services.WhatsAppService, weather *services.WeatherService) *Handler {
	return &Handler{
		DB:       database,
		Email:    email,
		SMS:      sms,
		WhatsApp: whatsapp,
		Weather:  weather,
	}
}

// Health endpoint for health checks (readiness)
func (h *Handler) Health(c *gin.Context) {
	// If DB is not initialized yet, report not ready without panicking
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Database not initialized",
			Message: "Service starting up; DB unavailable",
		})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.DB.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "Database connection failed",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "stocknexus-backend",
		"timestamp": time.Now().UTC(),
	})
}

// currentUserID extracts the authenticated user id set by AuthMiddleware.
func currentUserID(c *gin.Context) string {
	v, _ := c.Get("user_id")
	id, _ := v.(string)
	return id
}

// currentProfile loads the full profile of the authenticated user.
func (h *Handler) currentProfile(c *gin.Context) (*models.Profile, bool) {
	id := currentUserID(c)
	if id == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Not authenticated",
			Message: "No user in request context",
		})
		return nil, false
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	profile, err := h.DB.GetProfileByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Profile not found",
			Message: "The authenticated user no longer exists",
		})
		return nil, false
	}
	return profile, true
}

// requireBranch resolves the viewer's effective branch. When a
// regional or district manager (or admin) has no branch context yet it
// responds 428 with the selectable districts/branches so the client
// can run the selection flow, and reports false.
func (h *Handler) requireBranch(c *gin.Context) (*models.Profile, string, bool) {
	profile, ok := h.currentProfile(c)
	if !ok {
		return nil, "", false
	}
	if eff := profile.EffectiveBranch(); eff != nil {
		return profile, *eff, true
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	selection := models.BranchSelection{Branches: []models.Branch{}}
	switch profile.Role {
	case models.RoleRegionalManager:
		if profile.RegionID != nil {
			if districts, err := h.DB.ListDistricts(ctx, *profile.RegionID); err == nil {
				selection.Districts = districts
			}
			if branches, err := h.DB.ListBranches(ctx, *profile.RegionID, ""); err == nil {
				selection.Branches = branches
			}
		}
	case models.RoleDistrictManager:
		if profile.DistrictID != nil {
			if branches, err := h.DB.ListBranches(ctx, "", *profile.DistrictID); err == nil {
				selection.Branches = branches
			}
		}
	case models.RoleAdmin:
		if branches, err := h.DB.ListBranches(ctx, "", ""); err == nil {
			selection.Branches = branches
		}
	}

	c.JSON(http.StatusPreconditionRequired, gin.H{
		"error":     "Branch context required",
		"message":   "Select a branch to operate against before loading branch data",
		"selection": selection,
	})
	return nil, "", false
}

// logActivity writes an audit row in the background. Logging is
// best-effort: a failure is logged and otherwise ignored so it never
// blocks the action being recorded.
func (h *Handler) logActivity(userID, action string, details map[string]interface{}) {
	if h.DB == nil || userID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.DB.LogActivity(ctx, userID, action, details); err != nil {
			log.Printf("Failed to log activity %q for %s: %v", action, userID, err)
		}
	}()
}

// getClientIP returns the best-effort client address for audit fields.
func getClientIP(c *gin.Context) string {
	return c.ClientIP()
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
