package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetWeather returns current conditions for the caller's branch
// location. Weather is decorative: any failure yields a 200 with
// available=false so the dashboard load is never blocked.
func (h *Handler) GetWeather(c *gin.Context) {
	_, branchID, ok := h.requireBranch(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 6*time.Second)
	defer cancel()

	city := c.Query("city")
	if city == "" {
		branch, err := h.DB.GetBranch(ctx, branchID)
		if err != nil {
			log.Printf("Weather lookup: failed to fetch branch %s: %v", branchID, err)
			c.JSON(http.StatusOK, gin.H{"available": false})
			return
		}
		city = branch.Location
	}

	if h.Weather == nil || !h.Weather.Enabled() || city == "" {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}

	report, err := h.Weather.Current(ctx, city)
	if err != nil {
		log.Printf("Weather lookup failed for %q: %v", city, err)
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": true, "weather": report})
}
