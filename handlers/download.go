package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
	"vayro/database"
	"vayro/logger"

	"github.com/gin-gonic/gin"
)

func DownloadHandler(c *gin.Context) {
	id := c.Param("id")

	trip, err := database.GetTripPlan(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}
	if err != nil {
		logger.GetLogger().Errorw("Failed to load trip for download", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		return
	}

	if len(trip.PDFData) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "PDF has not been generated for this trip"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=vayro-trip-"+trip.ID+".pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", trip.PDFData)
}

func HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := database.Ping(ctx); errors.Is(err, database.ErrNotConnected) {
		dbStatus = "not initialized"
	} else if err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"service":  "Vayro API",
		"database": dbStatus,
	})
}
