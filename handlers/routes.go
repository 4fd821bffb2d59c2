package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the API under /api and Prometheus metrics at /metrics.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", HealthHandler)

		api.POST("/trips/plan", PlanTripHandler)
		api.GET("/trips/:id", GetTripHandler)
		api.POST("/trips/:id/pdf", GenerateTripPDFHandler)
		api.GET("/download/:id", DownloadHandler)

		api.GET("/airports/search", AirportSearchHandler)
		api.POST("/flights/search", FlightSearchHandler)
		api.GET("/places/autocomplete", PlacesAutocompleteHandler)
		api.POST("/transport/options", TransportOptionsHandler)
		api.POST("/vira/chat", ViraChatHandler)
	}
}
