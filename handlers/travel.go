package handlers

import (
	"net/http"
	"strings"
	"vayro/logger"
	"vayro/services"

	"github.com/gin-gonic/gin"
)

// upstreamFailure logs err and answers with the upstream status code.
func upstreamFailure(c *gin.Context, err error, msg string) {
	logger.GetLogger().Errorw(msg, "path", c.FullPath(), "error", err)
	c.JSON(services.StatusCode(err), gin.H{"error": msg, "details": err.Error()})
}

// ─── Airports ─────────────────────────────────────────────────────────────────

func AirportSearchHandler(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword required"})
		return
	}

	airports, err := services.GetAmadeusClient().SearchAirports(c.Request.Context(), keyword)
	if err != nil {
		upstreamFailure(c, err, "Airport search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"airports": airports})
}

// ─── Flights ──────────────────────────────────────────────────────────────────

type FlightSearchRequest struct {
	Departure     string  `json:"departure" binding:"required"`
	Destination   string  `json:"destination" binding:"required"`
	DepartureDate string  `json:"departureDate" binding:"required"`
	ReturnDate    string  `json:"returnDate"`
	Passengers    int     `json:"passengers"`
	Budget        float64 `json:"budget"`
	AllowLayover  bool    `json:"allowLayover"`
}

// FlightSearchHandler returns up to five offers and a written comparison.
// The comparison is best-effort: if it fails, aiSummary is empty.
func FlightSearchHandler(c *gin.Context) {
	var req FlightSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req.Departure = strings.ToUpper(strings.TrimSpace(req.Departure))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	if req.Passengers <= 0 {
		req.Passengers = 1
	}

	ctx := c.Request.Context()
	flights, err := services.GetAmadeusClient().SearchFlights(ctx, services.FlightQuery{
		Origin:        req.Departure,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Adults:        req.Passengers,
		MaxPrice:      req.Budget,
		NonStop:       !req.AllowLayover,
	})
	if err != nil {
		upstreamFailure(c, err, "Flight search failed")
		return
	}

	var summary string
	if len(flights) > 0 {
		summary, err = services.GetAIClient().Prompt(ctx, services.BuildFlightSummaryPrompt(flights), nil)
		if err != nil {
			logger.GetLogger().Warnw("Flight summary failed", "route", req.Departure+"-"+req.Destination, "error", err)
			summary = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{"flights": flights, "aiSummary": summary})
}

// ─── Places ───────────────────────────────────────────────────────────────────

func PlacesAutocompleteHandler(c *gin.Context) {
	input := strings.TrimSpace(c.Query("input"))
	if input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Input required"})
		return
	}

	predictions, err := services.GetGoogleClient().Autocomplete(c.Request.Context(), input)
	if err != nil {
		upstreamFailure(c, err, "Places failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

// ─── Transport ────────────────────────────────────────────────────────────────

type TransportRequest struct {
	Mode           string `json:"mode" binding:"required"`
	Airport        string `json:"airport"`
	AirportCity    string `json:"airportCity"`
	AirportCountry string `json:"airportCountry"`
	Destination    string `json:"destination"`
	Undecided      bool   `json:"undecided"`
}

const transportTemperature = 0.7

// TransportOptionsHandler describes getting from the airport to the
// destination by the requested mode. Distance and fares are omitted from the
// prompt when either end cannot be located.
func TransportOptionsHandler(c *gin.Context) {
	var req TransportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	log := logger.GetLogger()
	google := services.GetGoogleClient()

	undecided := req.Undecided || req.Destination == "" || strings.EqualFold(req.Destination, "Undecided")
	in := services.TransportInput{
		Mode:           req.Mode,
		Airport:        req.Airport,
		AirportCity:    req.AirportCity,
		AirportCountry: req.AirportCountry,
		Destination:    req.Destination,
		Undecided:      req.Undecided,
	}

	origin := req.AirportCity
	if origin == "" {
		origin = req.Airport
	}
	if origin != "" && !undecided {
		from, err := google.Geocode(ctx, origin)
		if err != nil {
			log.Warnw("Geocoding airport failed", "airport", origin, "error", err)
		}
		to, err := google.Geocode(ctx, req.Destination)
		if err != nil {
			log.Warnw("Geocoding destination failed", "destination", req.Destination, "error", err)
		}
		if from != nil && to != nil {
			route, err := google.Distance(ctx, *from, *to)
			if err != nil {
				log.Warnw("Distance lookup failed", "error", err)
			}
			if route != nil {
				in.Route = route
				in.Fares = services.EstimateRideshare(route.Miles)
			}
		}
	}

	raw, err := services.GetAIClient().Prompt(ctx, services.BuildTransportPrompt(in), services.Temperature(transportTemperature))
	if err != nil {
		upstreamFailure(c, err, "Transport options failed")
		return
	}
	card, err := services.ParseTransportCard(raw)
	if err != nil {
		log.Warnw("Transport card unreadable", "mode", req.Mode, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transport options failed"})
		return
	}
	c.JSON(http.StatusOK, card)
}
