package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"vayro/budget"
	"vayro/database"
	"vayro/itinerary"
	"vayro/logger"
	"vayro/metrics"
	"vayro/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TripPlanRequest struct {
	DepartCity    string          `json:"departCity"`
	DepartCountry string          `json:"departCountry"`
	DestCity      string          `json:"destCity" binding:"required"`
	DestCountry   string          `json:"destCountry"`
	Mode          string          `json:"mode"`
	Duration      int             `json:"duration"`
	Budget        float64         `json:"budget"` // total for the trip
	Mood          string          `json:"mood"`
	Food          string          `json:"food"`
	Activities    json.RawMessage `json:"activities"`
	TravelSolo    json.RawMessage `json:"travelSolo"`
	Commitments   json.RawMessage `json:"commitments"`
	VisitedBefore json.RawMessage `json:"visitedBefore"`
	TripDates     []string        `json:"tripDates"`
	GroupSize     json.RawMessage `json:"groupSize"`
}

const planTemperature = 0.6

// PlanTripHandler builds a day-by-day itinerary from real places, prices it
// against the traveler's budget and saves it.
func PlanTripHandler(c *gin.Context) {
	var req TripPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	reconciler, ok := reconcilerFor(c)
	if !ok {
		return
	}

	log := logger.GetLogger()
	ctx := c.Request.Context()

	pools := fetchPlacePools(ctx, req)
	prompt := services.BuildTripPlanPrompt(services.TripPlanInput{
		DestCity:      req.DestCity,
		DestCountry:   req.DestCountry,
		Duration:      req.Duration,
		Budget:        req.Budget,
		Mood:          req.Mood,
		Food:          req.Food,
		Activities:    req.Activities,
		TravelSolo:    req.TravelSolo,
		GroupSize:     req.GroupSize,
		Commitments:   req.Commitments,
		VisitedBefore: req.VisitedBefore,
		Dates:         services.FormatTripDates(req.TripDates),
	}, pools)

	raw, err := services.GetAIClient().Prompt(ctx, prompt, services.Temperature(planTemperature))
	if err != nil {
		upstreamFailure(c, err, "Trip generation failed")
		return
	}
	plan := itinerary.StripFences(raw)

	itin, err := itinerary.Parse(plan)
	if err != nil {
		metrics.PlanOutcomes.WithLabelValues("unparseable").Inc()
		log.Warnw("Planner returned an unusable itinerary", "dest", req.DestCity, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Trip plan unavailable", "plan": plan})
		return
	}

	duration := req.Duration
	if duration <= 0 {
		duration = len(req.TripDates)
	}

	resp := gin.H{"plan": plan, "itinerary": itin}
	summary, err := reconciler.Reconcile(itin, req.Budget, duration)
	if err != nil {
		metrics.PlanOutcomes.WithLabelValues("no_budget").Inc()
		log.Warnw("Budget calculation failed", "dest", req.DestCity, "error", err)
		resp["budgetSummary"] = gin.H{}
		resp["budgetError"] = err.Error()
	} else {
		metrics.PlanOutcomes.WithLabelValues("ok").Inc()
		recordAnomalies(req.DestCity, summary)
		resp["budgetSummary"] = summary
	}

	if id, err := saveTrip(ctx, req, duration, plan, itin); err != nil {
		log.Errorw("Failed to save trip plan", "dest", req.DestCity, "error", err)
	} else {
		resp["id"] = id
	}

	c.JSON(http.StatusOK, resp)
}

// saveTrip persists a generated plan and returns its new id.
func saveTrip(ctx context.Context, req TripPlanRequest, duration int, plan string, itin itinerary.Itinerary) (string, error) {
	itinJSON, err := marshalItinerary(itin)
	if err != nil {
		return "", fmt.Errorf("encoding itinerary: %w", err)
	}
	saved := &database.TripPlan{
		ID:            uuid.New().String(),
		DestCity:      req.DestCity,
		DestCountry:   req.DestCountry,
		Budget:        req.Budget,
		Duration:      duration,
		RawPlan:       plan,
		ItineraryJSON: string(itinJSON),
	}
	if err := database.SaveTripPlan(ctx, saved); err != nil {
		return "", err
	}
	return saved.ID, nil
}

var marshalItinerary = func(itin itinerary.Itinerary) ([]byte, error) {
	return json.Marshal(itin)
}

// fetchPlacePools looks up the real places the planner may use. A failed
// lookup leaves its pool empty.
func fetchPlacePools(ctx context.Context, req TripPlanRequest) services.PlacePools {
	google := services.GetGoogleClient()
	log := logger.GetLogger()
	city := req.DestCity

	mood := strings.TrimSpace(req.Mood)
	if mood == "" {
		mood = "tourist"
	}
	food := strings.TrimSpace(req.Food)

	search := func(query string) []services.Place {
		places, err := google.TextSearch(ctx, strings.TrimSpace(query))
		if err != nil {
			log.Warnw("Place search failed", "query", query, "error", err)
			return []services.Place{}
		}
		return places
	}

	return services.PlacePools{
		Restaurants: search(fmt.Sprintf("%s restaurants in %s", food, city)),
		Attractions: search(fmt.Sprintf("%s attractions in %s", mood, city)),
		Shopping:    search("shopping malls in " + city),
		Unique:      search("unique things to do in " + city),
		Outdoor:     search("parks and outdoor activities in " + city),
	}
}

// reconcilerFor reads the optional ?policy= query parameter. It writes a 400
// and returns false for an unknown policy.
func reconcilerFor(c *gin.Context) (budget.Reconciler, bool) {
	policy, ok := budget.ParsePolicy(c.Query("policy"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown pricing policy, use first or cheapest"})
		return budget.Reconciler{}, false
	}
	return budget.Reconciler{Policy: policy}, true
}

func recordAnomalies(dest string, s *budget.Summary) {
	metrics.RecordAnomalies(s.Anomalies)
	if s.Anomalies.Total() == 0 {
		return
	}
	logger.GetLogger().Infow("Itinerary priced with missing data",
		"dest", dest,
		"malformed_days", s.Anomalies.MalformedDays,
		"empty_slots", s.Anomalies.EmptySlots,
		"unnamed_options", s.Anomalies.UnnamedOptions,
		"unrecognized_tiers", s.Anomalies.UnrecognizedTiers,
	)
}

// loadTrip fetches a saved plan and its itinerary, writing the error response
// itself when it fails.
func loadTrip(c *gin.Context) (*database.TripPlan, itinerary.Itinerary, bool) {
	id := c.Param("id")
	p, err := database.GetTripPlan(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return nil, nil, false
	}
	if err != nil {
		logger.GetLogger().Errorw("Failed to load trip plan", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		return nil, nil, false
	}

	itin, err := itinerary.Parse(p.ItineraryJSON)
	if err != nil {
		logger.GetLogger().Errorw("Stored itinerary is unreadable", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stored trip is corrupt"})
		return nil, nil, false
	}
	return p, itin, true
}

// GetTripHandler returns a saved plan with its budget recomputed.
func GetTripHandler(c *gin.Context) {
	reconciler, ok := reconcilerFor(c)
	if !ok {
		return
	}
	p, itin, ok := loadTrip(c)
	if !ok {
		return
	}

	resp := gin.H{
		"id":          p.ID,
		"destCity":    p.DestCity,
		"destCountry": p.DestCountry,
		"createdAt":   p.CreatedAt,
		"plan":        p.RawPlan,
		"itinerary":   itin,
		"hasPdf":      len(p.PDFData) > 0,
	}
	summary, err := reconciler.Reconcile(itin, p.Budget, p.Duration)
	if err != nil {
		resp["budgetSummary"] = gin.H{}
		resp["budgetError"] = err.Error()
	} else {
		resp["budgetSummary"] = summary
	}
	c.JSON(http.StatusOK, resp)
}

type GeneratePDFRequest struct {
	TravelerName string `json:"traveler_name"`
}

type GeneratePDFResponse struct {
	TripID  string `json:"trip_id"`
	PDFURL  string `json:"pdf_url"`
	Message string `json:"message"`
}

// GenerateTripPDFHandler renders a saved plan to PDF and stores it on the row.
func GenerateTripPDFHandler(c *gin.Context) {
	var req GeneratePDFRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	p, itin, ok := loadTrip(c)
	if !ok {
		return
	}
	log := logger.GetLogger()

	// A trip without a usable budget still gets a PDF, minus the budget table.
	summary, err := budget.Reconcile(itin, p.Budget, p.Duration)
	if err != nil {
		summary = nil
	}

	pdfBytes, err := services.GeneratePDFBytes(services.PDFData{
		TravelerName: strings.TrimSpace(req.TravelerName),
		Destination:  strings.Trim(p.DestCity+", "+p.DestCountry, ", "),
		Itinerary:    itin,
		Summary:      summary,
	})
	if err != nil {
		log.Errorw("PDF generation failed", "id", p.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	if err := database.UpdateTripPlanPDF(c.Request.Context(), p.ID, pdfBytes, req.TravelerName); err != nil {
		log.Errorw("Failed to save trip PDF", "id", p.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save generated PDF"})
		return
	}

	log.Infow("PDF generated", "id", p.ID, "bytes", len(pdfBytes))
	c.JSON(http.StatusOK, GeneratePDFResponse{
		TripID:  p.ID,
		PDFURL:  "/api/download/" + p.ID,
		Message: "Trip plan PDF generated successfully",
	})
}
