package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
	"vayro/itinerary"
	"vayro/metrics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planFixture = "```json\n" + `[
  {"day": "Thursday, Sep 11, 2025", "schedule": [
    {"time": "09:00 AM", "options": [
      {"name": "Café A Brasileira", "priceRange": "$$ ($10–30)"},
      {"name": "Manteigaria", "priceRange": "$ (Under $10)"}
    ]},
    {"time": "12:00 PM", "options": [{"name": "Jardim da Estrela", "priceRange": "Free"}]}
  ]},
  {"day": "Friday, Sep 12, 2025", "schedule": [
    {"time": "07:00 PM", "options": [{"name": "Sala de Corte", "priceRange": "$$$$ ($60+)"}]},
    {"time": "09:00 PM", "options": []}
  ]}
]` + "\n```"

const storedItinerary = `[{"day":"Thursday, Sep 11, 2025","schedule":[{"time":"09:00 AM","options":[{"name":"Café A Brasileira","priceRange":"$$ ($10–30)"},{"name":"Manteigaria","priceRange":"$ (Under $10)"}]}]},{"day":"Friday, Sep 12, 2025","schedule":[{"time":"07:00 PM","options":[{"name":"Sala de Corte","priceRange":"$$$$ ($60+)"}]}]}]`

var tripColumns = []string{"id", "dest_city", "dest_country", "budget", "duration", "raw_plan", "itinerary_json", "pdf_data", "traveler_name", "created_at"}

// placesMux answers every text search with no results and records the queries.
func placesMux(queries *[]string, mu *sync.Mutex) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/place/textsearch/json", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*queries = append(*queries, r.URL.Query().Get("query"))
		mu.Unlock()
		w.Write([]byte(`{"results": []}`))
	})
	return mux
}

func TestPlanTrip(t *testing.T) {
	var queries []string
	var mu sync.Mutex
	stubGoogle(t, placesMux(&queries, &mu))
	ai := stubAI(t, replyWith(planFixture))
	mock := mockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO trip_plans")).
		WithArgs(sqlmock.AnyArg(), "Lisbon", "Portugal", 100.0, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	okBefore := testutil.ToFloat64(metrics.PlanOutcomes.WithLabelValues("ok"))
	emptyBefore := testutil.ToFloat64(metrics.ItineraryAnomalies.WithLabelValues("empty_slot"))

	w := doJSON(t, http.MethodPost, "/api/trips/plan", map[string]interface{}{
		"destCity":    "Lisbon",
		"destCountry": "Portugal",
		"budget":      100,
		"food":        "vegan",
		"tripDates":   []string{"2025-09-11", "2025-09-12"},
		"commitments": []string{"Dinner with Ana on Sep 12 at 7 PM"},
		"travelSolo":  true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)

	assert.NotEmpty(t, body["id"])
	assert.True(t, strings.HasPrefix(body["plan"].(string), "["), "plan should be fence-stripped")
	assert.Len(t, body["itinerary"], 2)

	summary := body["budgetSummary"].(map[string]interface{})
	day1 := summary["Thursday, Sep 11, 2025"].(map[string]interface{})
	assert.Equal(t, 20.0, day1["estimated"])
	assert.Equal(t, 50.0, day1["budget"])
	assert.Equal(t, "✅ Within budget", day1["status"])
	day2 := summary["Friday, Sep 12, 2025"].(map[string]interface{})
	assert.Equal(t, "⚠️ Over budget by $30", day2["status"])
	total := summary["total"].(map[string]interface{})
	assert.Equal(t, 100.0, total["estimated"])
	assert.Equal(t, "✅ Within total budget", total["status"])

	calls := ai.all()
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Temperature)
	assert.Equal(t, 0.6, *calls[0].Temperature)
	assert.Contains(t, calls[0].Messages[0].Content, "Day 1 MUST start on Thursday, Sep 11, 2025")

	mu.Lock()
	assert.Equal(t, []string{
		"vegan restaurants in Lisbon",
		"tourist attractions in Lisbon",
		"shopping malls in Lisbon",
		"unique things to do in Lisbon",
		"parks and outdoor activities in Lisbon",
	}, queries)
	mu.Unlock()

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.PlanOutcomes.WithLabelValues("ok")))
	assert.Equal(t, emptyBefore+1, testutil.ToFloat64(metrics.ItineraryAnomalies.WithLabelValues("empty_slot")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanTripUnparseable(t *testing.T) {
	stubAI(t, replyWith("I'm sorry, I can't plan that trip."))
	mock := mockDB(t)

	before := testutil.ToFloat64(metrics.PlanOutcomes.WithLabelValues("unparseable"))
	w := doJSON(t, http.MethodPost, "/api/trips/plan", map[string]interface{}{"destCity": "Lisbon", "duration": 2, "budget": 100})

	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Trip plan unavailable", body["error"])
	assert.Equal(t, "I'm sorry, I can't plan that trip.", body["plan"])
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PlanOutcomes.WithLabelValues("unparseable")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanTripWithoutDuration(t *testing.T) {
	stubAI(t, replyWith(planFixture))
	noDB(t)

	w := doJSON(t, http.MethodPost, "/api/trips/plan", map[string]interface{}{"destCity": "Lisbon", "budget": 100})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Empty(t, body["budgetSummary"])
	assert.Contains(t, body["budgetError"], "invalid input")
	assert.Len(t, body["itinerary"], 2)
	_, hasID := body["id"]
	assert.False(t, hasID, "unsaved plan has no id")
}

func TestPlanTripEncodeFailureSkipsSave(t *testing.T) {
	stubAI(t, replyWith(planFixture))
	mock := mockDB(t)
	prev := marshalItinerary
	marshalItinerary = func(itinerary.Itinerary) ([]byte, error) { return nil, errors.New("encode failed") }
	t.Cleanup(func() { marshalItinerary = prev })

	w := doJSON(t, http.MethodPost, "/api/trips/plan", map[string]interface{}{"destCity": "Lisbon", "duration": 2, "budget": 100})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["itinerary"], 2)
	_, hasID := body["id"]
	assert.False(t, hasID)
	assert.NoError(t, mock.ExpectationsWereMet(), "nothing is written when the itinerary cannot be encoded")
}

func TestPlanTripAIFailure(t *testing.T) {
	stubAI(t, func(aiCall) (int, string) { return http.StatusTooManyRequests, "" })

	w := doJSON(t, http.MethodPost, "/api/trips/plan", map[string]interface{}{"destCity": "Lisbon", "duration": 1})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Trip generation failed", decode(t, w)["error"])
}

func TestPlanTripBadRequest(t *testing.T) {
	w := doJSON(t, http.MethodPost, "/api/trips/plan", map[string]interface{}{"destCountry": "Portugal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, http.MethodPost, "/api/trips/plan?policy=priciest", map[string]interface{}{"destCity": "Lisbon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func expectTripRow(mock sqlmock.Sqlmock, id string, pdf []byte) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM trip_plans WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(tripColumns).
			AddRow(id, "Lisbon", "Portugal", 100.0, 2, "raw plan", storedItinerary, pdf, "", time.Now()))
}

func TestGetTrip(t *testing.T) {
	mock := mockDB(t)
	expectTripRow(mock, "trip-1", nil)

	w := doJSON(t, http.MethodGet, "/api/trips/trip-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)

	assert.Equal(t, "trip-1", body["id"])
	assert.Equal(t, false, body["hasPdf"])
	total := body["budgetSummary"].(map[string]interface{})["total"].(map[string]interface{})
	assert.Equal(t, 100.0, total["estimated"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTripCheapestPolicy(t *testing.T) {
	mock := mockDB(t)
	expectTripRow(mock, "trip-1", nil)

	w := doJSON(t, http.MethodGet, "/api/trips/trip-1?policy=cheapest", nil)
	require.Equal(t, http.StatusOK, w.Code)

	summary := decode(t, w)["budgetSummary"].(map[string]interface{})
	day1 := summary["Thursday, Sep 11, 2025"].(map[string]interface{})
	assert.Equal(t, 10.0, day1["estimated"])
}

func TestGetTripNotFound(t *testing.T) {
	mock := mockDB(t)
	mock.ExpectQuery("FROM trip_plans").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	w := doJSON(t, http.MethodGet, "/api/trips/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateTripPDF(t *testing.T) {
	mock := mockDB(t)
	expectTripRow(mock, "trip-1", nil)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE trip_plans SET pdf_data")).
		WithArgs(sqlmock.AnyArg(), "Ana", "trip-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, http.MethodPost, "/api/trips/trip-1/pdf", map[string]string{"traveler_name": "Ana"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "/api/download/trip-1", body["pdf_url"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateTripPDFEmptyBody(t *testing.T) {
	mock := mockDB(t)
	expectTripRow(mock, "trip-1", nil)
	mock.ExpectExec("UPDATE trip_plans").
		WithArgs(sqlmock.AnyArg(), "", "trip-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := doJSON(t, http.MethodPost, "/api/trips/trip-1/pdf", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDownload(t *testing.T) {
	mock := mockDB(t)
	expectTripRow(mock, "trip-1", []byte("%PDF-1.3 fake"))
	expectTripRow(mock, "trip-2", nil)

	w := doJSON(t, http.MethodGet, "/api/download/trip-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "vayro-trip-trip-1.pdf")
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())

	w = doJSON(t, http.MethodGet, "/api/download/trip-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	noDB(t)
	w := doJSON(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "not initialized", body["database"])

	mockDB(t)
	w = doJSON(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, "ok", decode(t, w)["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	w := doJSON(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
