package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
	"vayro/config"
	"vayro/itinerary"
	"vayro/logger"
	"vayro/metrics"
)

const (
	noWebsite = "No website available"
	noPhone   = "No phone number available"

	// detailsWorkers bounds concurrent place-details lookups per search.
	detailsWorkers = 5
)

// Place is a search result offered to the planner as a real option.
type Place struct {
	Name       string      `json:"name"`
	Address    string      `json:"address"`
	Rating     interface{} `json:"rating"` // number, or "N/A"
	PriceRange string      `json:"priceRange"`
	PlaceID    string      `json:"placeId"`
	Website    string      `json:"website"`
	Phone      string      `json:"phone"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is a driving distance and duration between two points.
type Route struct {
	Miles   float64
	Minutes float64
}

// GoogleClient wraps the Places, Geocoding and Distance Matrix APIs.
type GoogleClient struct {
	placesKey         string
	geocodingKey      string
	distanceMatrixKey string
	baseURL           string
	httpClient        *http.Client
}

var googleClient *GoogleClient

func NewGoogleClient(cfg config.GoogleConfig) *GoogleClient {
	return &GoogleClient{
		placesKey:         cfg.PlacesKey,
		geocodingKey:      cfg.GeocodingKey,
		distanceMatrixKey: cfg.DistanceMatrixKey,
		baseURL:           cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func InitGoogle(cfg config.GoogleConfig) {
	googleClient = NewGoogleClient(cfg)
	if cfg.PlacesKey == "" {
		logger.GetLogger().Warn("GOOGLE_PLACES_API_KEY not set, trip plans will have no real places to choose from")
	}
}

func GetGoogleClient() *GoogleClient {
	return googleClient
}

func (c *GoogleClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("google").Inc()
		return fmt.Errorf("google request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamErrors.WithLabelValues("google").Inc()
		return &UpstreamError{Service: "google", StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse google response: %w", err)
	}
	return nil
}

// ─── Places ──────────────────────────────────────────────────────────────────

type textSearchResponse struct {
	Results []struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           *float64 `json:"rating"`
		PriceLevel       *int     `json:"price_level"`
		PlaceID          string   `json:"place_id"`
	} `json:"results"`
}

type placeDetailsResponse struct {
	Result struct {
		Website string `json:"website"`
		Phone   string `json:"formatted_phone_number"`
	} `json:"result"`
}

// TextSearch runs a Places text search and fills in website and phone for
// each hit. A failed details lookup keeps the placeholder values.
func (c *GoogleClient) TextSearch(ctx context.Context, query string) ([]Place, error) {
	if c == nil || c.placesKey == "" {
		return nil, fmt.Errorf("google places: %w", ErrNotConfigured)
	}

	var resp textSearchResponse
	params := url.Values{"query": {query}, "key": {c.placesKey}}
	if err := c.get(ctx, "/place/textsearch/json", params, &resp); err != nil {
		return nil, err
	}

	places := make([]Place, len(resp.Results))
	for i, r := range resp.Results {
		p := Place{
			Name:       r.Name,
			Address:    r.FormattedAddress,
			Rating:     "N/A",
			PriceRange: itinerary.TierFromPriceLevel(r.PriceLevel).String(),
			PlaceID:    r.PlaceID,
			Website:    noWebsite,
			Phone:      noPhone,
		}
		if p.Address == "" {
			p.Address = "N/A"
		}
		if r.Rating != nil && *r.Rating > 0 {
			p.Rating = *r.Rating
		}
		places[i] = p
	}

	sem := make(chan struct{}, detailsWorkers)
	var wg sync.WaitGroup
	for i := range places {
		if places[i].PlaceID == "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p *Place) {
			defer wg.Done()
			defer func() { <-sem }()
			c.fillDetails(ctx, p)
		}(&places[i])
	}
	wg.Wait()

	return places, nil
}

func (c *GoogleClient) fillDetails(ctx context.Context, p *Place) {
	var resp placeDetailsResponse
	params := url.Values{
		"place_id": {p.PlaceID},
		"fields":   {"website,formatted_phone_number"},
		"key":      {c.placesKey},
	}
	if err := c.get(ctx, "/place/details/json", params, &resp); err != nil {
		logger.GetLogger().Warnw("Place details lookup failed", "place", p.Name, "error", err)
		return
	}
	if resp.Result.Website != "" {
		p.Website = resp.Result.Website
	}
	if resp.Result.Phone != "" {
		p.Phone = resp.Result.Phone
	}
}

// Autocomplete returns Google's address predictions unchanged.
func (c *GoogleClient) Autocomplete(ctx context.Context, input string) (json.RawMessage, error) {
	if c == nil || c.placesKey == "" {
		return nil, fmt.Errorf("google places: %w", ErrNotConfigured)
	}

	var resp struct {
		Predictions json.RawMessage `json:"predictions"`
	}
	params := url.Values{"input": {input}, "types": {"geocode"}, "key": {c.placesKey}}
	if err := c.get(ctx, "/place/autocomplete/json", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return json.RawMessage("[]"), nil
	}
	return resp.Predictions, nil
}

// ─── Geocoding / Distance ────────────────────────────────────────────────────

// Geocode returns the first match for address, or nil when there is none.
func (c *GoogleClient) Geocode(ctx context.Context, address string) (*LatLng, error) {
	if c == nil || c.geocodingKey == "" {
		return nil, fmt.Errorf("google geocoding: %w", ErrNotConfigured)
	}

	var resp struct {
		Results []struct {
			Geometry struct {
				Location LatLng `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	params := url.Values{"address": {address}, "key": {c.geocodingKey}}
	if err := c.get(ctx, "/geocode/json", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	loc := resp.Results[0].Geometry.Location
	return &loc, nil
}

const metersPerMile = 1609.34

// Distance returns the driving route between two points, or nil when Google
// finds no route.
func (c *GoogleClient) Distance(ctx context.Context, from, to LatLng) (*Route, error) {
	if c == nil || c.distanceMatrixKey == "" {
		return nil, fmt.Errorf("google distance matrix: %w", ErrNotConfigured)
	}

	var resp struct {
		Rows []struct {
			Elements []struct {
				Status   string `json:"status"`
				Distance struct {
					Value float64 `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value float64 `json:"value"`
				} `json:"duration"`
			} `json:"elements"`
		} `json:"rows"`
	}
	params := url.Values{
		"origins":      {fmt.Sprintf("%v,%v", from.Lat, from.Lng)},
		"destinations": {fmt.Sprintf("%v,%v", to.Lat, to.Lng)},
		"key":          {c.distanceMatrixKey},
	}
	if err := c.get(ctx, "/distancematrix/json", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 || resp.Rows[0].Elements[0].Status != "OK" {
		return nil, nil
	}
	el := resp.Rows[0].Elements[0]
	return &Route{
		Miles:   el.Distance.Value / metersPerMile,
		Minutes: el.Duration.Value / 60,
	}, nil
}
