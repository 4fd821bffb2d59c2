package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"vayro/config"
	"vayro/logger"
	"vayro/metrics"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Airport struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IATACode string `json:"iataCode"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country,omitempty"`
}

type Flight struct {
	From                string  `json:"from"`
	To                  string  `json:"to"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency,omitempty"`
	Airline             string  `json:"airline"`
	AirlineCode         string  `json:"airline_code,omitempty"`
	FlightNumber        string  `json:"flight_number,omitempty"`
	DepartureTime       string  `json:"departure_time"`
	ArrivalTime         string  `json:"arrival_time"`
	Duration            string  `json:"duration"`
	Stops               int     `json:"stops"`
	ReturnDepartureTime string  `json:"return_departure_time,omitempty"`
	ReturnArrivalTime   string  `json:"return_arrival_time,omitempty"`
	ReturnDuration      string  `json:"return_duration,omitempty"`
	ReturnStops         int     `json:"return_stops,omitempty"`
}

type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	MaxPrice      float64
	NonStop       bool
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

var amadeusClient *AmadeusClient

func NewAmadeusClient(cfg config.AmadeusConfig) *AmadeusClient {
	return &AmadeusClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func InitAmadeus(cfg config.AmadeusConfig) {
	amadeusClient = NewAmadeusClient(cfg)

	log := logger.GetLogger()
	if !amadeusClient.configured() {
		log.Warn("AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set, airport and flight search are unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := amadeusClient.refreshToken(ctx); err != nil {
		log.Warnw("Amadeus token pre-warm failed", "error", err)
	} else {
		log.Info("Amadeus API authenticated")
	}
}

func GetAmadeusClient() *AmadeusClient {
	return amadeusClient
}

func (c *AmadeusClient) configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Service: "amadeus", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("amadeus").Inc()
		return nil, fmt.Errorf("amadeus auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("amadeus").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.UpstreamErrors.WithLabelValues("amadeus").Inc()
		return nil, &UpstreamError{Service: "amadeus", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// ─── Airport Search ───────────────────────────────────────────────────────────

// SearchAirports looks up airports whose name or code matches keyword.
func (c *AmadeusClient) SearchAirports(ctx context.Context, keyword string) ([]Airport, error) {
	if !c.configured() {
		return nil, fmt.Errorf("amadeus: %w", ErrNotConfigured)
	}

	body, err := c.get(ctx, "/v1/reference-data/locations", url.Values{
		"keyword": {keyword},
		"subType": {"AIRPORT"},
	})
	if err != nil {
		return nil, fmt.Errorf("airport search failed: %w", err)
	}

	var resp struct {
		Data []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			IATACode string `json:"iataCode"`
			Address  struct {
				CityName    string `json:"cityName"`
				CountryName string `json:"countryName"`
			} `json:"address"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse airports: %w", err)
	}

	airports := make([]Airport, 0, len(resp.Data))
	for _, a := range resp.Data {
		airports = append(airports, Airport{
			ID:       a.ID,
			Name:     a.Name,
			IATACode: a.IATACode,
			City:     a.Address.CityName,
			Country:  a.Address.CountryName,
		})
	}
	return airports, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights searches flight offers via the Amadeus Flight Offers Search API.
func (c *AmadeusClient) SearchFlights(ctx context.Context, q FlightQuery) ([]Flight, error) {
	if !c.configured() {
		return nil, fmt.Errorf("amadeus: %w", ErrNotConfigured)
	}

	params := url.Values{
		"originLocationCode":      {q.Origin},
		"destinationLocationCode": {q.Destination},
		"departureDate":           {dateOnly(q.DepartureDate)},
		"adults":                  {strconv.Itoa(max(1, q.Adults))},
		"nonStop":                 {strconv.FormatBool(q.NonStop)},
		"currencyCode":            {"USD"},
		"max":                     {"5"},
	}
	if d := dateOnly(q.ReturnDate); d != "" {
		params.Set("returnDate", d)
	}
	if q.MaxPrice > 0 {
		params.Set("maxPrice", strconv.Itoa(int(q.MaxPrice)))
	}

	body, err := c.get(ctx, "/v2/shopping/flight-offers", params)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	return parseFlightOffers(body)
}

type amadeusLeg struct {
	Duration string `json:"duration"`
	Segments []struct {
		Departure struct {
			IataCode string `json:"iataCode"`
			At       string `json:"at"`
		} `json:"departure"`
		Arrival struct {
			IataCode string `json:"iataCode"`
			At       string `json:"at"`
		} `json:"arrival"`
		CarrierCode string `json:"carrierCode"`
		Number      string `json:"number"`
	} `json:"segments"`
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			Total      string `json:"total"`
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries            []amadeusLeg `json:"itineraries"`
		ValidatingAirlineCodes []string     `json:"validatingAirlineCodes"`
	} `json:"data"`
}

func parseFlightOffers(data []byte) ([]Flight, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	flights := make([]Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}

		total := offer.Price.GrandTotal
		if total == "" {
			total = offer.Price.Total
		}
		price, err := strconv.ParseFloat(total, 64)
		if err != nil || price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		first := outbound.Segments[0]
		last := outbound.Segments[len(outbound.Segments)-1]

		airlineCode := first.CarrierCode
		if len(offer.ValidatingAirlineCodes) > 0 {
			airlineCode = offer.ValidatingAirlineCodes[0]
		}

		f := Flight{
			From:          first.Departure.IataCode,
			To:            last.Arrival.IataCode,
			Price:         price,
			Currency:      offer.Price.Currency,
			Airline:       airlineName(airlineCode),
			AirlineCode:   airlineCode,
			FlightNumber:  first.CarrierCode + first.Number,
			DepartureTime: first.Departure.At,
			ArrivalTime:   last.Arrival.At,
			Duration:      parseDuration(outbound.Duration),
			Stops:         len(outbound.Segments) - 1,
		}

		if len(offer.Itineraries) >= 2 && len(offer.Itineraries[1].Segments) > 0 {
			ret := offer.Itineraries[1]
			f.ReturnStops = len(ret.Segments) - 1
			f.ReturnDuration = parseDuration(ret.Duration)
			f.ReturnDepartureTime = ret.Segments[0].Departure.At
			f.ReturnArrivalTime = ret.Segments[len(ret.Segments)-1].Arrival.At
		}

		flights = append(flights, f)
	}

	return flights, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// dateOnly trims an ISO timestamp to its YYYY-MM-DD part.
func dateOnly(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

// parseDuration converts an ISO 8601 duration (PT5H30M) to "5h 30m".
func parseDuration(iso string) string {
	d, err := time.ParseDuration(strings.ToLower(strings.TrimPrefix(iso, "PT")))
	if err != nil {
		return iso
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

var airlineNames = map[string]string{
	"AA": "American Airlines",
	"AC": "Air Canada",
	"AF": "Air France",
	"AS": "Alaska Airlines",
	"B6": "JetBlue",
	"BA": "British Airways",
	"DL": "Delta Air Lines",
	"EK": "Emirates",
	"F9": "Frontier Airlines",
	"IB": "Iberia",
	"KL": "KLM",
	"LH": "Lufthansa",
	"NK": "Spirit Airlines",
	"QR": "Qatar Airways",
	"TK": "Turkish Airlines",
	"UA": "United Airlines",
	"WN": "Southwest Airlines",
}

// airlineName returns the carrier's name for an IATA code, or the code itself.
func airlineName(code string) string {
	if name, ok := airlineNames[code]; ok {
		return name
	}
	if code == "" {
		return "Unknown Airline"
	}
	return code
}
