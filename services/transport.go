package services

import (
	"encoding/json"
	"fmt"
	"vayro/itinerary"

	"github.com/shopspring/decimal"
)

// RideshareFares are rough fare estimates for a route.
type RideshareFares struct {
	Uber decimal.Decimal
	Lyft decimal.Decimal
}

var (
	uberBase    = decimal.RequireFromString("2.5")
	uberPerMile = decimal.RequireFromString("1.75")
	lyftBase    = decimal.RequireFromString("2.0")
	lyftPerMile = decimal.RequireFromString("1.6")
)

// EstimateRideshare prices a trip of the given length. Nil for a zero or
// negative distance.
func EstimateRideshare(miles float64) *RideshareFares {
	if miles <= 0 {
		return nil
	}
	m := decimal.NewFromFloat(miles)
	return &RideshareFares{
		Uber: uberBase.Add(uberPerMile.Mul(m)).Round(2),
		Lyft: lyftBase.Add(lyftPerMile.Mul(m)).Round(2),
	}
}

// TransportCard is the model's answer for one transport option.
type TransportCard struct {
	Title   string   `json:"title"`
	Details []string `json:"details"`
}

// ParseTransportCard decodes the model's JSON card, tolerating code fences.
func ParseTransportCard(raw string) (*TransportCard, error) {
	var card TransportCard
	if err := json.Unmarshal([]byte(itinerary.StripFences(raw)), &card); err != nil {
		return nil, fmt.Errorf("invalid transport card: %w", err)
	}
	if card.Details == nil {
		card.Details = []string{}
	}
	return &card, nil
}
