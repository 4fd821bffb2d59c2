// Package budget estimates what a planned trip will cost and checks it against
// the traveler's budget.
package budget

import "vayro/itinerary"

// unknownEstimate is the fallback average used when a price label is missing
// or not recognized.
const unknownEstimate = 20

var tierEstimates = map[itinerary.PriceTier]float64{
	itinerary.TierFree:       0,
	itinerary.TierUnder10:    10,
	itinerary.TierTenTo30:    20,
	itinerary.TierThirtyTo60: 45,
	itinerary.TierSixtyPlus:  80,
}

// EstimatePrice returns the representative spend for a price tier.
func EstimatePrice(tier itinerary.PriceTier) float64 {
	if v, ok := tierEstimates[tier]; ok {
		return v
	}
	return unknownEstimate
}

// PricingPolicy decides which of a slot's alternatives is priced as the one
// the traveler will actually pick.
type PricingPolicy int

const (
	// FirstOption prices the top-ranked alternative only.
	FirstOption PricingPolicy = iota
	// CheapestOption prices the least expensive alternative.
	CheapestOption
)

// DefaultPolicy is what Reconcile uses.
const DefaultPolicy = FirstOption

// ParsePolicy accepts "first" or "cheapest".
func ParsePolicy(s string) (PricingPolicy, bool) {
	switch s {
	case "first", "":
		return FirstOption, true
	case "cheapest":
		return CheapestOption, true
	}
	return FirstOption, false
}

func (p PricingPolicy) String() string {
	switch p {
	case CheapestOption:
		return "cheapest"
	default:
		return "first"
	}
}

// priceSlot returns the slot's contribution to the day's spend. A slot with
// no options costs nothing.
func (p PricingPolicy) priceSlot(options []itinerary.ScheduleOption) float64 {
	if len(options) == 0 {
		return 0
	}
	if p == CheapestOption {
		low := EstimatePrice(options[0].Tier())
		for _, o := range options[1:] {
			if v := EstimatePrice(o.Tier()); v < low {
				low = v
			}
		}
		return low
	}
	return EstimatePrice(options[0].Tier())
}
