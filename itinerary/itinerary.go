// Package itinerary holds the day-by-day plan returned by the trip planner model
// and the boundary that turns its raw text into typed data.
package itinerary

// ScheduleOption is one recommended place or activity for a time slot.
type ScheduleOption struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"` // restaurant | attraction | activity | shopping | outdoor | commitment
	PriceRange  string `json:"priceRange,omitempty"`
	Address     string `json:"address,omitempty"`
	Hours       string `json:"hours,omitempty"`
	Parking     string `json:"parking,omitempty"`
	Website     string `json:"website,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Tier resolves the option's price label. Unrecognized labels give TierUnknown.
func (o ScheduleOption) Tier() PriceTier {
	return ParsePriceTier(o.PriceRange)
}

// TimeSlot pairs a time label with the alternatives offered for it, best first.
type TimeSlot struct {
	Time    string           `json:"time"`
	Options []ScheduleOption `json:"options"`
}

// DayPlan is one calendar day of the trip.
type DayPlan struct {
	Day      string     `json:"day"`
	Schedule []TimeSlot `json:"schedule"`
}

// Itinerary is the ordered list of day plans, normally one per trip day.
type Itinerary []DayPlan
