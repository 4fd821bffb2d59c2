package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TripPlanInput is what the traveler told us about the trip.
type TripPlanInput struct {
	DestCity      string
	DestCountry   string
	Duration      int
	Budget        float64
	Mood          string
	Food          string
	Activities    json.RawMessage
	TravelSolo    json.RawMessage
	GroupSize     json.RawMessage
	Commitments   json.RawMessage
	VisitedBefore json.RawMessage
	Dates         []TripDate
}

// TripDate is a trip day with its display label.
type TripDate struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Weekday string `json:"weekday"`
}

// PlacePools are the real places the planner may choose from.
type PlacePools struct {
	Restaurants []Place
	Attractions []Place
	Shopping    []Place
	Unique      []Place
	Outdoor     []Place
}

const dayLabelLayout = "Monday, Jan 2, 2006"

// FormatTripDates labels each date ("Thursday, Sep 11, 2025"). Dates that do
// not parse keep the raw value as label.
func FormatTripDates(dates []string) []TripDate {
	out := make([]TripDate, 0, len(dates))
	for _, d := range dates {
		td := TripDate{Date: d, Label: d}
		if t, ok := parseDate(d); ok {
			td.Label = t.Format(dayLabelLayout)
			td.Weekday = t.Weekday().String()
		}
		out = append(out, td)
	}
	return out
}

func parseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", dateOnly(s)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// rawOr renders a loosely typed request field, or fallback when absent.
func rawOr(raw json.RawMessage, fallback string) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return fallback
	}
	if unq := ""; json.Unmarshal(raw, &unq) == nil {
		return unq
	}
	return s
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func head(places []Place, n int) []Place {
	if places == nil {
		return []Place{}
	}
	if len(places) > n {
		return places[:n]
	}
	return places
}

// BuildTripPlanPrompt asks the model for a day-by-day itinerary as JSON.
func BuildTripPlanPrompt(in TripPlanInput, pools PlacePools) string {
	start := "Day 1"
	if len(in.Dates) > 0 {
		start = in.Dates[0].Label
	}
	commitments := rawOr(in.Commitments, "[]")
	budget := fmt.Sprintf("%g", in.Budget)

	var b strings.Builder
	fmt.Fprintf(&b, `You are a professional travel planner.
Create a detailed %d-day itinerary for %s, %s.
The user will wake up in the city each day and needs a full-day plan.

User details:
- Total Budget: %s
- Mood: %s
- Food preferences: %s
- Activities: %s
- Travel solo: %s
- Group size: %s
- Commitments: %s
- Visited before: %s
- Trip dates: %s
`, in.Duration, in.DestCity, in.DestCountry,
		budget, in.Mood, in.Food,
		rawOr(in.Activities, "N/A"), rawOr(in.TravelSolo, "N/A"), rawOr(in.GroupSize, "N/A"),
		commitments, rawOr(in.VisitedBefore, "N/A"), mustJSON(in.Dates))

	fmt.Fprintf(&b, `
RULES:
- Respond with VALID JSON ONLY, no explanations.
- Day 1 MUST start on %s with the correct weekday and date.
- Continue sequentially, using actual weekdays/dates (not "Day 1, Day 2").
- Each day must include at least 6–8 activities.
- At least two activities per day must be a famous or must-see landmark of %s.
- Place each commitment ONLY on its exact specified date and time. Do not duplicate across other days.
- Schema:
[
  {
    "day": "Thursday, Sep 11, 2025",
    "schedule": [
      {
        "time": "09:00 AM",
        "options": [
          {
            "name": "Place Name",
            "description": "Engaging 2–3 sentences about why this place is recommended.",
            "type": "restaurant | attraction | activity | shopping | outdoor | commitment",
            "priceRange": "Free | $ (Under $10) | $$ ($10–30) | $$$ ($30–60) | $$$$ ($60+) | N/A",
            "address": "Full address or N/A",
            "hours": "Opening and closing hours or N/A",
            "parking": "Parking info or N/A",
            "website": "Official website or '%s'",
            "phone": "Official phone or '%s'"
          }
        ]
      }
    ]
  }
]
`, start, in.DestCity, noWebsite, noPhone)

	fmt.Fprintf(&b, `
- Assign realistic times (breakfast ~8–9 AM, lunch ~12–1 PM, afternoon ~2–4 PM, dinner ~6–7 PM, evening ~8–10 PM).
- Provide exactly 2 top restaurants per eating time (breakfast, lunch, dinner).
- List the best option first in every time slot; it is the one used for the budget.
- Prioritize iconic attractions and then fill with secondary activities.
- DO NOT repeat the same restaurant or activity across different days.
- Respect the total budget of %s.
- Respect dietary restrictions (restaurants).
- Respect group size (e.g. family-friendly, romantic for couples, solo activities).
- Every commitment from this list must appear as its own schedule entry and only on the correct day and time:
  %s
  - Use "type": "commitment"
  - Description: "This is a fixed commitment. No activities should overlap with this time."
- Activities must align with mood (%s) and preferences (%s).
- Choose ONLY from these real options (expand descriptions but do not invent new places):

Restaurants: %s
Attractions: %s
Shopping: %s
Unique: %s
Outdoor: %s
`, budget, commitments, in.Mood, rawOr(in.Activities, "N/A"),
		mustJSON(head(pools.Restaurants, 25)),
		mustJSON(head(pools.Attractions, 25)),
		mustJSON(head(pools.Shopping, 10)),
		mustJSON(head(pools.Unique, 10)),
		mustJSON(head(pools.Outdoor, 10)))

	return b.String()
}

// BuildFlightSummaryPrompt asks for a plain-text comparison of flight offers.
func BuildFlightSummaryPrompt(flights []Flight) string {
	type digest struct {
		From    string  `json:"from"`
		To      string  `json:"to"`
		Price   float64 `json:"price"`
		Airline string  `json:"airline"`
		Stops   int     `json:"stops"`
	}
	ds := make([]digest, 0, len(flights))
	for _, f := range flights {
		ds = append(ds, digest{f.From, f.To, f.Price, f.Airline, f.Stops})
	}

	return fmt.Sprintf(`Summarize these flights professionally:

Flights: %s

Include:
1. Flight Search Summary
2. Comparison of Options (cheapest, fastest, assessment)
3. Recommendations

Style: business-professional. No hashtags, no markdown headers. Use plain text with bullet points if needed.
`, mustJSON(ds))
}

// TransportInput describes the airport-to-destination leg.
type TransportInput struct {
	Mode           string
	Airport        string
	AirportCity    string
	AirportCountry string
	Destination    string
	Undecided      bool
	Route          *Route
	Fares          *RideshareFares
}

// transportTitles maps a transport mode to the card title the app shows.
var transportTitles = map[string]string{
	"uber":     "Uber / Lyft",
	"lyft":     "Uber / Lyft",
	"uberlyft": "Uber / Lyft",
	"shuttle":  "Shuttle",
	"rental":   "Car Rental",
	"friend":   "Friend / Family Pickup",
}

// TransportTitle returns the display title for mode, or mode itself.
func TransportTitle(mode string) string {
	key := strings.ToLower(strings.NewReplacer(" ", "", "/", "", "-", "").Replace(mode))
	if t, ok := transportTitles[key]; ok {
		return t
	}
	return mode
}

// BuildTransportPrompt asks for a {title, details[]} JSON card.
func BuildTransportPrompt(in TransportInput) string {
	dest := in.Destination
	if in.Undecided {
		dest = "Undecided (default downtown)"
	}
	distance, duration, uber, lyft := "Unknown", "Unknown", "N/A", "N/A"
	if in.Route != nil {
		distance = fmt.Sprintf("%.1f miles", in.Route.Miles)
		duration = fmt.Sprintf("%.0f minutes", in.Route.Minutes)
	}
	if in.Fares != nil {
		uber = "$" + in.Fares.Uber.StringFixed(2)
		lyft = "$" + in.Fares.Lyft.StringFixed(2)
	}

	return fmt.Sprintf(`You are Vayro, a professional AI travel assistant.
Generate JSON for transport option: %s.

Context:
- Airport: %s (%s, %s)
- Destination: %s
- Distance: %s
- Duration: %s
- Uber est: %s
- Lyft est: %s

Requirements:
- Always return valid JSON: { "title": string, "details": string[] }
- No markdown, no asterisks, no hashtags.
- Title must be exactly "%s".
- details[] must contain 5–6 professional, passenger-focused bullet points.
- Each should mention airport and destination explicitly.
- Uber/Lyft: fares, pickup terminal and door. Shuttle: pickup zone, frequency, hours, bus alternatives if too far.
  Car Rental: rental center location, companies, average prices, requirements.
  Friend/Family: baggage claim, exit doors, meeting point, short-term parking, cell phone lot.
`, in.Mode, in.Airport, in.AirportCity, in.AirportCountry, dest,
		distance, duration, uber, lyft, TransportTitle(in.Mode))
}

// ViraSystemPrompt sets the persona for the in-app travel companion.
const ViraSystemPrompt = `You are Vira, a friendly travel companion inside the Vayro app.
Respond naturally, with warmth and detail.
Formatting rules:
- Use **bold** for titles or key points
- Use bullet points for lists
- Use line breaks for readability
- Do not use hashtags or asterisk styling
- Keep it professional, clear, and approachable.`
