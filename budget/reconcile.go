package budget

import (
	"errors"
	"fmt"
	"math"
	"vayro/itinerary"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when the trip parameters make a budget split meaningless.
var ErrInvalidInput = errors.New("invalid input")

const (
	statusWithinDay   = "✅ Within budget"
	statusWithinTotal = "✅ Within total budget"
	statusOverPrefix  = "⚠️ Over budget by $"
)

// BudgetEntry is the estimate for one day or for the whole trip.
type BudgetEntry struct {
	Estimated float64 `json:"estimated"`
	Budget    float64 `json:"budget"`
	Status    string  `json:"status"`

	Within  bool    `json:"-"`
	Overage float64 `json:"-"`
}

// DayEntry is a day's estimate, keyed by its position in the itinerary.
type DayEntry struct {
	Index int
	Label string
	BudgetEntry
}

// Anomalies counts itinerary entries that were missing data and were priced
// on a best-effort basis.
type Anomalies struct {
	MalformedDays     int // day with no schedule
	EmptySlots        int // slot with no options
	UnnamedOptions    int
	UnrecognizedTiers int
}

// Total is the number of anomalies of any kind.
func (a Anomalies) Total() int {
	return a.MalformedDays + a.EmptySlots + a.UnnamedOptions + a.UnrecognizedTiers
}

// Summary is the reconciled budget for a trip.
type Summary struct {
	Days      []DayEntry
	Total     BudgetEntry
	Anomalies Anomalies
}

// Labels returns the display label of each day, by index.
func (s *Summary) Labels() []string {
	labels := make([]string, len(s.Days))
	for i, d := range s.Days {
		labels[i] = d.Label
	}
	return labels
}

// Reconciler prices itineraries under a given policy. The zero value uses FirstOption.
type Reconciler struct {
	Policy PricingPolicy
}

// Reconcile prices itin with the default policy.
func Reconcile(itin itinerary.Itinerary, totalBudget float64, durationDays int) (*Summary, error) {
	return Reconciler{Policy: DefaultPolicy}.Reconcile(itin, totalBudget, durationDays)
}

// Reconcile splits totalBudget evenly over durationDays and compares each day's
// estimated spend, and the trip total, against its share. Missing schedule or
// option data counts as zero spend rather than an error.
func (r Reconciler) Reconcile(itin itinerary.Itinerary, totalBudget float64, durationDays int) (*Summary, error) {
	if durationDays <= 0 {
		return nil, fmt.Errorf("%w: duration must be at least one day, got %d", ErrInvalidInput, durationDays)
	}
	if math.IsNaN(totalBudget) || math.IsInf(totalBudget, 0) {
		return nil, fmt.Errorf("%w: budget must be a finite amount, got %v", ErrInvalidInput, totalBudget)
	}

	dailyBudget := totalBudget / float64(durationDays)
	summary := &Summary{Days: make([]DayEntry, 0, len(itin))}

	var totalEstimate float64
	for i, day := range itin {
		if day.Schedule == nil {
			summary.Anomalies.MalformedDays++
		}

		var dayEstimate float64
		for _, slot := range day.Schedule {
			if len(slot.Options) == 0 {
				summary.Anomalies.EmptySlots++
			}
			for _, o := range slot.Options {
				if o.Name == "" {
					summary.Anomalies.UnnamedOptions++
				}
				if !o.Tier().Known() {
					summary.Anomalies.UnrecognizedTiers++
				}
			}
			dayEstimate += r.Policy.priceSlot(slot.Options)
		}
		totalEstimate += dayEstimate

		summary.Days = append(summary.Days, DayEntry{
			Index:       i,
			Label:       day.Day,
			BudgetEntry: newEntry(dayEstimate, dailyBudget, statusWithinDay),
		})
	}

	summary.Total = newEntry(totalEstimate, totalBudget, statusWithinTotal)
	return summary, nil
}

func newEntry(estimated, budget float64, withinStatus string) BudgetEntry {
	e := BudgetEntry{Estimated: estimated, Budget: budget}
	if estimated <= budget {
		e.Within = true
		e.Status = withinStatus
		return e
	}
	e.Overage = estimated - budget
	e.Status = statusOverPrefix + decimal.NewFromFloat(e.Overage).String()
	return e
}
