package itinerary

import "strings"

// PriceTier is a price-range bucket. Known tiers are ordered from Free to
// SixtyPlus; TierUnknown sits outside that order.
type PriceTier int

const (
	TierUnknown PriceTier = iota
	TierFree
	TierUnder10
	TierTenTo30
	TierThirtyTo60
	TierSixtyPlus
)

var tierLabels = map[PriceTier]string{
	TierUnknown:    "N/A",
	TierFree:       "Free",
	TierUnder10:    "$ (Under $10)",
	TierTenTo30:    "$$ ($10–30)",
	TierThirtyTo60: "$$$ ($30–60)",
	TierSixtyPlus:  "$$$$ ($60+)",
}

// aliases are matched after lower-casing, dropping spaces and folding the
// en-dash to a hyphen.
var tierAliases = map[string]PriceTier{
	"free":        TierFree,
	"$(under$10)": TierUnder10,
	"$":           TierUnder10,
	"under10":     TierUnder10,
	"$$($10-30)":  TierTenTo30,
	"$$":          TierTenTo30,
	"tento30":     TierTenTo30,
	"$$$($30-60)": TierThirtyTo60,
	"$$$":         TierThirtyTo60,
	"thirtyto60":  TierThirtyTo60,
	"$$$$($60+)":  TierSixtyPlus,
	"$$$$":        TierSixtyPlus,
	"sixtyplus":   TierSixtyPlus,
}

// ParsePriceTier maps a price label to its tier. It never fails: anything it
// does not recognize, "N/A" included, is TierUnknown.
func ParsePriceTier(label string) PriceTier {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.ReplaceAll(key, "–", "-")
	key = strings.ReplaceAll(key, "—", "-")
	key = strings.Join(strings.Fields(key), "")
	if t, ok := tierAliases[key]; ok {
		return t
	}
	return TierUnknown
}

// TierFromPriceLevel converts a Google Places price_level (0-4) to a tier.
func TierFromPriceLevel(level *int) PriceTier {
	if level == nil || *level < 0 || *level > 4 {
		return TierUnknown
	}
	return TierFree + PriceTier(*level)
}

// Known reports whether t is one of the ordered tiers.
func (t PriceTier) Known() bool {
	return t >= TierFree && t <= TierSixtyPlus
}

func (t PriceTier) String() string {
	if s, ok := tierLabels[t]; ok {
		return s
	}
	return tierLabels[TierUnknown]
}
