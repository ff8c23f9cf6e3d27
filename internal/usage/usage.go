// Package usage computes the per-user filament consumption report from the
// current set of claimed prints. The report is recomputed from scratch on
// every request; nothing here holds state.
package usage

import (
	"math"
	"sort"

	"github.com/chapmanwm/printsync-web/internal/store/schema"
)

// CostPerGram is the fixed filament price: 20 currency units per 1kg spool.
const CostPerGram = 20.0 / 1000

// UserSummary holds one user's accumulated filament usage.
type UserSummary struct {
	// User is the claiming user's name
	User string `json:"user"`
	// Filaments maps "material - colour" keys to accumulated grams
	Filaments map[string]float64 `json:"filaments"`
	// TotalWeight is the sum over the user's filament keys, in grams
	TotalWeight float64 `json:"totalWeight"`
	// TotalCost is TotalWeight priced at CostPerGram
	TotalCost float64 `json:"totalCost"`
}

// Report is the full filament-usage report.
type Report struct {
	// Summary holds one entry per user with any usage, sorted by user name
	Summary []UserSummary `json:"summary"`
	// AllFilaments is the sorted set of filament keys seen across all
	// users, for building a uniform report table
	AllFilaments []string `json:"allFilaments"`
}

// FilamentKey builds the bucket key for a material/colour pair.
func FilamentKey(material, colour string) string {
	return material + " - " + colour
}

// Aggregate folds the claimed prints into a per-user report. A filament
// slot counts only when material and colour are both present and the
// weight is a positive number; a missing or malformed weight contributes
// nothing rather than failing the whole report. Accumulation runs at full
// precision; rounding happens once on the emitted values (weights to 1
// decimal place, costs to 2).
func Aggregate(prints []schema.Print) Report {
	buckets := make(map[string]map[string]float64)
	filaments := make(map[string]struct{})

	for i := range prints {
		print := &prints[i]
		if print.ClaimedBy == nil || *print.ClaimedBy == "" {
			continue
		}
		user := *print.ClaimedBy

		for _, slot := range print.FilamentSlots() {
			if slot.Material == nil || *slot.Material == "" ||
				slot.Colour == nil || *slot.Colour == "" {
				continue
			}
			weight := slotWeight(slot.Weight)
			if weight <= 0 {
				continue
			}

			key := FilamentKey(*slot.Material, *slot.Colour)
			filaments[key] = struct{}{}

			if buckets[user] == nil {
				buckets[user] = make(map[string]float64)
			}
			buckets[user][key] += weight
		}
	}

	report := Report{
		Summary:      make([]UserSummary, 0, len(buckets)),
		AllFilaments: make([]string, 0, len(filaments)),
	}

	for user, usage := range buckets {
		summary := UserSummary{
			User:      user,
			Filaments: make(map[string]float64, len(usage)),
		}

		var total float64
		for key, grams := range usage {
			summary.Filaments[key] = roundTo(grams, 1)
			total += grams
		}
		summary.TotalWeight = roundTo(total, 1)
		summary.TotalCost = roundTo(total*CostPerGram, 2)

		report.Summary = append(report.Summary, summary)
	}

	// Deterministic output for a storage layer that guarantees no order
	sort.Slice(report.Summary, func(i, j int) bool {
		return report.Summary[i].User < report.Summary[j].User
	})

	for key := range filaments {
		report.AllFilaments = append(report.AllFilaments, key)
	}
	sort.Strings(report.AllFilaments)

	return report
}

// slotWeight normalizes a slot weight; NaN and infinities are treated as
// absent, the same as a weight that never parsed.
func slotWeight(w *float64) float64 {
	if w == nil {
		return 0
	}
	if math.IsNaN(*w) || math.IsInf(*w, 0) {
		return 0
	}
	return *w
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
