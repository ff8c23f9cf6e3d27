package dto

import (
	"time"

	"github.com/chapmanwm/printsync-web/internal/store/schema"
)

// timestampLayouts are the accepted ingestion time formats. The printer
// cloud reports ISO timestamps; the scrape side strips a trailing Z, so
// both the offset and the naive form appear in practice.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// PrintResponse is a print row as returned by the API. It mirrors the
// stored row so callers can render state without a second read.
type PrintResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Cover       *string    `json:"cover"`
	Status      string     `json:"status"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	TotalWeight *float64   `json:"total_weight"`

	Filament1Material *string  `json:"filament_1_material"`
	Filament1Colour   *string  `json:"filament_1_colour"`
	Filament1Weight   *float64 `json:"filament_1_weight"`
	Filament2Material *string  `json:"filament_2_material"`
	Filament2Colour   *string  `json:"filament_2_colour"`
	Filament2Weight   *float64 `json:"filament_2_weight"`
	Filament3Material *string  `json:"filament_3_material"`
	Filament3Colour   *string  `json:"filament_3_colour"`
	Filament3Weight   *float64 `json:"filament_3_weight"`
	Filament4Material *string  `json:"filament_4_material"`
	Filament4Colour   *string  `json:"filament_4_colour"`
	Filament4Weight   *float64 `json:"filament_4_weight"`

	ClaimedBy *string   `json:"claimed_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapPrintToResponse converts a stored print row to its API representation
func MapPrintToResponse(print *schema.Print) PrintResponse {
	return PrintResponse{
		ID:          print.ID,
		Title:       print.Title,
		Cover:       print.Cover,
		Status:      print.Status,
		StartTime:   print.StartTime,
		EndTime:     print.EndTime,
		TotalWeight: print.TotalWeight,

		Filament1Material: print.Filament1Material,
		Filament1Colour:   print.Filament1Colour,
		Filament1Weight:   print.Filament1Weight,
		Filament2Material: print.Filament2Material,
		Filament2Colour:   print.Filament2Colour,
		Filament2Weight:   print.Filament2Weight,
		Filament3Material: print.Filament3Material,
		Filament3Colour:   print.Filament3Colour,
		Filament3Weight:   print.Filament3Weight,
		Filament4Material: print.Filament4Material,
		Filament4Colour:   print.Filament4Colour,
		Filament4Weight:   print.Filament4Weight,

		ClaimedBy: print.ClaimedBy,
		CreatedAt: print.CreatedAt,
		UpdatedAt: print.UpdatedAt,
	}
}

// ToSchema converts an ingested print to its storage representation.
// Unparseable timestamps become NULL rather than failing the row.
func (p *PrintInput) ToSchema() schema.Print {
	return schema.Print{
		ID:          p.ID,
		Title:       p.Title,
		Cover:       p.Cover,
		Status:      p.Status,
		StartTime:   parseTimestamp(p.StartTime),
		EndTime:     parseTimestamp(p.EndTime),
		TotalWeight: p.TotalWeight.Float(),

		Filament1Material: p.Filament1Material,
		Filament1Colour:   p.Filament1Colour,
		Filament1Weight:   p.Filament1Weight.Float(),
		Filament2Material: p.Filament2Material,
		Filament2Colour:   p.Filament2Colour,
		Filament2Weight:   p.Filament2Weight.Float(),
		Filament3Material: p.Filament3Material,
		Filament3Colour:   p.Filament3Colour,
		Filament3Weight:   p.Filament3Weight.Float(),
		Filament4Material: p.Filament4Material,
		Filament4Colour:   p.Filament4Colour,
		Filament4Weight:   p.Filament4Weight.Float(),

		ClaimedBy: p.ClaimedBy,
	}
}

func parseTimestamp(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t
		}
	}
	return nil
}
