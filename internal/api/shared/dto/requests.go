package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Grams is a weight field tolerant of printer firmware quirks: it accepts a
// JSON number, a numeric string, or null. Anything that fails to parse as a
// number is treated as absent rather than failing the whole payload.
type Grams struct {
	value *float64
}

// NewGrams builds a Grams holding the given value, for tests and mapping.
func NewGrams(v float64) Grams {
	return Grams{value: &v}
}

// Float returns the parsed weight, nil when absent or malformed.
func (g Grams) Float() *float64 {
	return g.value
}

func (g *Grams) UnmarshalJSON(data []byte) error {
	// json.Unmarshal leaves a plain float64 untouched on the null
	// literal, which would read as 0 instead of absent
	if string(bytes.TrimSpace(data)) == "null" {
		g.value = nil
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		g.value = &f
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			g.value = &f
			return nil
		}
	}

	// Malformed weights count as absent, never as an ingestion error
	g.value = nil
	return nil
}

func (g Grams) MarshalJSON() ([]byte, error) {
	if g.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*g.value)
}

// FilamentSlotInput is one reported filament slot on an ingested print.
type FilamentSlotInput struct {
	Material *string `json:"material"`
	Colour   *string `json:"colour"`
	Weight   Grams   `json:"weight"`
}

// PrintInput is one print job as submitted by the ingestion side. Field
// names match the printer-history scrape payload.
type PrintInput struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Cover       *string `json:"cover"`
	Status      string  `json:"status"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	TotalWeight Grams   `json:"total_weight"`

	Filament1Material *string `json:"filament_1_material"`
	Filament1Colour   *string `json:"filament_1_colour"`
	Filament1Weight   Grams   `json:"filament_1_weight"`
	Filament2Material *string `json:"filament_2_material"`
	Filament2Colour   *string `json:"filament_2_colour"`
	Filament2Weight   Grams   `json:"filament_2_weight"`
	Filament3Material *string `json:"filament_3_material"`
	Filament3Colour   *string `json:"filament_3_colour"`
	Filament3Weight   Grams   `json:"filament_3_weight"`
	Filament4Material *string `json:"filament_4_material"`
	Filament4Colour   *string `json:"filament_4_colour"`
	Filament4Weight   Grams   `json:"filament_4_weight"`

	ClaimedBy *string `json:"claimed_by"`
}

// Validate checks the input for required fields
func (p *PrintInput) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("id is required")
	}
	return nil
}

// PrintBatch accepts either a single print object or an array of them, as
// the ingestion endpoint has always allowed both shapes.
type PrintBatch []PrintInput

func (b *PrintBatch) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(data, (*[]PrintInput)(b))
	}

	var single PrintInput
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*b = PrintBatch{single}
	return nil
}

// Validate checks every print in the batch
func (b PrintBatch) Validate() error {
	if len(b) == 0 {
		return errors.New("no prints in request")
	}
	for i := range b {
		if err := b[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ClaimRequest is the body of a claim call.
type ClaimRequest struct {
	User string `json:"user"`
}

// Validate checks the request for required fields
func (r *ClaimRequest) Validate() error {
	if strings.TrimSpace(r.User) == "" {
		return errors.New("user is required")
	}
	return nil
}
