package usage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapmanwm/printsync-web/internal/store/schema"
)

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func claimedPrint(id, user string) schema.Print {
	return schema.Print{
		ID:        id,
		Title:     "Print " + id,
		Status:    "Success",
		ClaimedBy: strPtr(user),
	}
}

func TestFilamentKey(t *testing.T) {
	assert.Equal(t, "PLA - FF0000FF", FilamentKey("PLA", "FF0000FF"))
	assert.Equal(t, " - ", FilamentKey("", ""))
}

func TestAggregate(t *testing.T) {
	t.Run("two users with distinct filaments", func(t *testing.T) {
		p1 := claimedPrint("1", "A")
		p1.Filament1Material = strPtr("PLA")
		p1.Filament1Colour = strPtr("FF0000FF")
		p1.Filament1Weight = floatPtr(100)

		p2 := claimedPrint("2", "A")
		p2.Filament1Material = strPtr("PLA")
		p2.Filament1Colour = strPtr("FF0000FF")
		p2.Filament1Weight = floatPtr(50)

		p3 := claimedPrint("3", "B")
		p3.Filament1Material = strPtr("PETG")
		p3.Filament1Colour = strPtr("00FF00FF")
		p3.Filament1Weight = floatPtr(40)

		report := Aggregate([]schema.Print{p1, p2, p3})

		require.Len(t, report.Summary, 2)

		a := report.Summary[0]
		assert.Equal(t, "A", a.User)
		assert.Equal(t, map[string]float64{"PLA - FF0000FF": 150}, a.Filaments)
		assert.Equal(t, 150.0, a.TotalWeight)
		assert.Equal(t, 3.0, a.TotalCost)

		b := report.Summary[1]
		assert.Equal(t, "B", b.User)
		assert.Equal(t, map[string]float64{"PETG - 00FF00FF": 40}, b.Filaments)
		assert.Equal(t, 40.0, b.TotalWeight)
		assert.Equal(t, 0.8, b.TotalCost)

		assert.Equal(t, []string{"PETG - 00FF00FF", "PLA - FF0000FF"}, report.AllFilaments)
	})

	t.Run("unclaimed prints are excluded", func(t *testing.T) {
		p := schema.Print{
			ID:                "1",
			Filament1Material: strPtr("PLA"),
			Filament1Colour:   strPtr("FFFFFFFF"),
			Filament1Weight:   floatPtr(10),
		}

		report := Aggregate([]schema.Print{p})
		assert.Empty(t, report.Summary)
		assert.Empty(t, report.AllFilaments)
	})

	t.Run("empty claimer is treated as unclaimed", func(t *testing.T) {
		p := claimedPrint("1", "")
		p.Filament1Material = strPtr("PLA")
		p.Filament1Colour = strPtr("FFFFFFFF")
		p.Filament1Weight = floatPtr(10)

		report := Aggregate([]schema.Print{p})
		assert.Empty(t, report.Summary)
	})

	t.Run("multi-slot print accumulates per filament", func(t *testing.T) {
		p := claimedPrint("1", "A")
		p.Filament1Material = strPtr("PLA")
		p.Filament1Colour = strPtr("FF0000FF")
		p.Filament1Weight = floatPtr(30)
		p.Filament2Material = strPtr("PLA")
		p.Filament2Colour = strPtr("0000FFFF")
		p.Filament2Weight = floatPtr(20)
		p.Filament3Material = strPtr("PLA")
		p.Filament3Colour = strPtr("FF0000FF")
		p.Filament3Weight = floatPtr(5)

		report := Aggregate([]schema.Print{p})

		require.Len(t, report.Summary, 1)
		assert.Equal(t, map[string]float64{
			"PLA - FF0000FF": 35,
			"PLA - 0000FFFF": 20,
		}, report.Summary[0].Filaments)
		assert.Equal(t, 55.0, report.Summary[0].TotalWeight)
		assert.Equal(t, 1.1, report.Summary[0].TotalCost)
	})

	t.Run("same filament key aggregates across users independently", func(t *testing.T) {
		p1 := claimedPrint("1", "A")
		p1.Filament1Material = strPtr("PLA")
		p1.Filament1Colour = strPtr("FF0000FF")
		p1.Filament1Weight = floatPtr(10)

		p2 := claimedPrint("2", "B")
		p2.Filament1Material = strPtr("PLA")
		p2.Filament1Colour = strPtr("FF0000FF")
		p2.Filament1Weight = floatPtr(25)

		report := Aggregate([]schema.Print{p1, p2})

		require.Len(t, report.Summary, 2)
		assert.Equal(t, 10.0, report.Summary[0].Filaments["PLA - FF0000FF"])
		assert.Equal(t, 25.0, report.Summary[1].Filaments["PLA - FF0000FF"])
		assert.Equal(t, []string{"PLA - FF0000FF"}, report.AllFilaments)
	})

	t.Run("slots missing material or colour are skipped", func(t *testing.T) {
		p := claimedPrint("1", "A")
		p.Filament1Material = strPtr("PLA")
		p.Filament1Weight = floatPtr(10) // no colour
		p.Filament2Colour = strPtr("FFFFFFFF")
		p.Filament2Weight = floatPtr(10) // no material
		p.Filament3Material = strPtr("")
		p.Filament3Colour = strPtr("FFFFFFFF")
		p.Filament3Weight = floatPtr(10) // empty material

		report := Aggregate([]schema.Print{p})
		assert.Empty(t, report.Summary)
	})

	t.Run("zero, negative and absent weights contribute nothing", func(t *testing.T) {
		p := claimedPrint("1", "A")
		p.Filament1Material = strPtr("PLA")
		p.Filament1Colour = strPtr("FF0000FF")
		p.Filament1Weight = floatPtr(0)
		p.Filament2Material = strPtr("PLA")
		p.Filament2Colour = strPtr("FF0000FF")
		p.Filament2Weight = floatPtr(-5)
		p.Filament3Material = strPtr("PLA")
		p.Filament3Colour = strPtr("FF0000FF") // nil weight

		report := Aggregate([]schema.Print{p})
		assert.Empty(t, report.Summary)
	})

	t.Run("NaN and infinite weights are treated as absent", func(t *testing.T) {
		p := claimedPrint("1", "A")
		p.Filament1Material = strPtr("PLA")
		p.Filament1Colour = strPtr("FF0000FF")
		p.Filament1Weight = floatPtr(math.NaN())
		p.Filament2Material = strPtr("PLA")
		p.Filament2Colour = strPtr("FF0000FF")
		p.Filament2Weight = floatPtr(math.Inf(1))

		report := Aggregate([]schema.Print{p})
		assert.Empty(t, report.Summary)
	})

	t.Run("rounding happens once at the end", func(t *testing.T) {
		// Three slots of 10.05g: naive per-step rounding to one decimal
		// place would drift; a single final rounding gives 30.2
		p := claimedPrint("1", "A")
		p.Filament1Material = strPtr("PLA")
		p.Filament1Colour = strPtr("FF0000FF")
		p.Filament1Weight = floatPtr(10.05)
		p.Filament2Material = strPtr("PLA")
		p.Filament2Colour = strPtr("FF0000FF")
		p.Filament2Weight = floatPtr(10.05)
		p.Filament3Material = strPtr("PLA")
		p.Filament3Colour = strPtr("FF0000FF")
		p.Filament3Weight = floatPtr(10.05)

		report := Aggregate([]schema.Print{p})

		require.Len(t, report.Summary, 1)
		assert.InDelta(t, 30.2, report.Summary[0].TotalWeight, 0.0001)
		assert.InDelta(t, 0.6, report.Summary[0].TotalCost, 0.0001)
	})

	t.Run("summary sorted by user, filament keys sorted", func(t *testing.T) {
		users := []string{"zoe", "adam", "mike"}
		var prints []schema.Print
		for i, u := range users {
			p := claimedPrint(string(rune('1'+i)), u)
			p.Filament1Material = strPtr("PLA")
			p.Filament1Colour = strPtr("FFFFFFFF")
			p.Filament1Weight = floatPtr(1)
			prints = append(prints, p)
		}

		report := Aggregate(prints)

		require.Len(t, report.Summary, 3)
		assert.Equal(t, "adam", report.Summary[0].User)
		assert.Equal(t, "mike", report.Summary[1].User)
		assert.Equal(t, "zoe", report.Summary[2].User)
	})

	t.Run("no prints yields empty report", func(t *testing.T) {
		report := Aggregate(nil)
		assert.NotNil(t, report.Summary)
		assert.Empty(t, report.Summary)
		assert.NotNil(t, report.AllFilaments)
		assert.Empty(t, report.AllFilaments)
	})
}
