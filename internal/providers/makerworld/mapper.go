package makerworld

import (
	"strconv"
	"strings"

	"github.com/chapmanwm/printsync-web/internal/api/shared/dto"
	"github.com/chapmanwm/printsync-web/internal/store/schema"
)

// statusNames maps MakerWorld task status codes to display statuses. Codes 1
// and 4 both render as in-progress; unknown codes pass through numerically.
var statusNames = map[int]string{
	1: "Printing",
	2: "Success",
	3: "Canceled",
	4: "Printing",
}

// StatusName returns the display status for a MakerWorld status code
func StatusName(code int) string {
	if name, ok := statusNames[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}

// fixISO strips the trailing Z MakerWorld appends to otherwise zone-less
// timestamps
func fixISO(ts *string) *string {
	if ts == nil {
		return nil
	}
	fixed := strings.TrimSuffix(*ts, "Z")
	return &fixed
}

// MapTaskToPrint converts a MakerWorld task into a print ingest row
func MapTaskToPrint(task Task) dto.PrintInput {
	input := dto.PrintInput{
		ID:          strconv.FormatInt(task.ID, 10),
		Title:       task.Title,
		Cover:       task.Cover,
		Status:      StatusName(task.Status),
		StartTime:   fixISO(task.StartTime),
		EndTime:     fixISO(task.EndTime),
		TotalWeight: gramsFrom(task.Weight),
	}

	// Absent AMS slots stay nil; the table always carries four
	slots := [schema.FilamentSlotCount]AMSSlot{}
	copy(slots[:], task.AMSDetailMapping)

	input.Filament1Material = slots[0].FilamentType
	input.Filament1Colour = slots[0].TargetColor
	input.Filament1Weight = gramsFrom(slots[0].Weight)
	input.Filament2Material = slots[1].FilamentType
	input.Filament2Colour = slots[1].TargetColor
	input.Filament2Weight = gramsFrom(slots[1].Weight)
	input.Filament3Material = slots[2].FilamentType
	input.Filament3Colour = slots[2].TargetColor
	input.Filament3Weight = gramsFrom(slots[2].Weight)
	input.Filament4Material = slots[3].FilamentType
	input.Filament4Colour = slots[3].TargetColor
	input.Filament4Weight = gramsFrom(slots[3].Weight)

	return input
}

// MapTasksToPrints converts a task page into ingest rows
func MapTasksToPrints(tasks []Task) []dto.PrintInput {
	prints := make([]dto.PrintInput, len(tasks))
	for i, task := range tasks {
		prints[i] = MapTaskToPrint(task)
	}
	return prints
}

func gramsFrom(v *float64) dto.Grams {
	if v == nil {
		return dto.Grams{}
	}
	return dto.NewGrams(*v)
}
