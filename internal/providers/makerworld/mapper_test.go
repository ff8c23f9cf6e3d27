package makerworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "Printing", StatusName(1))
	assert.Equal(t, "Success", StatusName(2))
	assert.Equal(t, "Canceled", StatusName(3))
	assert.Equal(t, "Printing", StatusName(4))
	// Unknown codes pass through numerically
	assert.Equal(t, "7", StatusName(7))
}

func TestFixISO(t *testing.T) {
	assert.Nil(t, fixISO(nil))
	assert.Equal(t, "2024-03-01T08:00:00", *fixISO(strPtr("2024-03-01T08:00:00Z")))
	assert.Equal(t, "2024-03-01T08:00:00", *fixISO(strPtr("2024-03-01T08:00:00")))
	assert.Equal(t, "", *fixISO(strPtr("Z")))
}

func TestMapTaskToPrint(t *testing.T) {
	t.Run("full task maps every field", func(t *testing.T) {
		task := Task{
			ID:        987654,
			Title:     "Articulated dragon",
			Cover:     strPtr("https://cdn.example.com/dragon.png"),
			Status:    2,
			StartTime: strPtr("2024-03-01T08:00:00Z"),
			EndTime:   strPtr("2024-03-01T12:30:00Z"),
			Weight:    floatPtr(85.2),
			AMSDetailMapping: []AMSSlot{
				{FilamentType: strPtr("PLA"), TargetColor: strPtr("FF0000FF"), Weight: floatPtr(60.0)},
				{FilamentType: strPtr("PLA"), TargetColor: strPtr("000000FF"), Weight: floatPtr(25.2)},
			},
		}

		got := MapTaskToPrint(task)

		assert.Equal(t, "987654", got.ID)
		assert.Equal(t, "Articulated dragon", got.Title)
		assert.Equal(t, "Success", got.Status)
		require.NotNil(t, got.StartTime)
		assert.Equal(t, "2024-03-01T08:00:00", *got.StartTime)
		require.NotNil(t, got.TotalWeight.Float())
		assert.InDelta(t, 85.2, *got.TotalWeight.Float(), 0.0001)

		require.NotNil(t, got.Filament1Material)
		assert.Equal(t, "PLA", *got.Filament1Material)
		require.NotNil(t, got.Filament2Colour)
		assert.Equal(t, "000000FF", *got.Filament2Colour)

		// Slots three and four were not reported
		assert.Nil(t, got.Filament3Material)
		assert.Nil(t, got.Filament3Weight.Float())
		assert.Nil(t, got.Filament4Material)
	})

	t.Run("task with no AMS data leaves slots empty", func(t *testing.T) {
		got := MapTaskToPrint(Task{ID: 1, Title: "Manual print", Status: 3})

		assert.Equal(t, "Canceled", got.Status)
		assert.Nil(t, got.Filament1Material)
		assert.Nil(t, got.Filament1Weight.Float())
	})

	t.Run("extra AMS slots beyond four are dropped", func(t *testing.T) {
		slots := make([]AMSSlot, 6)
		for i := range slots {
			slots[i] = AMSSlot{FilamentType: strPtr("PLA"), TargetColor: strPtr("FFFFFFFF"), Weight: floatPtr(1)}
		}

		got := MapTaskToPrint(Task{ID: 1, AMSDetailMapping: slots})
		require.NotNil(t, got.Filament4Material)
	})
}

func TestMapTasksToPrints(t *testing.T) {
	tasks := []Task{{ID: 1}, {ID: 2}, {ID: 3}}
	got := MapTasksToPrints(tasks)

	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[2].ID)
}
