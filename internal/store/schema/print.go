package schema

import (
	"time"
)

// FilamentSlotCount is the number of filament slots a printer can report
// for a single job (AMS multi-material prints).
const FilamentSlotCount = 4

// Print represents the prints table - one row per physical print job
// reported by the printer cloud. The row is created and refreshed by the
// ingestion side and claimed/unclaimed by end users.
type Print struct {
	// ID is the stable external identifier assigned by the printer cloud
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Title is the display name of the print job
	Title string `gorm:"column:title;not null;type:text"`
	// Cover is an optional cover image URL, interpreted only by the presentation layer
	Cover *string `gorm:"column:cover;type:text"`
	// Status is the printer-reported state label (e.g. "Success", "Printing", "Canceled")
	Status string `gorm:"column:status;not null;type:text"`
	// StartTime is when the printer started the job
	StartTime *time.Time `gorm:"column:start_time"`
	// EndTime is set once the job finishes
	EndTime *time.Time `gorm:"column:end_time"`
	// TotalWeight is the printer-reported total mass in grams; it is not
	// reconciled against the per-slot breakdown
	TotalWeight *float64 `gorm:"column:total_weight;type:decimal"`

	Filament1Material *string  `gorm:"column:filament_1_material;type:text"`
	Filament1Colour   *string  `gorm:"column:filament_1_colour;type:text"`
	Filament1Weight   *float64 `gorm:"column:filament_1_weight;type:decimal"`
	Filament2Material *string  `gorm:"column:filament_2_material;type:text"`
	Filament2Colour   *string  `gorm:"column:filament_2_colour;type:text"`
	Filament2Weight   *float64 `gorm:"column:filament_2_weight;type:decimal"`
	Filament3Material *string  `gorm:"column:filament_3_material;type:text"`
	Filament3Colour   *string  `gorm:"column:filament_3_colour;type:text"`
	Filament3Weight   *float64 `gorm:"column:filament_3_weight;type:decimal"`
	Filament4Material *string  `gorm:"column:filament_4_material;type:text"`
	Filament4Colour   *string  `gorm:"column:filament_4_colour;type:text"`
	Filament4Weight   *float64 `gorm:"column:filament_4_weight;type:decimal"`

	// ClaimedBy names the claiming user; nil means unclaimed. This is the
	// only field mutated outside ingestion, and only through ClaimPrint /
	// UnclaimPrint
	ClaimedBy *string `gorm:"column:claimed_by;type:text;index:idx_prints_claimed_by"`
	// CreatedAt is set on first ingestion and never changes; listings
	// order by it descending
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index:idx_prints_created_at,sort:desc"`
	// UpdatedAt tracks the last write, whether from ingestion or a claim change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName specifies the table name for the Print model
func (Print) TableName() string {
	return "prints"
}

// FilamentSlot is one material/colour/weight triple from a print row.
type FilamentSlot struct {
	Material *string
	Colour   *string
	Weight   *float64
}

// FilamentSlots returns the print's filament slots in slot order.
func (p *Print) FilamentSlots() [FilamentSlotCount]FilamentSlot {
	return [FilamentSlotCount]FilamentSlot{
		{p.Filament1Material, p.Filament1Colour, p.Filament1Weight},
		{p.Filament2Material, p.Filament2Colour, p.Filament2Weight},
		{p.Filament3Material, p.Filament3Colour, p.Filament3Weight},
		{p.Filament4Material, p.Filament4Colour, p.Filament4Weight},
	}
}
