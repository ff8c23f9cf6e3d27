package store

import (
	"context"

	"github.com/chapmanwm/printsync-web/internal/store/schema"
)

// PrintFilter restricts GetPrintsByFilter to claimed or unclaimed rows.
// A nil Claimed returns every row.
type PrintFilter struct {
	Claimed *bool
}

// Store defines the interface for database operations
type Store interface {
	// Migrate creates or updates the prints table schema
	Migrate(ctx context.Context) error
	// UpsertPrints inserts or refreshes print rows keyed by id. Rows that
	// are already claimed are left untouched (claim protection).
	UpsertPrints(ctx context.Context, prints []schema.Print) error
	// GetPrintsByFilter retrieves prints, optionally restricted to
	// claimed or unclaimed rows, newest-created first
	GetPrintsByFilter(ctx context.Context, filter PrintFilter) ([]schema.Print, error)
	// GetPrintByID retrieves a single print row, nil when absent
	GetPrintByID(ctx context.Context, id string) (*schema.Print, error)
	// ClaimPrint atomically sets claimed_by on an unclaimed print and
	// returns the updated row; nil when the print is absent or already
	// claimed (the two causes are not distinguished)
	ClaimPrint(ctx context.Context, id string, user string) (*schema.Print, error)
	// UnclaimPrint clears claimed_by regardless of the current claimer
	// and returns the updated row; nil when the print is absent
	UnclaimPrint(ctx context.Context, id string) (*schema.Print, error)
	// GetClaimedPrints retrieves every claimed row for usage aggregation
	GetClaimedPrints(ctx context.Context) ([]schema.Print, error)
}
