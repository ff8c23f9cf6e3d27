package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/chapmanwm/printsync-web/internal/api/shared/dto"
	apierrors "github.com/chapmanwm/printsync-web/internal/api/shared/errors"
	"github.com/chapmanwm/printsync-web/internal/images"
	"github.com/chapmanwm/printsync-web/internal/store"
	"github.com/chapmanwm/printsync-web/internal/store/schema"
	"github.com/chapmanwm/printsync-web/internal/usage"
)

// Executor is the interface for the API's business logic layer
type Executor interface {
	// ListPrints retrieves prints newest-first, optionally restricted to
	// claimed or unclaimed rows
	ListPrints(ctx context.Context, claimed *bool) ([]dto.PrintResponse, error)

	// IngestPrints upserts a batch of prints with claim protection and
	// returns the number of submitted rows
	IngestPrints(ctx context.Context, batch dto.PrintBatch) (*dto.IngestResponse, error)

	// ClaimPrint transitions an unclaimed print to claimed by user; nil
	// when the print is absent or already claimed (indistinguishable)
	ClaimPrint(ctx context.Context, id string, user string) (*dto.PrintResponse, error)

	// UnclaimPrint releases a print's claim regardless of claimer; nil
	// when the print is absent
	UnclaimPrint(ctx context.Context, id string) (*dto.PrintResponse, error)

	// GetFilamentUsage computes the per-user filament report over the
	// currently claimed prints
	GetFilamentUsage(ctx context.Context) (*dto.FilamentUsageResponse, error)

	// UploadCover stores a cover image for a print and returns its URL
	UploadCover(ctx context.Context, printID string, data []byte) (*dto.CoverUploadResponse, error)

	// InitSchema runs the prints table migration
	InitSchema(ctx context.Context) error
}

type executor struct {
	store  store.Store
	images images.Store
}

// NewExecutor creates the API business logic layer over the given store and
// image store. A nil image store disables cover uploads.
func NewExecutor(st store.Store, imgs images.Store) Executor {
	return &executor{store: st, images: imgs}
}

func (e *executor) ListPrints(ctx context.Context, claimed *bool) ([]dto.PrintResponse, error) {
	prints, err := e.store.GetPrintsByFilter(ctx, store.PrintFilter{Claimed: claimed})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list prints: %v", err))
	}

	responses := make([]dto.PrintResponse, len(prints))
	for i := range prints {
		responses[i] = dto.MapPrintToResponse(&prints[i])
	}

	return responses, nil
}

func (e *executor) IngestPrints(ctx context.Context, batch dto.PrintBatch) (*dto.IngestResponse, error) {
	rows := make([]schema.Print, len(batch))
	for i := range batch {
		rows[i] = batch[i].ToSchema()
	}

	if err := e.store.UpsertPrints(ctx, rows); err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to upsert prints: %v", err))
	}

	// Count reports submitted rows; rows skipped by claim protection are
	// indistinguishable at this level and counted all the same
	return &dto.IngestResponse{Success: true, Count: len(batch)}, nil
}

func (e *executor) ClaimPrint(ctx context.Context, id string, user string) (*dto.PrintResponse, error) {
	print, err := e.store.ClaimPrint(ctx, id, user)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to claim print: %v", err))
	}
	if print == nil {
		return nil, nil
	}

	response := dto.MapPrintToResponse(print)
	return &response, nil
}

func (e *executor) UnclaimPrint(ctx context.Context, id string) (*dto.PrintResponse, error) {
	print, err := e.store.UnclaimPrint(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to unclaim print: %v", err))
	}
	if print == nil {
		return nil, nil
	}

	response := dto.MapPrintToResponse(print)
	return &response, nil
}

func (e *executor) GetFilamentUsage(ctx context.Context) (*dto.FilamentUsageResponse, error) {
	prints, err := e.store.GetClaimedPrints(ctx)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get claimed prints: %v", err))
	}

	report := usage.Aggregate(prints)
	return &dto.FilamentUsageResponse{
		Summary:      report.Summary,
		AllFilaments: report.AllFilaments,
	}, nil
}

func (e *executor) UploadCover(ctx context.Context, printID string, data []byte) (*dto.CoverUploadResponse, error) {
	if e.images == nil {
		return nil, apierrors.NewInternalError("Cover image storage is not configured")
	}

	url, err := e.images.Save(ctx, printID, data)
	if err != nil {
		if errors.Is(err, images.ErrUnsupportedType) || errors.Is(err, images.ErrInvalidPrintID) {
			return nil, apierrors.NewBadRequestError(err.Error())
		}
		return nil, apierrors.NewInternalError(fmt.Sprintf("Failed to store cover image: %v", err))
	}

	return &dto.CoverUploadResponse{URL: url}, nil
}

func (e *executor) InitSchema(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return apierrors.NewDatabaseError(fmt.Sprintf("Failed to initialize schema: %v", err))
	}
	return nil
}
