package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chapmanwm/printsync-web/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// printUpdateColumns are the columns ingestion is allowed to refresh on an
// existing row. claimed_by and created_at are deliberately absent: claims
// are sticky against re-ingestion and the creation timestamp anchors the
// listing order.
var printUpdateColumns = []string{
	"title", "cover", "status", "start_time", "end_time", "total_weight",
	"filament_1_material", "filament_1_colour", "filament_1_weight",
	"filament_2_material", "filament_2_colour", "filament_2_weight",
	"filament_3_material", "filament_3_colour", "filament_3_weight",
	"filament_4_material", "filament_4_colour", "filament_4_weight",
	"updated_at",
}

// calculateSafeBatchSize computes the batch size for bulk inserts to avoid
// PostgreSQL's "extended protocol limited to 65535 parameters" error. Each
// record consumes one parameter per inserted field, plus batch overhead
// from GORM bookkeeping and the ON CONFLICT clause, covered by a fixed
// headroom.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// UpsertPrints inserts new print rows or refreshes existing ones matched by
// id. The refresh is a single conditional statement: ON CONFLICT (id)
// DO UPDATE ... WHERE prints.claimed_by IS NULL, so a claimed row is a
// no-op rather than a lost claim. Safe to call repeatedly with identical
// input and under concurrent upserts of different ids.
func (s *pgStore) UpsertPrints(ctx context.Context, prints []schema.Print) error {
	if len(prints) == 0 {
		return nil
	}

	// 23 insert parameters per row: id + 20 data columns + created_at + updated_at
	batchSize := calculateSafeBatchSize(len(prints), 23)

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(printUpdateColumns),
			Where: clause.Where{
				Exprs: []clause.Expression{
					clause.Expr{SQL: "prints.claimed_by IS NULL"},
				},
			},
		}).
		CreateInBatches(prints, batchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert prints: %w", err)
	}

	return nil
}

// GetPrintsByFilter retrieves prints, newest-created first. A non-nil
// filter.Claimed restricts the result to claimed or unclaimed rows.
func (s *pgStore) GetPrintsByFilter(ctx context.Context, filter PrintFilter) ([]schema.Print, error) {
	query := s.db.WithContext(ctx).Model(&schema.Print{})

	if filter.Claimed != nil {
		if *filter.Claimed {
			query = query.Where("claimed_by IS NOT NULL")
		} else {
			query = query.Where("claimed_by IS NULL")
		}
	}

	var prints []schema.Print
	err := query.Order("created_at DESC").Find(&prints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get prints: %w", err)
	}

	return prints, nil
}

// GetPrintByID retrieves a print by its external identifier
func (s *pgStore) GetPrintByID(ctx context.Context, id string) (*schema.Print, error) {
	var print schema.Print
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&print).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get print: %w", err)
	}
	return &print, nil
}

// ClaimPrint sets claimed_by on an unclaimed print. The check-and-set is a
// single conditional UPDATE ... WHERE claimed_by IS NULL with RETURNING, so
// concurrent claims on the same id resolve to exactly one winner. A nil
// result means the print does not exist or is already claimed; callers
// cannot tell the two apart.
func (s *pgStore) ClaimPrint(ctx context.Context, id string, user string) (*schema.Print, error) {
	var updated []schema.Print
	result := s.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ? AND claimed_by IS NULL", id).
		Update("claimed_by", user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to claim print: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &updated[0], nil
}

// UnclaimPrint clears claimed_by unconditionally; any caller may release
// any claim. Unclaiming an already-unclaimed print succeeds as a no-op. A
// nil result means the id does not exist.
func (s *pgStore) UnclaimPrint(ctx context.Context, id string) (*schema.Print, error) {
	var updated []schema.Print
	result := s.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("claimed_by", nil)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to unclaim print: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return &updated[0], nil
}

// GetClaimedPrints retrieves every claimed row for usage aggregation
func (s *pgStore) GetClaimedPrints(ctx context.Context) ([]schema.Print, error) {
	var prints []schema.Print
	err := s.db.WithContext(ctx).
		Where("claimed_by IS NOT NULL").
		Find(&prints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get claimed prints: %w", err)
	}

	return prints, nil
}

// Migrate creates or updates the prints table schema
func (s *pgStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&schema.Print{}); err != nil {
		return fmt.Errorf("failed to migrate prints table: %w", err)
	}
	return nil
}
