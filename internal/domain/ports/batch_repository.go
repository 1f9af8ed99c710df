package ports

import (
	"context"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// BatchRepository defines persistence for parent and child settlement
// batches
type BatchRepository interface {
	// GetOrCreateDayBatch returns the id of the parent batch for the date,
	// creating it in state pending when absent. Under the canonical schema
	// the lookup keys on (date, business id); legacy deployments key on the
	// date alone and merchants sharing a date share one parent.
	GetOrCreateDayBatch(ctx context.Context, batchDate, businessID string) (int64, error)

	// FindMerchantBatch returns the id of an existing child batch for
	// (business id, date, parent id), or domain.ErrNotFound.
	FindMerchantBatch(ctx context.Context, businessID, batchDate string, dayBatchID int64) (int64, error)

	// CreateMerchantBatch inserts a child batch seeded with its group totals
	// in state pending and returns its id.
	CreateMerchantBatch(ctx context.Context, batch *models.MerchantBatch) (int64, error)

	// DayBatchIDs returns the distinct parent ids referenced by any child
	// batch.
	DayBatchIDs(ctx context.Context) ([]int64, error)

	// SumChildren re-aggregates every child of the parent and returns the
	// roll-up, including the distinct merchant count.
	SumChildren(ctx context.Context, dayBatchID int64) (*models.DayBatch, error)

	// UpdateDayBatchTotals persists the roll-up onto the parent row, writing
	// only the total columns present in the parent schema.
	UpdateDayBatchTotals(ctx context.Context, dayBatchID int64, rollup *models.DayBatch) error
}
