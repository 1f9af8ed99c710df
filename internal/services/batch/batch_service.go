package batch

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/models"
	"github.com/qpago/serfinsa-settler/internal/domain/ports"
)

// Result holds the per-run aggregation counters
type Result struct {
	Groups         int
	BatchesCreated int
	BatchesReused  int
	RowsStamped    int64
	ParentsUpdated int
	GroupErrors    int
	ParentErrors   int
}

// Service groups reconciled ledger rows into daily per-merchant batches
// and rolls their totals up into the per-date parent batches
type Service struct {
	ledger  ports.LedgerRepository
	batches ports.BatchRepository
	schema  ports.SchemaManager
	logger  *zap.Logger
}

// NewService creates a new batch aggregation service
func NewService(ledger ports.LedgerRepository, batches ports.BatchRepository, schema ports.SchemaManager, logger *zap.Logger) *Service {
	return &Service{ledger: ledger, batches: batches, schema: schema, logger: logger}
}

// CreateBatches runs one aggregation pass. A failure while creating one
// group's batch skips that group and continues; the group is retried on
// the next run because its rows keep a null batch id. Schema preconditions
// failing halt the whole pass instead.
func (s *Service) CreateBatches(ctx context.Context) (*Result, error) {
	if err := s.ensurePreconditions(ctx); err != nil {
		return nil, err
	}

	groups, err := s.ledger.UnbatchedGroups(ctx)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		s.logger.Info("No rows to group into batches")
		return &Result{}, nil
	}

	s.logger.Info("Aggregation groups found", zap.Int("groups", len(groups)))

	result := &Result{Groups: len(groups)}
	for i := range groups {
		if err := s.processGroup(ctx, &groups[i], result); err != nil {
			s.logger.Error("Batch creation failed for group, skipping",
				zap.String("business_id", groups[i].BusinessID),
				zap.String("fecha_lote", groups[i].BatchDate),
				zap.Error(err),
			)
			result.GroupErrors++
			continue
		}
	}

	s.rollupParents(ctx, result)

	s.logger.Info("Aggregation pass complete",
		zap.Int("groups", result.Groups),
		zap.Int("batches_created", result.BatchesCreated),
		zap.Int("batches_reused", result.BatchesReused),
		zap.Int64("rows_stamped", result.RowsStamped),
		zap.Int("parents_updated", result.ParentsUpdated),
		zap.Int("group_errors", result.GroupErrors),
	)
	return result, nil
}

// ensurePreconditions verifies the ledger's batch id column and the child
// batch table. The child table is owned by migrations; its absence is
// fatal. The parent table is this component's to create.
func (s *Service) ensurePreconditions(ctx context.Context) error {
	if err := s.schema.EnsureBatchIDColumn(ctx); err != nil {
		return domain.WrapError(domain.ErrorCodeSchemaNotReady, "batch id column not ready", err)
	}

	exists, err := s.schema.TableExists(ctx, "lote_sv_business")
	if err != nil {
		return domain.WrapError(domain.ErrorCodeSchemaNotReady, "child batch table check failed", err)
	}
	if !exists {
		return domain.NewDomainError(domain.ErrorCodeSchemaTableMissing,
			"child batch table lote_sv_business does not exist; run migrations first")
	}

	if err := s.schema.EnsureDayBatchTable(ctx); err != nil {
		return domain.WrapError(domain.ErrorCodeSchemaNotReady, "parent batch table not ready", err)
	}
	return nil
}

func (s *Service) processGroup(ctx context.Context, group *models.BatchGroup, result *Result) error {
	dayBatchID, err := s.batches.GetOrCreateDayBatch(ctx, group.BatchDate, group.BusinessID)
	if err != nil {
		return err
	}

	merchantBatchID, err := s.batches.FindMerchantBatch(ctx, group.BusinessID, group.BatchDate, dayBatchID)
	switch {
	case err == nil:
		// Resuming a partially completed run: reuse the batch, the
		// stamping below picks up any rows left unclaimed.
		s.logger.Info("Merchant batch already exists, reusing",
			zap.Int64("batch_id", merchantBatchID),
			zap.String("business_id", group.BusinessID),
			zap.String("fecha_lote", group.BatchDate),
		)
		result.BatchesReused++
	case errors.Is(err, domain.ErrNotFound):
		merchantBatchID, err = s.batches.CreateMerchantBatch(ctx, &models.MerchantBatch{
			BusinessID: group.BusinessID,
			DayBatchID: dayBatchID,
			BatchDate:  group.BatchDate,
			Totals:     group.Totals,
			Status:     models.BatchPending,
		})
		if err != nil {
			return err
		}
		s.logger.Info("Merchant batch created",
			zap.Int64("batch_id", merchantBatchID),
			zap.String("business_id", group.BusinessID),
			zap.String("fecha_lote", group.BatchDate),
			zap.Int64("transactions", group.Totals.TransactionCount),
		)
		result.BatchesCreated++
	default:
		return err
	}

	stamped, err := s.ledger.AssignBatchID(ctx, group.BusinessID, group.BatchDate, merchantBatchID)
	if err != nil {
		return err
	}
	if stamped > 0 {
		s.logger.Info("Ledger rows stamped with batch id",
			zap.Int64("batch_id", merchantBatchID),
			zap.Int64("rows", stamped),
		)
	}
	result.RowsStamped += stamped
	return nil
}

// rollupParents recomputes every parent batch's totals by re-summing all
// of its current children, so partial and repeated runs self-heal. A
// single parent's failure is logged and skipped.
func (s *Service) rollupParents(ctx context.Context, result *Result) {
	ids, err := s.batches.DayBatchIDs(ctx)
	if err != nil {
		s.logger.Error("Listing parent batches failed", zap.Error(err))
		result.ParentErrors++
		return
	}
	if len(ids) == 0 {
		s.logger.Info("No parent batches to update")
		return
	}

	s.logger.Info("Updating parent batch totals", zap.Int("parents", len(ids)))
	for _, id := range ids {
		rollup, err := s.batches.SumChildren(ctx, id)
		if err != nil {
			s.logger.Error("Summing child batches failed",
				zap.Int64("day_batch_id", id),
				zap.Error(err),
			)
			result.ParentErrors++
			continue
		}
		if err := s.batches.UpdateDayBatchTotals(ctx, id, rollup); err != nil {
			s.logger.Error("Parent batch update failed",
				zap.Int64("day_batch_id", id),
				zap.Error(err),
			)
			result.ParentErrors++
			continue
		}
		result.ParentsUpdated++
	}
}
