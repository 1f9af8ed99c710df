package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
	"github.com/qpago/serfinsa-settler/internal/domain/ports"
)

// Result holds the per-run ingest counters. SeqNums carries the canonical
// sequence numbers of every non-errored row, duplicates included, for the
// reconciliation pass that follows.
type Result struct {
	Inserted int
	Skipped  int
	Errors   int
	SeqNums  []string
}

// TotalProcessed returns the number of workbook rows the run looked at
func (r *Result) TotalProcessed() int {
	return r.Inserted + r.Skipped + r.Errors
}

// Service ingests settlement workbook rows into the ledger
type Service struct {
	ledger ports.LedgerRepository
	logger *zap.Logger
}

// NewService creates a new ingest service
func NewService(ledger ports.LedgerRepository, logger *zap.Logger) *Service {
	return &Service{ledger: ledger, logger: logger}
}

// IngestRows walks the workbook rows in their original order, deduplicates
// on the canonical sequence number and inserts new ledger rows. Row-level
// failures are logged with the offending values, counted and skipped; they
// never abort the batch.
func (s *Service) IngestRows(ctx context.Context, records []map[string]string) *Result {
	result := &Result{}

	for i, record := range records {
		row, seqNum := buildLedgerRow(record)

		if seqNum != "" {
			exists, err := s.ledger.SeqNumExists(ctx, seqNum)
			if err != nil {
				s.logger.Error("Duplicate check failed",
					zap.Int("row", i+1),
					zap.String("seq_num", seqNum),
					zap.Error(err),
				)
				result.Errors++
				continue
			}
			if exists {
				s.logger.Debug("Skipping duplicate row",
					zap.Int("row", i+1),
					zap.String("seq_num", seqNum),
				)
				result.Skipped++
				result.SeqNums = append(result.SeqNums, seqNum)
				continue
			}
		}

		if err := s.ledger.InsertRow(ctx, row); err != nil {
			s.logger.Error("Row insert failed",
				zap.Int("row", i+1),
				zap.String("seq_num", seqNum),
				zap.Any("fields", row.Fields),
				zap.Error(err),
			)
			result.Errors++
			continue
		}

		result.Inserted++
		if seqNum != "" {
			result.SeqNums = append(result.SeqNums, seqNum)
		}
	}

	s.logger.Info("Ingest pass complete",
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors),
	)
	return result
}

// buildLedgerRow maps a header-keyed workbook record onto the ledger's
// detail columns, dropping null sentinels and canonicalizing the sequence
// number. Returns the row and its canonical sequence number ("" when the
// row carries none).
func buildLedgerRow(record map[string]string) (*models.LedgerRow, string) {
	row := &models.LedgerRow{Fields: make(map[string]string, len(record))}

	for header, value := range record {
		col, ok := models.IsLedgerColumn(header)
		if !ok {
			continue
		}
		if col == models.ColSeqNum {
			continue // handled below
		}
		if IsNullSentinel(value) {
			continue
		}
		row.Fields[col] = value
	}

	var seqNum string
	for header, value := range record {
		col, ok := models.IsLedgerColumn(header)
		if !ok || col != models.ColSeqNum {
			continue
		}
		if canonical, ok := CanonicalSeqNum(value); ok {
			seqNum = canonical
			row.SeqNum = &seqNum
			// Store the canonical form so future duplicate checks compare
			// like against like.
			row.Fields[models.ColSeqNum] = canonical
		}
		break
	}

	return row, seqNum
}
