package audit

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
	"github.com/qpago/serfinsa-settler/internal/domain/ports"
)

// Service finds successful gateway transactions that never reached the
// settlement ledger. Pure reporting: it reads, exports and notifies, and
// mutates nothing.
type Service struct {
	txns    ports.TransactionRepository
	reports ports.ReportWriter
	logger  *zap.Logger
}

// NewService creates a new audit service
func NewService(txns ports.TransactionRepository, reports ports.ReportWriter, logger *zap.Logger) *Service {
	return &Service{txns: txns, reports: reports, logger: logger}
}

// FindMissing runs the audit query and, when it hits, writes the workbook
// export into outDir. Returns the hits and the export path ("" when there
// was nothing to report).
func (s *Service) FindMissing(ctx context.Context, paymentMethodID int, outDir string) ([]models.MissingTransaction, string, error) {
	s.logger.Info("Searching for missing transactions",
		zap.Int("payment_method_id", paymentMethodID))

	missing, err := s.txns.ListMissing(ctx, paymentMethodID)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Missing-transaction search complete", zap.Int("found", len(missing)))

	if len(missing) == 0 {
		return nil, "", nil
	}

	reportPath := filepath.Join(outDir,
		fmt.Sprintf("transacciones_faltantes_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := s.reports.WriteMissingReport(reportPath, missing); err != nil {
		return missing, "", err
	}
	return missing, reportPath, nil
}
