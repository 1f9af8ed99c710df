package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/models"
	"github.com/qpago/serfinsa-settler/internal/domain/ports"
)

// Result holds the per-run reconciliation counters
type Result struct {
	Found    int
	NotFound int
	Errors   int
}

// Service matches ledger rows to their authoritative gateway transactions
type Service struct {
	ledger ports.LedgerRepository
	txns   ports.TransactionRepository
	logger *zap.Logger
}

// NewService creates a new reconciliation service
func NewService(ledger ports.LedgerRepository, txns ports.TransactionRepository, logger *zap.Logger) *Service {
	return &Service{ledger: ledger, txns: txns, logger: logger}
}

// ReconcileAll looks up each sequence number in the gateway's transactions
// and writes the recovered transaction id and business id back onto the
// ledger, one commit per row. Rows without a match keep null reconciliation
// fields and stay out of batching.
func (s *Service) ReconcileAll(ctx context.Context, seqNums []string) *Result {
	result := &Result{}

	for _, seqNum := range seqNums {
		txn, err := s.txns.FindByReference(ctx, seqNum)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug("No gateway transaction for sequence number",
				zap.String("seq_num", seqNum))
			result.NotFound++
			continue
		}
		if err != nil {
			s.logger.Error("Transaction lookup failed",
				zap.String("seq_num", seqNum),
				zap.Error(err),
			)
			result.Errors++
			continue
		}

		if err := s.ledger.SetReconciliation(ctx, seqNum, txn.TransactionID, txn.BusinessID); err != nil {
			s.logger.Error("Reconciliation write-back failed",
				zap.String("seq_num", seqNum),
				zap.String("transaction_id", txn.TransactionID),
				zap.Error(err),
			)
			result.Errors++
			continue
		}

		s.logger.Info("Row reconciled",
			zap.String("seq_num", seqNum),
			zap.String("transaction_id", txn.TransactionID),
			zap.String("auth_code", txn.AuthorizationCode),
		)
		result.Found++
	}

	s.logger.Info("Reconciliation pass complete",
		zap.Int("found", result.Found),
		zap.Int("not_found", result.NotFound),
		zap.Int("errors", result.Errors),
	)
	return result
}

// LookupByAuthorizationCode resolves a single transaction by its
// authorization code. An ad-hoc capability for manual reconciliation; the
// pipeline never calls it.
func (s *Service) LookupByAuthorizationCode(ctx context.Context, authCode string) (*models.ExternalTransaction, error) {
	txn, err := s.txns.FindByAuthorizationCode(ctx, authCode)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Info("No transaction for authorization code", zap.String("auth_code", authCode))
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Transaction found by authorization code",
		zap.String("auth_code", authCode),
		zap.String("transaction_id", txn.TransactionID),
		zap.String("order_number", txn.OrderNumber),
	)
	return txn, nil
}
