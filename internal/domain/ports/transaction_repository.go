package ports

import (
	"context"

	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// TransactionRepository reads the gateway's transactions table, the
// external system of record. This pipeline never writes through it.
type TransactionRepository interface {
	// FindByReference returns the first transaction whose reference equals
	// the ledger sequence number, or domain.ErrNotFound. When duplicates
	// share a reference the first match wins; ranking between duplicates is
	// deliberately unspecified.
	FindByReference(ctx context.Context, reference string) (*models.ExternalTransaction, error)

	// FindByAuthorizationCode returns the transaction carrying the given
	// authorization code, or domain.ErrNotFound. Not part of the pipeline;
	// kept for ad-hoc manual reconciliation.
	FindByAuthorizationCode(ctx context.Context, authCode string) (*models.ExternalTransaction, error)

	// ListMissing returns successful transactions on the given payment
	// method whose ids appear nowhere among the ledger's reconciled
	// transaction ids, newest first.
	ListMissing(ctx context.Context, paymentMethodID int) ([]models.MissingTransaction, error)
}
