package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qpago/serfinsa-settler/internal/domain"
	"github.com/qpago/serfinsa-settler/internal/domain/models"
)

// TransactionRepository implements ports.TransactionRepository over the
// gateway's transactions table. Read-only by contract.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// FindByReference returns the first transaction whose reference equals the
// ledger sequence number. LIMIT 1 makes duplicate references a first-match
// lookup; no ordering is imposed between duplicates.
func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*models.ExternalTransaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT transaction_id, "orderNumber", referencs, amount,
		       "autorizationCode", business_id, currency, status
		FROM transactions
		WHERE referencs = $1
		LIMIT 1`, reference)

	txn, err := scanExternalTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeReconcileLookupFailed, "find transaction by reference", err).
			WithDetail("reference", reference)
	}
	return txn, nil
}

// FindByAuthorizationCode returns the transaction carrying the given
// authorization code. Kept for ad-hoc manual reconciliation; the pipeline
// does not call it.
func (r *TransactionRepository) FindByAuthorizationCode(ctx context.Context, authCode string) (*models.ExternalTransaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT transaction_id, "orderNumber", referencs, amount,
		       "autorizationCode", business_id, currency, status
		FROM transactions
		WHERE "autorizationCode" = $1
		LIMIT 1`, authCode)

	txn, err := scanExternalTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapError(domain.ErrorCodeReconcileLookupFailed, "find transaction by auth code", err).
			WithDetail("auth_code", authCode)
	}
	return txn, nil
}

// ListMissing returns successful transactions on the given payment method
// whose ids appear nowhere among the ledger's reconciled transaction ids,
// newest first.
func (r *TransactionRepository) ListMissing(ctx context.Context, paymentMethodID int) ([]models.MissingTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			t.transaction_id,
			t."orderNumber",
			t.referencs,
			t.amount,
			t."autorizationCode",
			t.currency,
			t.status,
			pm.name AS payment_method_name,
			t.email,
			t.bill_to_name,
			t.created_at,
			t.updated_at
		FROM transactions t
		INNER JOIN payment_gateway pg ON t.payment_gateway_id = pg.payment_gateway_id
		INNER JOIN payment_method pm ON pg.payment_method_id = pm.payment_method_id
		WHERE pg.payment_method_id = $1
		AND t.status = 1
		AND t.transaction_id NOT IN (
			SELECT qpay_transac_id
			FROM liquidaciones_sv
			WHERE qpay_transac_id IS NOT NULL
		)
		ORDER BY t.created_at DESC`, paymentMethodID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeDBQueryFailed, "list missing transactions", err)
	}
	defer rows.Close()

	var missing []models.MissingTransaction
	for rows.Next() {
		var (
			m      models.MissingTransaction
			amount pgtype.Numeric
		)
		err := rows.Scan(
			&m.TransactionID, &m.OrderNumber, &m.Reference, &amount,
			&m.AuthorizationCode, &m.Currency, &m.Status,
			&m.PaymentMethodName, &m.Email, &m.BillToName,
			&m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan missing transaction: %w", err)
		}
		if m.Amount, err = pgNumericToDecimal(amount); err != nil {
			return nil, err
		}
		missing = append(missing, m)
	}
	return missing, rows.Err()
}

func scanExternalTransaction(row pgx.Row) (*models.ExternalTransaction, error) {
	var (
		txn        models.ExternalTransaction
		amount     pgtype.Numeric
		businessID pgtype.Text
	)
	err := row.Scan(
		&txn.TransactionID, &txn.OrderNumber, &txn.Reference, &amount,
		&txn.AuthorizationCode, &businessID, &txn.Currency, &txn.Status,
	)
	if err != nil {
		return nil, err
	}
	if txn.Amount, err = pgNumericToDecimal(amount); err != nil {
		return nil, err
	}
	txn.BusinessID = businessID.String
	return &txn, nil
}
