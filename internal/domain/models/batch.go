package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus represents the processing state of a settlement batch
type BatchStatus string

const (
	BatchPending   BatchStatus = "pendiente"
	BatchProcessed BatchStatus = "procesado"
)

// BatchTotals holds the aggregated monetary sums of one batch. Every sum is
// exact decimal; a null SQL aggregate is coalesced to zero on read. VATRate
// is the average IVA_PORC across contributing rows and stays nil when no
// row carried a value.
type BatchTotals struct {
	TransactionCount int64
	Amount           decimal.Decimal // MONTO_TRAN
	Adjustments      decimal.Decimal // MONTO_AJUS
	TaxExempt        decimal.Decimal // MONTO_TEXE
	Subtotal         decimal.Decimal // SUBTOTAL
	VAT              decimal.Decimal // MONTO_IVA
	CommissionBase   decimal.Decimal // COMISIONAB
	CommissionAmount decimal.Decimal // COM_MONTO
	CommissionVAT    decimal.Decimal // COM_MTOIVA
	Retention        decimal.Decimal // RETENCION2
	Retained         decimal.Decimal // RETENIDO
	Debited          decimal.Decimal // MONTO_DEBI
	Deposit          decimal.Decimal // DEPOSITO
	VATRate          *decimal.Decimal
}

// MerchantBatch is the child batch: aggregated totals for one merchant on
// one settlement date. Exactly one parent DayBatch owns it.
type MerchantBatch struct {
	ID         int64
	BusinessID string
	DayBatchID int64
	BatchDate  string // YYYY-MM-DD
	Totals     BatchTotals
	Status     BatchStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DayBatch is the parent batch: the roll-up across all merchant batches
// sharing a settlement date. Its totals are recomputed from its children
// after every aggregation pass, never maintained incrementally.
type DayBatch struct {
	ID            int64
	BatchDate     string // YYYY-MM-DD
	BusinessID    string // empty under the legacy date-only schema
	MerchantCount int64
	Totals        BatchTotals
	Status        BatchStatus
}

// SchemaInfo is the schema variant descriptor, resolved once at startup
// instead of re-introspected per row. The canonical schema keys the parent
// batch by (date, business id); legacy deployments key by date alone and
// lack the business id column on the ledger.
type SchemaInfo struct {
	ParentHasBusinessID bool
	LedgerHasBusinessID bool
}
