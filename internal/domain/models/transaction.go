package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExternalTransaction is the projection of the gateway's transactions
// table, the external system of record. It is read, never written, by this
// pipeline. Reference carries the value matched against the ledger's
// SEQ_NUM.
type ExternalTransaction struct {
	TransactionID     string
	OrderNumber       string
	Reference         string
	Amount            decimal.Decimal
	AuthorizationCode string
	BusinessID        string
	Currency          string
	Status            int
	PaymentMethodID   int
}

// MissingTransaction is one audit hit: a successful gateway transaction on
// the settlement payment method that never made it into the ledger.
type MissingTransaction struct {
	TransactionID     string
	OrderNumber       string
	Reference         string
	Amount            decimal.Decimal
	AuthorizationCode string
	Currency          string
	Status            int
	PaymentMethodName string
	Email             string
	BillToName        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
