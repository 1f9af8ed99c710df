package models

import "strings"

// Ledger column names, matching the processor's workbook headers. The ledger
// table keeps the upstream names verbatim so the workbook maps 1:1 onto it.
const (
	ColSeqNum        = "SEQ_NUM"
	ColTransactionTS = "FECHA_TRAN"
	ColBatchID       = "lote_id"
	ColBusinessID    = "business_id"
	ColTransactionID = "qpay_transac_id"
)

// LedgerColumns is the full detail-field set of the settlement ledger, in
// insert order. Reconciliation columns (qpay_transac_id, business_id,
// lote_id) are filled later in the record lifecycle and are not part of it.
var LedgerColumns = []string{
	"FECHA_TRAN",
	"HORA_TRAN",
	"FECHA_PROC",
	"FECHA_PAGO",
	"TERMINAL",
	"AFILIADO",
	"NOM_COMERCIO",
	"SEQ_NUM",
	"NUM_AUTORIZ",
	"TIPO_TRAN",
	"MARCA_TARJETA",
	"NUM_TARJETA",
	"MONEDA",
	"MONTO_TRAN",
	"MONTO_AJUS",
	"MONTO_TEXE",
	"SUBTOTAL",
	"IVA_PORC",
	"MONTO_IVA",
	"COMISIONAB",
	"COM_PORC",
	"COM_MONTO",
	"COM_MTOIVA",
	"RETENCION2",
	"RETENIDO",
	"MONTO_DEBI",
	"DEPOSITO",
	"BANCO",
	"CUENTA_DEPOSITO",
	"LOTE_ORIGEN",
	"CAJA",
	"CAJERO",
	"PLAN_PAGO",
	"CUOTAS",
	"TASA_CAMBIO",
	"PAIS_EMISOR",
	"CANAL",
	"OBSERVACIONES",
	"ARCHIVO_ORIGEN",
}

var ledgerColumnSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(LedgerColumns))
	for _, c := range LedgerColumns {
		set[c] = struct{}{}
	}
	return set
}()

// IsLedgerColumn reports whether name is a known detail column. Header
// matching is case-insensitive because exports from the processor have
// shipped with inconsistent casing.
func IsLedgerColumn(name string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := ledgerColumnSet[upper]; ok {
		return upper, true
	}
	return "", false
}

// LedgerRow is one settlement row ready for insertion. Fields holds only
// the columns that carried a real value in the workbook; null sentinels
// have already been stripped. SeqNum is nil when the row arrived without a
// sequence number, in which case dedup is impossible and the row is
// inserted unconditionally.
type LedgerRow struct {
	SeqNum *string
	Fields map[string]string
}

// BatchGroup is one (business id, settlement date) aggregation group read
// from the ledger, carrying the sums the child batch is seeded with.
type BatchGroup struct {
	BusinessID string
	BatchDate  string // YYYY-MM-DD, date-truncated FECHA_TRAN
	Totals     BatchTotals
}
