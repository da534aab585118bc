package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SalePaymentRequest struct {
	Method string          `json:"method" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

// RecordSaleRequest is the sale completion hook: the sales subsystem reports
// a completed sale with its payment splits, and the ledger appends one SALE
// movement per split inside the same transaction.
type RecordSaleRequest struct {
	SessionID string               `json:"session_id" validate:"required,uuid"`
	Reference *string              `json:"reference"  validate:"omitempty,max=100"`
	Payments  []SalePaymentRequest `json:"payments"   validate:"required,min=1,dive"`
}

type RefundSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SalePaymentResponse struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type SaleResponse struct {
	ID        string                `json:"id"`
	SessionID string                `json:"session_id"`
	Reference *string               `json:"reference"`
	Total     decimal.Decimal       `json:"total"`
	Status    string                `json:"status"`
	Payments  []SalePaymentResponse `json:"payments"`
	CreatedAt string                `json:"created_at"`
}
