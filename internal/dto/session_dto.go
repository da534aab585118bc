package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	RegisterID    string          `json:"register_id"    validate:"required,uuid"`
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
}

// CountedAmounts carries the operator's physical count per payment method.
// CASH is mandatory (enforced in the service so it surfaces as a typed
// ValidationError, not a bind failure); the other methods are optional —
// absent means the method was not used this session.
type CountedAmounts struct {
	Cash       *decimal.Decimal `json:"cash"`
	CreditCard *decimal.Decimal `json:"credit_card" validate:"omitempty,min=0"`
	DebitCard  *decimal.Decimal `json:"debit_card"  validate:"omitempty,min=0"`
	Transfer   *decimal.Decimal `json:"transfer"    validate:"omitempty,min=0"`
	Check      *decimal.Decimal `json:"check"       validate:"omitempty,min=0"`
}

type CloseSessionRequest struct {
	SessionID string         `json:"session_id" validate:"required,uuid"`
	Counted   CountedAmounts `json:"counted"`
	Notes     *string        `json:"notes"`
}

type AddMovementRequest struct {
	SessionID   string          `json:"session_id"  validate:"required,uuid"`
	Type        string          `json:"type"        validate:"required"`
	Method      string          `json:"method"      validate:"required"`
	Amount      decimal.Decimal `json:"amount"      validate:"gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MethodTotalResponse struct {
	Method     string          `json:"method"`
	Expected   decimal.Decimal `json:"expected"`
	Counted    decimal.Decimal `json:"counted"`
	Difference decimal.Decimal `json:"difference"`
	Level      string          `json:"level"` // none | minor | major
}

type ReconciliationResponse struct {
	SessionID       string                `json:"session_id"`
	Methods         []MethodTotalResponse `json:"methods"`
	TotalExpected   decimal.Decimal       `json:"total_expected"`
	TotalCounted    decimal.Decimal       `json:"total_counted"`
	TotalDifference decimal.Decimal       `json:"total_difference"`
	HasDiscrepancy  bool                  `json:"has_discrepancy"`
	Status          string                `json:"status"`
}

type SessionResponse struct {
	ID            string                `json:"id"`
	RegisterID    string                `json:"register_id"`
	OperatorID    string                `json:"operator_id"`
	OpeningAmount decimal.Decimal       `json:"opening_amount"`
	Status        string                `json:"status"`
	Notes         *string               `json:"notes"`
	OpenedAt      string                `json:"opened_at"`
	ClosedAt      *string               `json:"closed_at"`
	Expected      map[string]string     `json:"expected,omitempty"` // live balances while OPEN
	Methods       []MethodTotalResponse `json:"methods,omitempty"`  // reconciliation once CLOSED
	TotalExpected *decimal.Decimal      `json:"total_expected,omitempty"`
	TotalCounted  *decimal.Decimal      `json:"total_counted,omitempty"`
	TotalDiff     *decimal.Decimal      `json:"total_difference,omitempty"`
}

type MovementResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID *string         `json:"reference_id"`
	CreatedAt   string          `json:"created_at"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
}

type ArchiveSweepResponse struct {
	Archived int64 `json:"archived"`
}
