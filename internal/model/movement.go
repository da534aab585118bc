package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the closed set of cash-ledger entry types.
// OPENING and CLOSING are written by the session lifecycle itself,
// SALE and REFUND by the sale completion hook. Only INCOME and EXPENSE
// may be entered manually by an operator.
type MovementType string

const (
	MovementOpening MovementType = "OPENING"
	MovementSale    MovementType = "SALE"
	MovementRefund  MovementType = "REFUND"
	MovementIncome  MovementType = "INCOME"
	MovementExpense MovementType = "EXPENSE"
	MovementClosing MovementType = "CLOSING"
)

// Valid reports whether t is one of the six known movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementOpening, MovementSale, MovementRefund, MovementIncome, MovementExpense, MovementClosing:
		return true
	}
	return false
}

// Manual reports whether an operator may write this type directly.
func (t MovementType) Manual() bool {
	return t == MovementIncome || t == MovementExpense
}

// Sign returns the balance effect of the type: +1 increases the expected
// balance, -1 decreases it, 0 for CLOSING (which is a marker, not a delta).
func (t MovementType) Sign() int {
	switch t {
	case MovementOpening, MovementSale, MovementIncome:
		return 1
	case MovementRefund, MovementExpense:
		return -1
	default:
		return 0
	}
}

// PaymentMethod is the closed set of payment rails a movement can settle on.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodDebitCard  PaymentMethod = "DEBIT_CARD"
	MethodTransfer   PaymentMethod = "TRANSFER"
	MethodCheck      PaymentMethod = "CHECK"
)

// AllPaymentMethods returns every method in a stable order.
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodCash, MethodCreditCard, MethodDebitCard, MethodTransfer, MethodCheck}
}

// Valid reports whether m is one of the five known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodTransfer, MethodCheck:
		return true
	}
	return false
}

// CashMovement is an immutable event in the cash register ledger.
// Amounts are always positive; the balance effect is implied by Type.
// Movements are NEVER modified or deleted — corrections create inverse entries.
type CashMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type        MovementType    `gorm:"type:varchar(20);not null"`
	Method      PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	// ReferenceID links to the originating Sale, when there is one.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
}
