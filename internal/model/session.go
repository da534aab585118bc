package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus is the session lifecycle state.
// OPEN → CLOSED is irreversible; CLOSED → ARCHIVED is terminal.
type SessionStatus string

const (
	SessionOpen     SessionStatus = "OPEN"
	SessionClosed   SessionStatus = "CLOSED"
	SessionArchived SessionStatus = "ARCHIVED"
)

// CashSession is one continuous working period of a register, owned by one
// operator. At most one OPEN session exists per register and per operator;
// both invariants are backed by partial unique indexes (see infra.NewDatabase).
type CashSession struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RegisterID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OpeningAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        SessionStatus   `gorm:"type:varchar(20);not null;default:'OPEN'"`
	Notes         *string
	OpenedAt      time.Time
	ClosedAt      *time.Time

	// Aggregate close-time totals across all methods. Per-method figures
	// live in MethodTotals; these are denormalized sums written at close.
	TotalExpected   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalCounted    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalDifference *decimal.Decimal `gorm:"type:decimal(12,2)"`
	HasDiscrepancy  bool             `gorm:"not null;default:false"`

	Movements    []CashMovement       `gorm:"foreignKey:SessionID"`
	MethodTotals []SessionMethodTotal `gorm:"foreignKey:SessionID"`
}

// SessionMethodTotal is the per-payment-method reconciliation outcome of a
// closed session: what the ledger expected, what the operator counted, and
// the classified difference. Written exactly once, by close.
type SessionMethodTotal struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method     PaymentMethod   `gorm:"type:varchar(20);not null"`
	Expected   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Counted    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Difference decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Level: "none" | "minor" | "major"
	Level     string `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time
}
