package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a slim reference to a completed sale in the external sales
// subsystem. The ledger does not know about products or line items — it
// only cares about the payment splits that feed the session's movement log.
// Status: "completed" | "refunded"
type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperatorID uuid.UUID       `gorm:"type:uuid;not null"`
	Reference  *string         `gorm:"uniqueIndex"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'completed'"`
	CreatedAt  time.Time

	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

// SalePayment is one payment split of a sale. Each split produces exactly
// one SALE movement in the session ledger, within the sale's own transaction.
type SalePayment struct {
	ID     uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Method PaymentMethod   `gorm:"type:varchar(20);not null"`
	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
