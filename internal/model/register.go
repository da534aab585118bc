package model

import (
	"time"

	"github.com/google/uuid"
)

// CashRegister is a physical point-of-sale till. Registers are never
// hard-deleted: deletion is a soft deactivation, and is refused while the
// register has an OPEN session.
type CashRegister struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null;uniqueIndex"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
