package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tillpoint/internal/apperr"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// translateDuplicate converts the store's unique-violation error (the partial
// unique indexes guarding the open-session invariants, register name
// uniqueness, etc.) into a ConflictError with a user-facing message. Any
// other error passes through unchanged.
func translateDuplicate(err error, msg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.KindConflict, err, msg)
	}
	return err
}
