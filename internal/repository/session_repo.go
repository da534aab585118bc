package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tillpoint/internal/model"
)

// SessionRepository is the ledger store for sessions and their movement log.
// Movements are append-only: the interface deliberately has no update or
// delete for CashMovement.
type SessionRepository interface {
	// DB exposes the handle for transaction creation in the service layer.
	DB() *gorm.DB

	CreateSessionTx(tx *gorm.DB, s *model.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	// FindOpenByRegister and FindOpenByOperator return (nil, nil) when no
	// open session exists.
	FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error)
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error)
	// LockByID loads a session FOR UPDATE so a close observes a stable
	// snapshot and concurrent closes serialize.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error

	CreateMovement(ctx context.Context, m *model.CashMovement) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error
	CreateMethodTotalsTx(tx *gorm.DB, totals []model.SessionMethodTotal) error
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
	ListMovementsTx(tx *gorm.DB, sessionID uuid.UUID) ([]model.CashMovement, error)

	ListSessions(ctx context.Context, status model.SessionStatus, page, limit int) ([]model.CashSession, int64, error)
	ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) DB() *gorm.DB { return r.db }

func (r *sessionRepo) CreateSessionTx(tx *gorm.DB, s *model.CashSession) error {
	return tx.Create(s).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).Preload("MethodTotals").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) FindOpenByRegister(ctx context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	return r.findOpen(ctx, "register_id = ?", registerID)
}

func (r *sessionRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	return r.findOpen(ctx, "operator_id = ?", operatorID)
}

func (r *sessionRepo) findOpen(ctx context.Context, cond string, arg uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Where("status = ?", model.SessionOpen).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) UpdateSessionTx(tx *gorm.DB, s *model.CashSession) error {
	return tx.Save(s).Error
}

func (r *sessionRepo) CreateMovement(ctx context.Context, m *model.CashMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *sessionRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *sessionRepo) CreateMethodTotalsTx(tx *gorm.DB, totals []model.SessionMethodTotal) error {
	if len(totals) == 0 {
		return nil
	}
	return tx.Create(&totals).Error
}

func (r *sessionRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	return listMovements(r.db.WithContext(ctx), sessionID)
}

func (r *sessionRepo) ListMovementsTx(tx *gorm.DB, sessionID uuid.UUID) ([]model.CashMovement, error) {
	return listMovements(tx, sessionID)
}

func listMovements(db *gorm.DB, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&movs).Error
	return movs, err
}

func (r *sessionRepo) ListSessions(ctx context.Context, status model.SessionStatus, page, limit int) ([]model.CashSession, int64, error) {
	var sessions []model.CashSession
	var total int64
	offset := (page - 1) * limit

	q := r.db.WithContext(ctx).Model(&model.CashSession{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("MethodTotals").
		Order("opened_at DESC").
		Offset(offset).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}

func (r *sessionRepo) ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CashSession{}).
		Where("status = ? AND closed_at < ?", model.SessionClosed, cutoff).
		Update("status", model.SessionArchived)
	return res.RowsAffected, res.Error
}
