package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tillpoint/internal/model"
)

// RegisterWithStatus pairs a register with its derived open-session flag.
// The flag is computed per read, never stored.
type RegisterWithStatus struct {
	model.CashRegister
	HasActiveSession bool `gorm:"column:has_active_session"`
}

type RegisterRepository interface {
	Create(ctx context.Context, reg *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	List(ctx context.Context, includeInactive bool) ([]RegisterWithStatus, error)
	Update(ctx context.Context, reg *model.CashRegister) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) Create(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).First(&reg, id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) List(ctx context.Context, includeInactive bool) ([]RegisterWithStatus, error) {
	var rows []RegisterWithStatus
	q := r.db.WithContext(ctx).
		Model(&model.CashRegister{}).
		Select(`cash_registers.*,
			EXISTS (
				SELECT 1 FROM cash_sessions s
				WHERE s.register_id = cash_registers.id AND s.status = 'OPEN'
			) AS has_active_session`).
		Order("cash_registers.created_at ASC")
	if !includeInactive {
		q = q.Where("cash_registers.active = true")
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *registerRepo) Update(ctx context.Context, reg *model.CashRegister) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

func (r *registerRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.CashRegister{}).Where("id = ?", id).Update("active", false).Error
}

func (r *registerRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.CashRegister{}).Where("id = ?", id).Update("active", true).Error
}
