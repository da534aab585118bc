package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tillpoint/internal/model"
	"tillpoint/internal/repository"
)

// ── In-memory SessionRepository ──────────────────────────────────────────────
// DB() returns nil so runTx executes the callback directly, without a store.

type fakeSessionRepo struct {
	sessions     map[uuid.UUID]*model.CashSession
	movements    []model.CashMovement
	methodTotals []model.SessionMethodTotal
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*model.CashSession)}
}

func (r *fakeSessionRepo) DB() *gorm.DB { return nil }

func (r *fakeSessionRepo) CreateSessionTx(_ *gorm.DB, s *model.CashSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	s.MethodTotals = nil
	for _, t := range r.methodTotals {
		if t.SessionID == id {
			s.MethodTotals = append(s.MethodTotals, t)
		}
	}
	return s, nil
}

func (r *fakeSessionRepo) FindOpenByRegister(_ context.Context, registerID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.RegisterID == registerID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindOpenByOperator(_ context.Context, operatorID uuid.UUID) (*model.CashSession, error) {
	for _, s := range r.sessions {
		if s.OperatorID == operatorID && s.Status == model.SessionOpen {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) LockByID(_ *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *fakeSessionRepo) UpdateSessionTx(_ *gorm.DB, s *model.CashSession) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) CreateMovement(_ context.Context, m *model.CashMovement) error {
	return r.CreateMovementTx(nil, m)
}

func (r *fakeSessionRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeSessionRepo) CreateMethodTotalsTx(_ *gorm.DB, totals []model.SessionMethodTotal) error {
	r.methodTotals = append(r.methodTotals, totals...)
	return nil
}

func (r *fakeSessionRepo) ListMovements(_ context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	return r.ListMovementsTx(nil, sessionID)
}

func (r *fakeSessionRepo) ListMovementsTx(_ *gorm.DB, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var result []model.CashMovement
	for _, m := range r.movements {
		if m.SessionID == sessionID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeSessionRepo) ListSessions(_ context.Context, status model.SessionStatus, page, limit int) ([]model.CashSession, int64, error) {
	var all []model.CashSession
	for _, s := range r.sessions {
		if status == "" || s.Status == status {
			all = append(all, *s)
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeSessionRepo) ArchiveClosedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, s := range r.sessions {
		if s.Status == model.SessionClosed && s.ClosedAt != nil && s.ClosedAt.Before(cutoff) {
			s.Status = model.SessionArchived
			n++
		}
	}
	return n, nil
}

var _ repository.SessionRepository = (*fakeSessionRepo)(nil)

// ── In-memory RegisterRepository ─────────────────────────────────────────────

type fakeRegisterRepo struct {
	registers map[uuid.UUID]*model.CashRegister
	sessions  *fakeSessionRepo // for the derived has_active_session flag
}

func newFakeRegisterRepo(sessions *fakeSessionRepo) *fakeRegisterRepo {
	return &fakeRegisterRepo{
		registers: make(map[uuid.UUID]*model.CashRegister),
		sessions:  sessions,
	}
}

// addRegister seeds an active register and returns its id.
func (r *fakeRegisterRepo) addRegister(name string) uuid.UUID {
	reg := &model.CashRegister{ID: uuid.New(), Name: name, Active: true}
	r.registers[reg.ID] = reg
	return reg.ID
}

func (r *fakeRegisterRepo) Create(_ context.Context, reg *model.CashRegister) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	for _, existing := range r.registers {
		if existing.Name == reg.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	r.registers[reg.ID] = reg
	return nil
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.registers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return reg, nil
}

func (r *fakeRegisterRepo) List(_ context.Context, includeInactive bool) ([]repository.RegisterWithStatus, error) {
	var rows []repository.RegisterWithStatus
	for _, reg := range r.registers {
		if !includeInactive && !reg.Active {
			continue
		}
		row := repository.RegisterWithStatus{CashRegister: *reg}
		if r.sessions != nil {
			if open, _ := r.sessions.FindOpenByRegister(context.Background(), reg.ID); open != nil {
				row.HasActiveSession = true
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *fakeRegisterRepo) Update(_ context.Context, reg *model.CashRegister) error {
	r.registers[reg.ID] = reg
	return nil
}

func (r *fakeRegisterRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	reg, ok := r.registers[id]
	if !ok {
		return errors.New("not found")
	}
	reg.Active = false
	return nil
}

func (r *fakeRegisterRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	reg, ok := r.registers[id]
	if !ok {
		return errors.New("not found")
	}
	reg.Active = true
	return nil
}

var _ repository.RegisterRepository = (*fakeRegisterRepo)(nil)

// ── In-memory SaleRepository ─────────────────────────────────────────────────

type fakeSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *fakeSaleRepo) DB() *gorm.DB { return nil }

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, sale *model.Sale) error {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.Reference != nil && *sale.Reference != "" {
		for _, existing := range r.sales {
			if existing.Reference != nil && *existing.Reference == *sale.Reference {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	sale.CreatedAt = time.Now()
	r.sales[sale.ID] = sale
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sale, nil
}

func (r *fakeSaleRepo) FindByReference(_ context.Context, reference string) (*model.Sale, error) {
	for _, sale := range r.sales {
		if sale.Reference != nil && *sale.Reference == reference {
			return sale, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	sale, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sale.Status = status
	return nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)
