package service

import (
	"context"

	"github.com/google/uuid"

	"tillpoint/internal/apperr"
	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"
)

type RegisterService interface {
	Create(ctx context.Context, req dto.CreateRegisterRequest) (*dto.RegisterResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.RegisterResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateRegisterRequest) (*dto.RegisterResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type registerService struct {
	repo     repository.RegisterRepository
	sessions repository.SessionRepository
}

func NewRegisterService(repo repository.RegisterRepository, sessions repository.SessionRepository) RegisterService {
	return &registerService{repo: repo, sessions: sessions}
}

func (s *registerService) Create(ctx context.Context, req dto.CreateRegisterRequest) (*dto.RegisterResponse, error) {
	reg := &model.CashRegister{Name: req.Name, Active: true}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, translateDuplicate(err, "a register with this name already exists")
	}
	return &dto.RegisterResponse{ID: reg.ID.String(), Name: reg.Name, Active: reg.Active}, nil
}

func (s *registerService) List(ctx context.Context, includeInactive bool) ([]dto.RegisterResponse, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RegisterResponse, len(rows))
	for i, row := range rows {
		resp[i] = dto.RegisterResponse{
			ID:               row.ID.String(),
			Name:             row.Name,
			Active:           row.Active,
			HasActiveSession: row.HasActiveSession,
		}
	}
	return resp, nil
}

func (s *registerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateRegisterRequest) (*dto.RegisterResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("register not found")
	}
	reg.Name = req.Name
	if err := s.repo.Update(ctx, reg); err != nil {
		return nil, translateDuplicate(err, "a register with this name already exists")
	}
	return &dto.RegisterResponse{ID: reg.ID.String(), Name: reg.Name, Active: reg.Active}, nil
}

// Deactivate soft-deletes a register. Registers with an OPEN session cannot
// be deactivated — the session has to be closed first.
func (s *registerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperr.NotFound("register not found")
	}
	open, err := s.sessions.FindOpenByRegister(ctx, id)
	if err != nil {
		return err
	}
	if open != nil {
		return apperr.Conflict("register has an open session — close it first")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *registerService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperr.NotFound("register not found")
	}
	return s.repo.Reactivate(ctx, id)
}
