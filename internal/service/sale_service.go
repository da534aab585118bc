package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tillpoint/internal/apperr"
	"tillpoint/internal/dto"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"
)

// SaleService is the sale completion hook: the external sales subsystem
// reports completed sales here, and each payment split lands in the session
// ledger as a SALE movement within the sale's own transaction.
type SaleService interface {
	Record(ctx context.Context, operatorID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	Refund(ctx context.Context, id uuid.UUID, reason string) error
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
}

type saleService struct {
	repo     repository.SaleRepository
	sessions repository.SessionRepository
}

func NewSaleService(repo repository.SaleRepository, sessions repository.SessionRepository) SaleService {
	return &saleService{repo: repo, sessions: sessions}
}

func (s *saleService) Record(ctx context.Context, operatorID uuid.UUID, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session_id")
	}

	total := decimal.Zero
	for _, p := range req.Payments {
		if !model.PaymentMethod(p.Method).Valid() {
			return nil, apperr.Validation("unknown payment method %q", p.Method)
		}
		if err := checkAmount(p.Amount, "payment amount", true); err != nil {
			return nil, err
		}
		total = total.Add(p.Amount)
	}

	// Idempotent replay: a sale already recorded under this reference is
	// returned as-is instead of double-posting movements.
	if req.Reference != nil && *req.Reference != "" {
		if existing, err := s.repo.FindByReference(ctx, *req.Reference); err == nil {
			return saleResponse(existing), nil
		}
	}

	sale := &model.Sale{
		SessionID:  sessionID,
		OperatorID: operatorID,
		Reference:  req.Reference,
		Total:      total,
		Status:     "completed",
	}
	for _, p := range req.Payments {
		sale.Payments = append(sale.Payments, model.SalePayment{
			Method: model.PaymentMethod(p.Method),
			Amount: p.Amount,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The session row lock serializes this insert against a concurrent
		// close; a sale never lands silently in a closed session.
		session, err := s.sessions.LockByID(tx, sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("session not found")
		}
		if err != nil {
			return err
		}
		if session.Status != model.SessionOpen {
			return apperr.InvalidState("session is not open")
		}

		if err := s.repo.CreateTx(tx, sale); err != nil {
			return translateDuplicate(err, "a sale with this reference already exists")
		}

		// One SALE movement per payment split.
		for _, p := range sale.Payments {
			mov := &model.CashMovement{
				SessionID:   sessionID,
				Type:        model.MovementSale,
				Method:      p.Method,
				Amount:      p.Amount,
				Description: saleDescription(sale),
				ReferenceID: &sale.ID,
			}
			if err := s.sessions.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return saleResponse(sale), nil
}

func (s *saleService) Refund(ctx context.Context, id uuid.UUID, reason string) error {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.NotFound("sale not found")
	}
	if sale.Status == "refunded" {
		return apperr.InvalidState("sale is already refunded")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.sessions.LockByID(tx, sale.SessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionOpen {
			return apperr.InvalidState("session is not open")
		}

		// Inverse REFUND movement per original payment split.
		for _, p := range sale.Payments {
			mov := &model.CashMovement{
				SessionID:   sale.SessionID,
				Type:        model.MovementRefund,
				Method:      p.Method,
				Amount:      p.Amount,
				Description: fmt.Sprintf("Refund %s — %s", saleDescription(sale), reason),
				ReferenceID: &sale.ID,
			}
			if err := s.sessions.CreateMovementTx(tx, mov); err != nil {
				return err
			}
		}
		return s.repo.UpdateStatusTx(tx, id, "refunded")
	})
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("sale not found")
	}
	return saleResponse(sale), nil
}

func saleDescription(sale *model.Sale) string {
	if sale.Reference != nil && *sale.Reference != "" {
		return "Sale " + *sale.Reference
	}
	return "Sale " + sale.ID.String()
}

func saleResponse(sale *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:        sale.ID.String(),
		SessionID: sale.SessionID.String(),
		Reference: sale.Reference,
		Total:     sale.Total,
		Status:    sale.Status,
		CreatedAt: sale.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, p := range sale.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentResponse{
			Method: string(p.Method),
			Amount: p.Amount,
		})
	}
	return resp
}
