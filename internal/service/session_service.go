package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tillpoint/internal/apperr"
	"tillpoint/internal/dto"
	"tillpoint/internal/ledger"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"
	"tillpoint/internal/worker"
)

// maxMovementAmount is the hard ceiling for a single manual movement.
var maxMovementAmount = decimal.RequireFromString("99999999.99")

type SessionService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	Close(ctx context.Context, operatorID uuid.UUID, isAdmin bool, req dto.CloseSessionRequest) (*dto.ReconciliationResponse, error)
	AddMovement(ctx context.Context, req dto.AddMovementRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error)
	// GetActive returns (nil, nil) when the operator has no open session.
	GetActive(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error)
	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]dto.MovementResponse, error)
	History(ctx context.Context, status string, page, limit int) (*dto.SessionListResponse, error)
	// ArchiveClosedBefore bulk-marks CLOSED sessions older than cutoff as
	// ARCHIVED. Used by the archive cron and the admin sweep endpoint.
	ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionService struct {
	repo       repository.SessionRepository
	registers  repository.RegisterRepository
	thresholds ledger.Thresholds
	dispatcher *worker.Dispatcher // nil disables alerting (unit test mode)
}

func NewSessionService(
	repo repository.SessionRepository,
	registers repository.RegisterRepository,
	thresholds ledger.Thresholds,
	dispatcher *worker.Dispatcher,
) SessionService {
	return &sessionService{
		repo:       repo,
		registers:  registers,
		thresholds: thresholds,
		dispatcher: dispatcher,
	}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *sessionService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	registerID, err := uuid.Parse(req.RegisterID)
	if err != nil {
		return nil, apperr.Validation("invalid register_id")
	}
	if err := checkAmount(req.OpeningAmount, "opening amount", false); err != nil {
		return nil, err
	}

	reg, err := s.registers.FindByID(ctx, registerID)
	if err != nil {
		return nil, apperr.NotFound("register not found")
	}
	if !reg.Active {
		return nil, apperr.NotFound("register is inactive")
	}

	// Friendly pre-checks. The partial unique indexes on (register_id) and
	// (operator_id) WHERE status='OPEN' close the remaining race window.
	if open, err := s.repo.FindOpenByRegister(ctx, registerID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, apperr.Conflict("register already has an open session")
	}
	if open, err := s.repo.FindOpenByOperator(ctx, operatorID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, apperr.Conflict("operator already has an open session")
	}

	session := &model.CashSession{
		RegisterID:    registerID,
		OperatorID:    operatorID,
		OpeningAmount: req.OpeningAmount,
		Status:        model.SessionOpen,
		OpenedAt:      time.Now(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateSessionTx(tx, session); err != nil {
			return translateDuplicate(err, "register or operator already has an open session")
		}
		opening := &model.CashMovement{
			SessionID:   session.ID,
			Type:        model.MovementOpening,
			Method:      model.MethodCash,
			Amount:      req.OpeningAmount,
			Description: "Opening float",
		}
		return s.repo.CreateMovementTx(tx, opening)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("register_id", registerID.String()).
		Str("operator_id", operatorID.String()).
		Msg("cash session opened")

	return s.buildSessionResponse(ctx, session)
}

// ── Close ─────────────────────────────────────────────────────────────────────
// Atomic unit: read movements + reconcile + persist closed session + write
// CLOSING movements, all within one transaction holding the session row lock.
// A concurrent sale either committed before the lock (and is counted) or
// blocks on the lock and then fails its own open-session check.

func (s *sessionService) Close(ctx context.Context, operatorID uuid.UUID, isAdmin bool, req dto.CloseSessionRequest) (*dto.ReconciliationResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apperr.Validation("invalid session_id")
	}
	counted, err := countedAmounts(req.Counted)
	if err != nil {
		return nil, err
	}

	var report ledger.Report
	var session *model.CashSession

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err = s.repo.LockByID(tx, sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("session not found")
		}
		if err != nil {
			return err
		}
		if session.Status != model.SessionOpen {
			return apperr.InvalidState("session is not open")
		}
		if session.OperatorID != operatorID && !isAdmin {
			return apperr.Conflict("session belongs to another operator")
		}

		movements, err := s.repo.ListMovementsTx(tx, sessionID)
		if err != nil {
			return err
		}
		report = ledger.Reconcile(movements, counted, s.thresholds)

		now := time.Now()
		session.Status = model.SessionClosed
		session.ClosedAt = &now
		session.Notes = req.Notes
		totalExpected, totalCounted, totalDiff := report.TotalExpected, report.TotalCounted, report.TotalDifference
		session.TotalExpected = &totalExpected
		session.TotalCounted = &totalCounted
		session.TotalDifference = &totalDiff
		session.HasDiscrepancy = report.HasDiscrepancy

		if err := s.repo.UpdateSessionTx(tx, session); err != nil {
			return err
		}

		var totals []model.SessionMethodTotal
		for _, m := range report.Methods {
			if !m.Used {
				continue
			}
			totals = append(totals, model.SessionMethodTotal{
				SessionID:  sessionID,
				Method:     m.Method,
				Expected:   m.Expected,
				Counted:    m.Counted,
				Difference: m.Difference,
				Level:      m.Level,
			})
		}
		if err := s.repo.CreateMethodTotalsTx(tx, totals); err != nil {
			return err
		}

		// One CLOSING movement per method with a non-zero counted amount.
		for _, m := range report.Methods {
			if m.Counted.IsZero() {
				continue
			}
			closing := &model.CashMovement{
				SessionID:   sessionID,
				Type:        model.MovementClosing,
				Method:      m.Method,
				Amount:      m.Counted,
				Description: "Closing count",
			}
			if err := s.repo.CreateMovementTx(tx, closing); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Str("difference", report.TotalDifference.String()).
		Str("level", report.MaxLevel()).
		Msg("cash session closed")

	// Fire & forget: a major discrepancy notifies the supervisor by mail.
	if s.dispatcher != nil && report.MaxLevel() == ledger.LevelMajor {
		payload := worker.DiscrepancyAlertPayload{
			SessionID:       sessionID.String(),
			RegisterID:      session.RegisterID.String(),
			TotalDifference: report.TotalDifference.String(),
			Level:           report.MaxLevel(),
			ClosedAt:        session.ClosedAt.UTC().Format(time.RFC3339),
		}
		if err := s.dispatcher.EnqueueDiscrepancyAlert(ctx, payload); err != nil {
			log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to enqueue discrepancy alert")
		}
	}

	return reconciliationResponse(sessionID, report), nil
}

// ── AddMovement ───────────────────────────────────────────────────────────────
// Manual INCOME / EXPENSE only. The session row lock serializes the insert
// against a concurrent close: no movement can slip in after the close
// transaction has read the log.

func (s *sessionService) AddMovement(ctx context.Context, req dto.AddMovementRequest) error {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return apperr.Validation("invalid session_id")
	}

	movType := model.MovementType(req.Type)
	if !movType.Valid() || !movType.Manual() {
		return apperr.Validation("only INCOME and EXPENSE movements can be entered manually")
	}
	method := model.PaymentMethod(req.Method)
	if !method.Valid() {
		return apperr.Validation("unknown payment method %q", req.Method)
	}
	if err := checkAmount(req.Amount, "amount", true); err != nil {
		return err
	}
	if req.Amount.GreaterThan(maxMovementAmount) {
		return apperr.Validation("amount exceeds the maximum of %s", maxMovementAmount.String())
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		session, err := s.repo.LockByID(tx, sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("session not found")
		}
		if err != nil {
			return err
		}
		if session.Status != model.SessionOpen {
			return apperr.InvalidState("session is not open")
		}

		return s.repo.CreateMovementTx(tx, &model.CashMovement{
			SessionID:   sessionID,
			Type:        movType,
			Method:      method,
			Amount:      req.Amount,
			Description: req.Description,
		})
	})
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *sessionService) GetByID(ctx context.Context, id uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("session not found")
	}
	return s.buildSessionResponse(ctx, session)
}

func (s *sessionService) GetActive(ctx context.Context, operatorID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByOperator(ctx, operatorID)
	if err != nil || session == nil {
		return nil, err
	}
	return s.buildSessionResponse(ctx, session)
}

func (s *sessionService) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]dto.MovementResponse, error) {
	if _, err := s.repo.FindByID(ctx, sessionID); err != nil {
		return nil, apperr.NotFound("session not found")
	}
	movements, err := s.repo.ListMovements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		resp[i] = movementResponse(m)
	}
	return resp, nil
}

func (s *sessionService) History(ctx context.Context, status string, page, limit int) (*dto.SessionListResponse, error) {
	var st model.SessionStatus
	if status != "" && status != "all" {
		st = model.SessionStatus(status)
		switch st {
		case model.SessionOpen, model.SessionClosed, model.SessionArchived:
		default:
			return nil, apperr.Validation("unknown session status %q", status)
		}
	}

	sessions, total, err := s.repo.ListSessions(ctx, st, page, limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.SessionListResponse{Page: page, Limit: limit, Total: total}
	for i := range sessions {
		item, err := s.buildSessionResponse(ctx, &sessions[i])
		if err != nil {
			return nil, err
		}
		resp.Data = append(resp.Data, *item)
	}
	return resp, nil
}

func (s *sessionService) ArchiveClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.repo.ArchiveClosedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("sessions", n).Time("cutoff", cutoff).Msg("archived closed sessions")
	}
	return n, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// checkAmount validates sign and 2-decimal quantization.
func checkAmount(d decimal.Decimal, field string, strictPositive bool) error {
	if strictPositive && !d.IsPositive() {
		return apperr.Validation("%s must be positive", field)
	}
	if !strictPositive && d.IsNegative() {
		return apperr.Validation("%s cannot be negative", field)
	}
	if !d.Equal(d.Round(2)) {
		return apperr.Validation("%s must have at most 2 decimal places", field)
	}
	return nil
}

// countedAmounts turns the close request into the calculator's input map.
// CASH is mandatory; other methods count only when present.
func countedAmounts(c dto.CountedAmounts) (map[model.PaymentMethod]decimal.Decimal, error) {
	if c.Cash == nil {
		return nil, apperr.Validation("counted CASH amount is required")
	}
	fields := []struct {
		method model.PaymentMethod
		value  *decimal.Decimal
	}{
		{model.MethodCash, c.Cash},
		{model.MethodCreditCard, c.CreditCard},
		{model.MethodDebitCard, c.DebitCard},
		{model.MethodTransfer, c.Transfer},
		{model.MethodCheck, c.Check},
	}

	counted := make(map[model.PaymentMethod]decimal.Decimal)
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := checkAmount(*f.value, "counted "+string(f.method), false); err != nil {
			return nil, err
		}
		counted[f.method] = *f.value
	}
	return counted, nil
}

func reconciliationResponse(sessionID uuid.UUID, report ledger.Report) *dto.ReconciliationResponse {
	resp := &dto.ReconciliationResponse{
		SessionID:       sessionID.String(),
		TotalExpected:   report.TotalExpected,
		TotalCounted:    report.TotalCounted,
		TotalDifference: report.TotalDifference,
		HasDiscrepancy:  report.HasDiscrepancy,
		Status:          string(model.SessionClosed),
	}
	for _, m := range report.Methods {
		if !m.Used {
			continue
		}
		resp.Methods = append(resp.Methods, dto.MethodTotalResponse{
			Method:     string(m.Method),
			Expected:   m.Expected,
			Counted:    m.Counted,
			Difference: m.Difference,
			Level:      m.Level,
		})
	}
	return resp
}

func movementResponse(m model.CashMovement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:          m.ID.String(),
		SessionID:   m.SessionID.String(),
		Type:        string(m.Type),
		Method:      string(m.Method),
		Amount:      m.Amount,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.ReferenceID != nil {
		ref := m.ReferenceID.String()
		resp.ReferenceID = &ref
	}
	return resp
}

func (s *sessionService) buildSessionResponse(ctx context.Context, session *model.CashSession) (*dto.SessionResponse, error) {
	resp := &dto.SessionResponse{
		ID:            session.ID.String(),
		RegisterID:    session.RegisterID.String(),
		OperatorID:    session.OperatorID.String(),
		OpeningAmount: session.OpeningAmount,
		Status:        string(session.Status),
		Notes:         session.Notes,
		OpenedAt:      session.OpenedAt.UTC().Format(time.RFC3339),
	}
	if session.ClosedAt != nil {
		t := session.ClosedAt.UTC().Format(time.RFC3339)
		resp.ClosedAt = &t
	}

	if session.Status == model.SessionOpen {
		// Live balances: derived from the movement log on every read,
		// never cached on the session row.
		movements, err := s.repo.ListMovements(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		expected := ledger.ExpectedByMethod(movements)
		resp.Expected = make(map[string]string, len(expected))
		for method, amount := range expected {
			resp.Expected[string(method)] = amount.StringFixed(2)
		}
		return resp, nil
	}

	for _, t := range session.MethodTotals {
		resp.Methods = append(resp.Methods, dto.MethodTotalResponse{
			Method:     string(t.Method),
			Expected:   t.Expected,
			Counted:    t.Counted,
			Difference: t.Difference,
			Level:      t.Level,
		})
	}
	resp.TotalExpected = session.TotalExpected
	resp.TotalCounted = session.TotalCounted
	resp.TotalDiff = session.TotalDifference
	return resp, nil
}
