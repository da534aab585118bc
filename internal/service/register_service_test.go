package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/apperr"
	"tillpoint/internal/dto"
	"tillpoint/internal/ledger"
)

func newTestRegisterService() (RegisterService, SessionService, *fakeRegisterRepo) {
	sessions := newFakeSessionRepo()
	registers := newFakeRegisterRepo(sessions)
	registerSvc := NewRegisterService(registers, sessions)
	sessionSvc := NewSessionService(sessions, registers, ledger.DefaultThresholds(), nil)
	return registerSvc, sessionSvc, registers
}

func TestCreateRegister(t *testing.T) {
	svc, _, _ := newTestRegisterService()

	resp, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Name: "Front desk"})
	require.NoError(t, err)
	assert.Equal(t, "Front desk", resp.Name)
	assert.True(t, resp.Active)
}

func TestCreateRegisterDuplicateName(t *testing.T) {
	svc, _, _ := newTestRegisterService()

	_, err := svc.Create(context.Background(), dto.CreateRegisterRequest{Name: "Front desk"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateRegisterRequest{Name: "Front desk"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestListRegistersActiveSessionFlag(t *testing.T) {
	registerSvc, sessionSvc, registers := newTestRegisterService()
	busyID := registers.addRegister("Busy till")
	registers.addRegister("Idle till")

	_, err := sessionSvc.Open(context.Background(), uuid.New(), dto.OpenSessionRequest{
		RegisterID: busyID.String(), OpeningAmount: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	rows, err := registerSvc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	flags := map[string]bool{}
	for _, row := range rows {
		flags[row.Name] = row.HasActiveSession
	}
	assert.True(t, flags["Busy till"])
	assert.False(t, flags["Idle till"])
}

func TestDeactivateRegisterWithOpenSession(t *testing.T) {
	registerSvc, sessionSvc, registers := newTestRegisterService()
	registerID := registers.addRegister("Till 1")
	operatorID := uuid.New()

	openResp, err := sessionSvc.Open(context.Background(), operatorID, dto.OpenSessionRequest{
		RegisterID: registerID.String(), OpeningAmount: decimal.NewFromFloat(100),
	})
	require.NoError(t, err)

	// Deactivation is refused while the session is open…
	err = registerSvc.Deactivate(context.Background(), registerID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// …and succeeds once the session is closed.
	cash := decimal.NewFromFloat(100)
	_, err = sessionSvc.Close(context.Background(), operatorID, false, dto.CloseSessionRequest{
		SessionID: openResp.ID, Counted: dto.CountedAmounts{Cash: &cash},
	})
	require.NoError(t, err)

	require.NoError(t, registerSvc.Deactivate(context.Background(), registerID))
	assert.False(t, registers.registers[registerID].Active)
}

func TestDeactivateUnknownRegister(t *testing.T) {
	svc, _, _ := newTestRegisterService()
	err := svc.Deactivate(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestReactivateRegister(t *testing.T) {
	registerSvc, _, registers := newTestRegisterService()
	registerID := registers.addRegister("Till 1")

	require.NoError(t, registerSvc.Deactivate(context.Background(), registerID))
	require.NoError(t, registerSvc.Reactivate(context.Background(), registerID))
	assert.True(t, registers.registers[registerID].Active)
}
