package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/model"
)

func mov(typ model.MovementType, method model.PaymentMethod, amount string) model.CashMovement {
	return model.CashMovement{
		ID:     uuid.New(),
		Type:   typ,
		Method: method,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestExpectedByMethod(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
		mov(model.MovementSale, model.MethodCash, "50.00"),
		mov(model.MovementSale, model.MethodCreditCard, "80.00"),
		mov(model.MovementExpense, model.MethodCash, "20.00"),
		mov(model.MovementRefund, model.MethodCreditCard, "30.00"),
		mov(model.MovementIncome, model.MethodCash, "5.00"),
	}

	expected := ExpectedByMethod(movements)
	assert.Equal(t, "135", expected[model.MethodCash].String())
	assert.Equal(t, "50", expected[model.MethodCreditCard].String())
}

func TestExpectedByMethodIgnoresClosing(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
		mov(model.MovementClosing, model.MethodCash, "100.00"),
	}
	expected := ExpectedByMethod(movements)
	assert.Equal(t, "100", expected[model.MethodCash].String())
}

func TestReconcileExactMatch(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
		mov(model.MovementSale, model.MethodCash, "50.00"),
		mov(model.MovementExpense, model.MethodCash, "20.00"),
	}
	counted := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash: decimal.RequireFromString("130.00"),
	}

	report := Reconcile(movements, counted, DefaultThresholds())
	assert.False(t, report.HasDiscrepancy)
	assert.Equal(t, "130", report.TotalExpected.String())
	assert.Equal(t, "0", report.TotalDifference.String())
	assert.Equal(t, LevelNone, report.MaxLevel())
}

func TestReconcileShortage(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "130.00"),
	}
	counted := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash: decimal.RequireFromString("125.00"),
	}

	report := Reconcile(movements, counted, DefaultThresholds())
	assert.True(t, report.HasDiscrepancy)
	assert.Equal(t, "-5", report.TotalDifference.String())
	assert.Equal(t, LevelMinor, report.MaxLevel())
}

func TestReconcileOverage(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
	}
	counted := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash: decimal.RequireFromString("112.50"),
	}

	report := Reconcile(movements, counted, DefaultThresholds())
	assert.True(t, report.HasDiscrepancy)
	assert.Equal(t, "12.5", report.TotalDifference.String())
	assert.Equal(t, LevelMajor, report.MaxLevel())
}

func TestReconcileUnusedMethods(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
	}
	counted := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash: decimal.RequireFromString("100.00"),
	}

	report := Reconcile(movements, counted, DefaultThresholds())
	require.Len(t, report.Methods, len(model.AllPaymentMethods()))
	for _, m := range report.Methods {
		if m.Method == model.MethodCash {
			assert.True(t, m.Used)
			continue
		}
		// Untouched methods reconcile trivially as 0/0.
		assert.False(t, m.Used, m.Method)
		assert.True(t, m.Expected.IsZero())
		assert.True(t, m.Counted.IsZero())
		assert.Equal(t, LevelNone, m.Level)
	}
}

func TestReconcileNonCashDifference(t *testing.T) {
	// Card totals don't affect the physical till but are still classified.
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
		mov(model.MovementSale, model.MethodDebitCard, "45.00"),
	}
	counted := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash:      decimal.RequireFromString("100.00"),
		model.MethodDebitCard: decimal.RequireFromString("44.00"),
	}

	report := Reconcile(movements, counted, DefaultThresholds())
	assert.True(t, report.HasDiscrepancy)
	for _, m := range report.Methods {
		switch m.Method {
		case model.MethodCash:
			assert.Equal(t, LevelNone, m.Level)
		case model.MethodDebitCard:
			assert.Equal(t, LevelMinor, m.Level)
			assert.Equal(t, "-1", m.Difference.String())
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		diff  string
		level string
	}{
		{"0.00", LevelNone},
		{"0.009", LevelNone},
		{"0.01", LevelMinor},
		{"-0.01", LevelMinor},
		{"9.99", LevelMinor},
		{"10.00", LevelMajor},
		{"-10.00", LevelMajor},
		{"250.00", LevelMajor},
	}
	for _, tc := range cases {
		got := Classify(decimal.RequireFromString(tc.diff), th)
		assert.Equal(t, tc.level, got, "diff=%s", tc.diff)
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	th := Thresholds{
		Minor: decimal.RequireFromString("1.00"),
		Major: decimal.RequireFromString("50.00"),
	}
	assert.Equal(t, LevelNone, Classify(decimal.RequireFromString("0.99"), th))
	assert.Equal(t, LevelMinor, Classify(decimal.RequireFromString("1.00"), th))
	assert.Equal(t, LevelMajor, Classify(decimal.RequireFromString("50.00"), th))
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	movements := []model.CashMovement{
		mov(model.MovementOpening, model.MethodCash, "100.00"),
	}
	counted := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash: decimal.RequireFromString("90.00"),
	}

	_ = Reconcile(movements, counted, DefaultThresholds())
	assert.Equal(t, "100", movements[0].Amount.String())
	assert.Equal(t, "90", counted[model.MethodCash].String())
	assert.Len(t, counted, 1)
}

func TestMaxLevel(t *testing.T) {
	r := Report{Methods: []MethodResult{
		{Level: LevelNone},
		{Level: LevelMinor},
	}}
	assert.Equal(t, LevelMinor, r.MaxLevel())

	r.Methods = append(r.Methods, MethodResult{Level: LevelMajor})
	assert.Equal(t, LevelMajor, r.MaxLevel())

	assert.Equal(t, LevelNone, Report{}.MaxLevel())
}
