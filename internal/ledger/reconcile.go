// Package ledger holds the pure reconciliation arithmetic for cash sessions.
// It has no store or transport dependencies: given a movement log and the
// operator's counted amounts, it produces expected totals and classified
// differences. The calculator informs — it never blocks a close.
package ledger

import (
	"github.com/shopspring/decimal"

	"tillpoint/internal/model"
)

// Discrepancy levels per method, classified against configurable thresholds.
const (
	LevelNone  = "none"
	LevelMinor = "minor"
	LevelMajor = "major"
)

// Thresholds are the |difference| boundaries between levels, in the
// register's currency units. Defaults come from config (0.01 / 10.00).
type Thresholds struct {
	Minor decimal.Decimal // |diff| >= Minor → at least minor
	Major decimal.Decimal // |diff| >= Major → major
}

// DefaultThresholds returns the 0.01 / 10.00 policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Minor: decimal.NewFromFloat(0.01),
		Major: decimal.NewFromFloat(10.00),
	}
}

// MethodResult is the reconciliation outcome for one payment method.
type MethodResult struct {
	Method     model.PaymentMethod
	Expected   decimal.Decimal
	Counted    decimal.Decimal
	Difference decimal.Decimal // Counted − Expected
	Level      string
	// Used reports whether the method appears in the movement log or was
	// counted by the operator; unused methods reconcile trivially as 0/0.
	Used bool
}

// Report is the full reconciliation outcome for a session close.
type Report struct {
	Methods         []MethodResult
	TotalExpected   decimal.Decimal
	TotalCounted    decimal.Decimal
	TotalDifference decimal.Decimal
	HasDiscrepancy  bool
}

// ExpectedByMethod folds the movement log into the balance each payment
// method should hold. The OPENING movement carries the opening cash float,
// so no separate opening amount is added here. CLOSING movements are
// markers, not deltas, and contribute nothing.
func ExpectedByMethod(movements []model.CashMovement) map[model.PaymentMethod]decimal.Decimal {
	expected := make(map[model.PaymentMethod]decimal.Decimal, len(model.AllPaymentMethods()))
	for _, m := range movements {
		switch m.Type.Sign() {
		case 1:
			expected[m.Method] = expected[m.Method].Add(m.Amount)
		case -1:
			expected[m.Method] = expected[m.Method].Sub(m.Amount)
		}
	}
	return expected
}

// Reconcile compares the movement log against the operator's counted amounts.
// Methods absent from both the log and the count are reported as unused with
// zero expected/counted. Only the CASH difference affects the physical till;
// non-cash differences are informational but still classified for audit.
func Reconcile(movements []model.CashMovement, counted map[model.PaymentMethod]decimal.Decimal, th Thresholds) Report {
	expected := ExpectedByMethod(movements)

	var report Report
	for _, method := range model.AllPaymentMethods() {
		exp := expected[method]
		cnt, wasCounted := counted[method]
		if !wasCounted {
			cnt = decimal.Zero
		}

		diff := cnt.Sub(exp)
		_, inLog := expected[method]
		result := MethodResult{
			Method:     method,
			Expected:   exp,
			Counted:    cnt,
			Difference: diff,
			Level:      Classify(diff, th),
			Used:       inLog || wasCounted,
		}
		report.Methods = append(report.Methods, result)

		report.TotalExpected = report.TotalExpected.Add(exp)
		report.TotalCounted = report.TotalCounted.Add(cnt)
		report.TotalDifference = report.TotalDifference.Add(diff)
		if result.Level != LevelNone {
			report.HasDiscrepancy = true
		}
	}
	return report
}

// Classify maps a signed difference onto a discrepancy level.
func Classify(diff decimal.Decimal, th Thresholds) string {
	abs := diff.Abs()
	switch {
	case abs.LessThan(th.Minor):
		return LevelNone
	case abs.LessThan(th.Major):
		return LevelMinor
	default:
		return LevelMajor
	}
}

// MaxLevel returns the most severe level present in the report.
func (r Report) MaxLevel() string {
	level := LevelNone
	for _, m := range r.Methods {
		if m.Level == LevelMajor {
			return LevelMajor
		}
		if m.Level == LevelMinor {
			level = LevelMinor
		}
	}
	return level
}
