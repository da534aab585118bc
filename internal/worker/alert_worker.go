package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"tillpoint/internal/infra"
)

// DiscrepancyAlertPayload is the job envelope sent to QueueAlerts when a
// session closes with a major discrepancy.
type DiscrepancyAlertPayload struct {
	SessionID       string `json:"session_id"`
	RegisterID      string `json:"register_id"`
	TotalDifference string `json:"total_difference"`
	Level           string `json:"level"`
	ClosedAt        string `json:"closed_at"`
}

// AlertWorker mails discrepancy notifications to the configured supervisor
// address. Alerting is best-effort: a failed send never affects the close.
type AlertWorker struct {
	mailer *infra.Mailer
	to     string
}

func NewAlertWorker(mailer *infra.Mailer, to string) *AlertWorker {
	return &AlertWorker{mailer: mailer, to: to}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload DiscrepancyAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if w.to == "" {
		log.Warn().Msg("alert_worker: no ALERT_EMAIL configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Cash discrepancy (%s) on register %s", payload.Level, payload.RegisterID)
	body := fmt.Sprintf(
		"Session %s closed at %s with a total difference of %s.\n\nRegister: %s\nSeverity: %s\n",
		payload.SessionID, payload.ClosedAt, payload.TotalDifference, payload.RegisterID, payload.Level,
	)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		return fmt.Errorf("alert_worker: send mail: %w", err)
	}

	log.Info().Str("session_id", payload.SessionID).Str("to", w.to).Msg("alert_worker: discrepancy alert sent")
	return nil
}
