package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertWorkerMalformedPayload(t *testing.T) {
	// Malformed payloads are dropped, not retried.
	w := NewAlertWorker(nil, "supervisor@example.com")
	err := w.Process(context.Background(), json.RawMessage(`{not json`))
	assert.NoError(t, err)
}

func TestAlertWorkerNoRecipient(t *testing.T) {
	w := NewAlertWorker(nil, "")
	payload, _ := json.Marshal(DiscrepancyAlertPayload{
		SessionID: "s1", RegisterID: "r1", TotalDifference: "-50.00", Level: "major",
	})
	err := w.Process(context.Background(), json.RawMessage(payload))
	assert.NoError(t, err)
}
