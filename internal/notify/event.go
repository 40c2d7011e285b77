// Package notify carries "ledger updated" events between the upload CLI and
// running API servers so cached snapshots can be dropped.
package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LedgerUpdated announces that a new ledger object was published.
type LedgerUpdated struct {
	EventID    string    `json:"event_id"`
	URI        string    `json:"uri"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewLedgerUpdated creates an event for uri with a fresh id.
func NewLedgerUpdated(uri string, at time.Time) LedgerUpdated {
	return LedgerUpdated{
		EventID:    uuid.New().String(),
		URI:        uri,
		UploadedAt: at.UTC(),
	}
}

// Handler processes one event. A non-nil error leaves the message on the
// queue for redelivery.
type Handler func(ctx context.Context, ev LedgerUpdated) error

// encodeEvent returns the base64 JSON body used for queue messages.
func encodeEvent(ev LedgerUpdated) (string, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encodeEvent: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func decodeEvent(text string) (LedgerUpdated, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return LedgerUpdated{}, fmt.Errorf("decodeEvent: base64: %w", err)
	}
	var ev LedgerUpdated
	if err := json.Unmarshal(data, &ev); err != nil {
		return LedgerUpdated{}, fmt.Errorf("decodeEvent: %w", err)
	}
	return ev, nil
}
