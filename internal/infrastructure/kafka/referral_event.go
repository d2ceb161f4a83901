package publisher

import (
	"encoding/json"
	"time"
)

// ReferralEvent is the JSON envelope written to the referral events topic.
type ReferralEvent struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}
