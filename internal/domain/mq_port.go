package domain

import (
	"context"
	"time"
)

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

type EventType string

const (
	EventSponsorSet         EventType = "SponsorSet"
	EventCommissionAdded    EventType = "CommissionAdded"
	EventCommissionApproved EventType = "CommissionApproved"
)

// Event is emitted after a ledger or hierarchy change has been committed.
// Key is the user the event is about and is used for partitioning.
type Event struct {
	Type       EventType
	Key        string
	OccurredAt time.Time
	Data       any
}

type SponsorSetData struct {
	UserID    string    `json:"user_id"`
	SponsorID string    `json:"sponsor_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CommissionAddedData struct {
	CommissionID  string `json:"commission_id"`
	ConversionID  string `json:"conversion_id"`
	BeneficiaryID string `json:"beneficiary_id"`
	SourceUserID  string `json:"source_user_id"`
	Amount        string `json:"amount"`
	Level         int    `json:"level"`
}

type CommissionApprovedData struct {
	CommissionID  string `json:"commission_id"`
	BeneficiaryID string `json:"beneficiary_id"`
	Amount        string `json:"amount"`
}

type EventSink interface {
	Emit(ctx context.Context, event Event) error
}
