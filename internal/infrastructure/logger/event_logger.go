package logger

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// ReferralEventLog is one row of the referral_event_log audit table.
type ReferralEventLog struct {
	ID         uint   `gorm:"primaryKey"`
	EventType  string `gorm:"index"`
	UserID     string `gorm:"index"`
	Payload    string `gorm:"type:jsonb"`
	OccurredAt time.Time
}

func (ReferralEventLog) TableName() string {
	return "referral_event_log"
}

// PGEventLogger is the EventSink used when Kafka is disabled: events land in an audit table.
type PGEventLogger struct {
	db *gorm.DB
}

func NewPGEventLogger(db *gorm.DB) *PGEventLogger {
	return &PGEventLogger{db: db}
}

func (l *PGEventLogger) Emit(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	return l.db.WithContext(ctx).Create(&ReferralEventLog{
		EventType:  string(event.Type),
		UserID:     event.Key,
		Payload:    string(payload),
		OccurredAt: event.OccurredAt,
	}).Error
}

// NopEventSink drops events. Used with the memory storage driver.
type NopEventSink struct{}

func (NopEventSink) Emit(context.Context, domain.Event) error { return nil }
