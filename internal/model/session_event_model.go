package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventKind string

const (
	EventTemplateCreated      EventKind = "TemplateCreated"
	EventTemplateActivated    EventKind = "TemplateActivated"
	EventTemplateArchived     EventKind = "TemplateArchived"
	EventSessionOffered       EventKind = "SessionOffered"
	EventSessionClaimed       EventKind = "SessionClaimed"
	EventSessionApproved      EventKind = "SessionApproved"
	EventSessionRefused       EventKind = "SessionRefused"
	EventSessionStarted       EventKind = "SessionStarted"
	EventStepToggled          EventKind = "StepToggled"
	EventChecklistItemToggled EventKind = "ChecklistItemToggled"
	EventSessionCompleted     EventKind = "SessionCompleted"
	EventSessionCancelled     EventKind = "SessionCancelled"
	EventSessionRepriced      EventKind = "SessionRepriced"
	EventEvaluationSubmitted  EventKind = "EvaluationSubmitted"
)

// SessionEvent is the outbox row written in the same transaction as the
// mutation it describes. Seq orders the feed for polling consumers.
type SessionEvent struct {
	Seq        uint64         `gorm:"primaryKey;autoIncrement" json:"seq"`
	Kind       EventKind      `gorm:"type:varchar(32);not null;index" json:"kind"`
	SessionID  *uuid.UUID     `gorm:"type:uuid;index" json:"session_id,omitempty"`
	TemplateID uuid.UUID      `gorm:"type:uuid;not null;index" json:"template_id"`
	ActorID    uuid.UUID      `gorm:"type:uuid" json:"actor_id"`
	ActorRole  string         `gorm:"type:varchar(16)" json:"actor_role"`
	FromStatus string         `gorm:"type:varchar(16)" json:"from_status,omitempty"`
	ToStatus   string         `gorm:"type:varchar(16)" json:"to_status,omitempty"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	OccurredAt time.Time      `gorm:"not null;index" json:"occurred_at"`
}

func (e *SessionEvent) TableName() string {
	return "session_events"
}
