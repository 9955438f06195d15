package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobSession is one dated occurrence of a template. Status only changes
// through the lifecycle usecase; rows are never deleted.
type JobSession struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID    uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_session_slot,where:status <> 'CANCELLED' AND status <> 'REFUSED'" json:"template_id"`
	SessionCode   string        `gorm:"type:varchar(48);not null;uniqueIndex" json:"session_code"`
	ScheduledDate time.Time     `gorm:"type:date;not null;index;uniqueIndex:idx_session_slot" json:"scheduled_date"`
	StartTime     string        `gorm:"type:varchar(5)" json:"start_time"`
	EndTime       string        `gorm:"type:varchar(5)" json:"end_time"`
	AssignedTo    *uuid.UUID    `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	Status        SessionStatus `gorm:"type:varchar(16);not null;default:'OFFERED';index" json:"status"`
	PriceOverride *float64      `gorm:"type:numeric(12,2)" json:"price_override,omitempty"`
	ClaimedAt     *time.Time    `json:"claimed_at,omitempty"`
	ApprovedAt    *time.Time    `json:"approved_at,omitempty"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Template *JobTemplate `gorm:"foreignKey:TemplateID" json:"-"`
}

func (s *JobSession) TableName() string {
	return "job_sessions"
}

func (s *JobSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AssignedToID is the assignee or uuid.Nil.
func (s *JobSession) AssignedToID() uuid.UUID {
	if s.AssignedTo == nil {
		return uuid.Nil
	}
	return *s.AssignedTo
}

// RepriceableStatuses are the statuses in which the price override may still
// change: before work has started.
var RepriceableStatuses = []SessionStatus{SessionStatusOffered, SessionStatusClaimed, SessionStatusApproved}

func (s *JobSession) Repriceable() bool {
	for _, st := range RepriceableStatuses {
		if s.Status == st {
			return true
		}
	}
	return false
}

// EffectivePrice is the override when set, otherwise the template rate.
func (s *JobSession) EffectivePrice(tpl *JobTemplate) float64 {
	if s.PriceOverride != nil {
		return *s.PriceOverride
	}
	if tpl == nil {
		return 0
	}
	return tpl.Rate
}

type JobSessionStepProgress struct {
	ID          uint       `gorm:"primaryKey" json:"-"`
	SessionID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_step_progress" json:"session_id"`
	StepID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_step_progress" json:"step_id"`
	IsCompleted bool       `gorm:"not null" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p *JobSessionStepProgress) TableName() string {
	return "job_session_step_progress"
}

type JobSessionChecklistProgress struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_checklist_progress" json:"session_id"`
	ItemID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_checklist_progress" json:"item_id"`
	IsChecked bool       `gorm:"not null" json:"is_checked"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (p *JobSessionChecklistProgress) TableName() string {
	return "job_session_checklist_progress"
}
