package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/model"
)

type GenerateSessionsRequest struct {
	HorizonDays int `json:"horizon_days"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

// RepriceRequest sets the session price; null clears the override.
type RepriceRequest struct {
	PriceOverride *float64 `json:"price_override"`
}

type ToggleStepRequest struct {
	Completed bool `json:"completed"`
}

type ToggleChecklistItemRequest struct {
	Checked bool `json:"checked"`
}

type SubmitEvaluationRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type SessionDTO struct {
	ID             uuid.UUID           `json:"id"`
	TemplateID     uuid.UUID           `json:"template_id"`
	SessionCode    string              `json:"session_code"`
	ScheduledDate  string              `json:"scheduled_date"`
	StartTime      string              `json:"start_time,omitempty"`
	EndTime        string              `json:"end_time,omitempty"`
	AssignedTo     *uuid.UUID          `json:"assigned_to,omitempty"`
	Status         model.SessionStatus `json:"status"`
	PriceOverride  *float64            `json:"price_override,omitempty"`
	EffectivePrice float64             `json:"effective_price"`
	ClaimedAt      *time.Time          `json:"claimed_at,omitempty"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`
	StartedAt      *time.Time          `json:"started_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NewSessionDTO expects s.Template loaded for the effective price; without
// it the price falls back to the override or zero.
func NewSessionDTO(s *model.JobSession) SessionDTO {
	return SessionDTO{
		ID:             s.ID,
		TemplateID:     s.TemplateID,
		SessionCode:    s.SessionCode,
		ScheduledDate:  s.ScheduledDate.UTC().Format(DateLayout),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		AssignedTo:     s.AssignedTo,
		Status:         s.Status,
		PriceOverride:  s.PriceOverride,
		EffectivePrice: s.EffectivePrice(s.Template),
		ClaimedAt:      s.ClaimedAt,
		ApprovedAt:     s.ApprovedAt,
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
		CancelledAt:    s.CancelledAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func NewSessionDTOs(in []model.JobSession) []SessionDTO {
	out := make([]SessionDTO, len(in))
	for i := range in {
		out[i] = NewSessionDTO(&in[i])
	}
	return out
}
