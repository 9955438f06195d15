package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobTemplate struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EmployerID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"employer_id"`
	CustomerID      *uuid.UUID     `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	JobCode         string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"job_code"`
	Title           string         `gorm:"type:varchar(200);not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Address         string         `gorm:"type:text" json:"address"`
	DurationMinutes int            `gorm:"not null;default:0" json:"duration_minutes"`
	StartTime       string         `gorm:"type:varchar(5)" json:"start_time"` // HH:MM
	EndTime         string         `gorm:"type:varchar(5)" json:"end_time"`
	Rate            float64        `gorm:"type:numeric(12,2);not null;default:0" json:"rate"`
	IsRecurring     bool           `gorm:"not null;default:false" json:"is_recurring"`
	Frequency       Frequency      `gorm:"type:varchar(16);not null;default:'WEEKLY'" json:"frequency"`
	Weekdays        Weekdays       `json:"weekdays"`
	OneOffDate      *time.Time     `gorm:"type:date" json:"one_off_date,omitempty"`
	StartsOn        *time.Time     `gorm:"type:date" json:"starts_on,omitempty"`
	EndsOn          *time.Time     `gorm:"type:date" json:"ends_on,omitempty"`
	SessionSeq      int            `gorm:"not null;default:0" json:"session_seq"`
	Status          TemplateStatus `gorm:"type:varchar(16);not null;default:'DRAFT';index" json:"status"`
	Steps           []JobStep      `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (t *JobTemplate) TableName() string {
	return "job_templates"
}

func (t *JobTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// OwnedBy reports whether employerID authored the template.
func (t *JobTemplate) OwnedBy(employerID uuid.UUID) bool {
	return t.EmployerID == employerID
}

// StepIDs returns the ids of the template's steps in execution order.
func (t *JobTemplate) StepIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(t.Steps))
	for _, s := range t.Steps {
		ids = append(ids, s.ID)
	}
	return ids
}

// ChecklistItemIDs returns every checklist item id across all steps.
func (t *JobTemplate) ChecklistItemIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, s := range t.Steps {
		for _, it := range s.ChecklistItems {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

type JobStep struct {
	ID             uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID     uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_step_order" json:"template_id"`
	StepOrder      int                    `gorm:"not null;uniqueIndex:idx_step_order" json:"step_order"`
	Title          string                 `gorm:"type:varchar(200);not null" json:"title"`
	Description    string                 `gorm:"type:text" json:"description"`
	ProductsNeeded string                 `gorm:"type:text" json:"products_needed"`
	ChecklistItems []JobStepChecklistItem `gorm:"foreignKey:StepID;constraint:OnDelete:CASCADE" json:"checklist_items,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func (s *JobStep) TableName() string {
	return "job_steps"
}

func (s *JobStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type JobStepChecklistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StepID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_order" json:"step_id"`
	ItemOrder int       `gorm:"not null;uniqueIndex:idx_item_order" json:"item_order"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *JobStepChecklistItem) TableName() string {
	return "job_step_checklist_items"
}

func (i *JobStepChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
