package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evaluation is the customer's rating of a completed session. One per session, immutable.
type Evaluation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	Rating      int       `gorm:"type:int;not null;check:chk_evaluations_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment     string    `gorm:"type:text" json:"comment"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Evaluation) TableName() string {
	return "evaluations"
}

func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
