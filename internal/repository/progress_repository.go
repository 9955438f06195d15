package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fadilmartias/jobmarket/internal/model"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db}
}

// Seed creates an unchecked row for every step and item that has none yet.
func (r *ProgressRepository) Seed(ctx context.Context, sessionID uuid.UUID, stepIDs, itemIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true})
	if len(stepIDs) > 0 {
		rows := make([]model.JobSessionStepProgress, len(stepIDs))
		for i, id := range stepIDs {
			rows[i] = model.JobSessionStepProgress{SessionID: sessionID, StepID: id}
		}
		if err := db.Create(&rows).Error; err != nil {
			return errors.Wrap(err, "seed step progress")
		}
	}
	if len(itemIDs) > 0 {
		rows := make([]model.JobSessionChecklistProgress, len(itemIDs))
		for i, id := range itemIDs {
			rows[i] = model.JobSessionChecklistProgress{SessionID: sessionID, ItemID: id}
		}
		if err := db.Create(&rows).Error; err != nil {
			return errors.Wrap(err, "seed checklist progress")
		}
	}
	return nil
}

// SetStep upserts the (session, step) row.
func (r *ProgressRepository) SetStep(ctx context.Context, sessionID, stepID uuid.UUID, completed bool, at time.Time) error {
	row := model.JobSessionStepProgress{
		SessionID:   sessionID,
		StepID:      stepID,
		IsCompleted: completed,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if completed {
		row.CompletedAt = &at
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "step_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_completed", "completed_at", "updated_at"}),
	}).Create(&row).Error
	return errors.Wrap(err, "set step progress")
}

// SetItem upserts the (session, item) row.
func (r *ProgressRepository) SetItem(ctx context.Context, sessionID, itemID uuid.UUID, checked bool, at time.Time) error {
	row := model.JobSessionChecklistProgress{
		SessionID: sessionID,
		ItemID:    itemID,
		IsChecked: checked,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if checked {
		row.CheckedAt = &at
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_checked", "checked_at", "updated_at"}),
	}).Create(&row).Error
	return errors.Wrap(err, "set checklist progress")
}

func (r *ProgressRepository) Steps(ctx context.Context, sessionID uuid.UUID) ([]model.JobSessionStepProgress, error) {
	var rows []model.JobSessionStepProgress
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&rows).Error
	return rows, errors.Wrap(err, "list step progress")
}

func (r *ProgressRepository) Items(ctx context.Context, sessionID uuid.UUID) ([]model.JobSessionChecklistProgress, error) {
	var rows []model.JobSessionChecklistProgress
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&rows).Error
	return rows, errors.Wrap(err, "list checklist progress")
}
