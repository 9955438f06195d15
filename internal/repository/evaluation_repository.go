package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fadilmartias/jobmarket/internal/model"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db}
}

func (r *EvaluationRepository) Create(ctx context.Context, ev *model.Evaluation) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(ev).Error, "create evaluation")
}

func (r *EvaluationRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) (*model.Evaluation, error) {
	var ev model.Evaluation
	if err := r.db.WithContext(ctx).First(&ev, "session_id = ?", sessionID).Error; err != nil {
		return nil, notFound(err, "evaluation", sessionID.String())
	}
	return &ev, nil
}

func (r *EvaluationRepository) ExistsForSession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Evaluation{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n > 0, errors.Wrap(err, "check evaluation")
}
