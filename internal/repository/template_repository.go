package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/model"
)

type TemplateFilter struct {
	EmployerID *uuid.UUID
	Status     model.TemplateStatus
	Page       int
	PageSize   int
}

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db}
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *model.JobTemplate) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(tpl).Error, "create template")
}

func withSteps(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("Steps.ChecklistItems", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") })
}

// FindByID loads the template with its ordered steps and checklist items.
func (r *TemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.JobTemplate, error) {
	var tpl model.JobTemplate
	err := withSteps(r.db.WithContext(ctx)).First(&tpl, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "template", id.String())
	}
	return &tpl, nil
}

func (r *TemplateRepository) List(ctx context.Context, f TemplateFilter) ([]model.JobTemplate, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.JobTemplate{})
	if f.EmployerID != nil {
		q = q.Where("employer_id = ?", *f.EmployerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count templates")
	}

	var out []model.JobTemplate
	err := withSteps(q).
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error
	return out, total, errors.Wrap(err, "list templates")
}

// ListActiveIDs returns the ids of every ACTIVE template.
func (r *TemplateRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.JobTemplate{}).
		Where("status = ?", model.TemplateStatusActive).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, errors.Wrap(err, "list active templates")
}

// UpdateStatusIf moves the template from one of froms to to. It reports
// whether a row changed.
func (r *TemplateRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, froms []model.TemplateStatus, to model.TemplateStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.JobTemplate{}).
		Where("id = ? AND status IN ?", id, froms).
		Update("status", to)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "update template status")
	}
	return res.RowsAffected == 1, nil
}

// ReserveSessionSeq bumps the template's session sequence by n and returns
// the first reserved number. Concurrent generators serialise on the row.
func (r *TemplateRepository) ReserveSessionSeq(ctx context.Context, id uuid.UUID, n int) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&model.JobTemplate{}).
		Where("id = ?", id).
		Update("session_seq", gorm.Expr("session_seq + ?", n))
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "reserve session sequence")
	}
	var seq int
	err := r.db.WithContext(ctx).
		Model(&model.JobTemplate{}).
		Where("id = ?", id).
		Pluck("session_seq", &seq).Error
	if err != nil {
		return 0, errors.Wrap(err, "read session sequence")
	}
	return seq - n + 1, nil
}

// ReplaceSteps deletes the template's steps (and their checklist items) and
// inserts steps in their place.
func (r *TemplateRepository) ReplaceSteps(ctx context.Context, templateID uuid.UUID, steps []model.JobStep) error {
	db := r.db.WithContext(ctx)
	stepIDs := db.Model(&model.JobStep{}).Select("id").Where("template_id = ?", templateID)
	if err := db.Where("step_id IN (?)", stepIDs).Delete(&model.JobStepChecklistItem{}).Error; err != nil {
		return errors.Wrap(err, "delete checklist items")
	}
	if err := db.Where("template_id = ?", templateID).Delete(&model.JobStep{}).Error; err != nil {
		return errors.Wrap(err, "delete steps")
	}
	if len(steps) == 0 {
		return nil
	}
	for i := range steps {
		steps[i].TemplateID = templateID
	}
	return errors.Wrap(db.Create(&steps).Error, "create steps")
}

func (r *TemplateRepository) JobCodeTaken(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.JobTemplate{}).Where("job_code = ?", code).Count(&n).Error
	return n > 0, errors.Wrap(err, "check job code")
}

// Touch bumps updated_at, taking the template row's write lock inside a
// transaction.
func (r *TemplateRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.JobTemplate{}).
		Where("id = ?", id).
		Update("updated_at", at)
	if res.Error != nil {
		return errors.Wrap(res.Error, "lock template")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("template", id.String())
	}
	return nil
}
