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

type SessionFilter struct {
	Statuses   []model.SessionStatus
	TemplateID *uuid.UUID
	AssignedTo *uuid.UUID
	EmployerID *uuid.UUID
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db}
}

func (r *SessionRepository) CreateBatch(ctx context.Context, sessions []model.JobSession) error {
	if len(sessions) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&sessions).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.SlotConflict(sessions[0].TemplateID.String())
	}
	return errors.Wrap(err, "create sessions")
}

func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.JobSession, error) {
	var s model.JobSession
	if err := r.db.WithContext(ctx).Preload("Template").First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "session", id.String())
	}
	return &s, nil
}

func (r *SessionRepository) List(ctx context.Context, f SessionFilter) ([]model.JobSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.JobSession{})
	if len(f.Statuses) > 0 {
		q = q.Where("job_sessions.status IN ?", f.Statuses)
	}
	if f.TemplateID != nil {
		q = q.Where("job_sessions.template_id = ?", *f.TemplateID)
	}
	if f.AssignedTo != nil {
		q = q.Where("job_sessions.assigned_to = ?", *f.AssignedTo)
	}
	if f.EmployerID != nil || f.CustomerID != nil {
		q = q.Joins("JOIN job_templates ON job_templates.id = job_sessions.template_id")
		if f.EmployerID != nil {
			q = q.Where("job_templates.employer_id = ?", *f.EmployerID)
		}
		if f.CustomerID != nil {
			q = q.Where("job_templates.customer_id = ?", *f.CustomerID)
		}
	}
	if f.From != nil {
		q = q.Where("job_sessions.scheduled_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("job_sessions.scheduled_date <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count sessions")
	}

	var out []model.JobSession
	err := q.
		Preload("Template").
		Order("job_sessions.scheduled_date ASC").
		Order("job_sessions.session_code ASC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&out).Error
	return out, total, errors.Wrap(err, "list sessions")
}

// LiveDates returns the scheduled dates in [from, to) already covered by a
// session that still occupies its slot.
func (r *SessionRepository) LiveDates(ctx context.Context, templateID uuid.UUID, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).
		Model(&model.JobSession{}).
		Where("template_id = ? AND scheduled_date >= ? AND scheduled_date < ?", templateID, from, to).
		Where("status NOT IN ?", []model.SessionStatus{model.SessionStatusCancelled, model.SessionStatusRefused}).
		Pluck("scheduled_date", &dates).Error
	return dates, errors.Wrap(err, "list live dates")
}

// ClaimIfOffered is the arbitration point: a single conditional update that
// only succeeds while the session is still OFFERED.
func (r *SessionRepository) ClaimIfOffered(ctx context.Context, id, employeeID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.JobSession{}).
		Where("id = ? AND status = ?", id, model.SessionStatusOffered).
		Updates(map[string]any{
			"status":      model.SessionStatusClaimed,
			"assigned_to": employeeID,
			"claimed_at":  at,
			"updated_at":  at,
		})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "claim session")
	}
	return res.RowsAffected == 1, nil
}

// TransitionIf applies to and the extra columns only while the session is
// in from. It reports whether the row changed.
func (r *SessionRepository) TransitionIf(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, at time.Time, extra map[string]any) (bool, error) {
	cols := map[string]any{"status": to, "updated_at": at}
	for k, v := range extra {
		cols[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&model.JobSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(cols)
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "transition session %s -> %s", from, to)
	}
	return res.RowsAffected == 1, nil
}

// TouchIf bumps updated_at while the session is in status. Inside a
// transaction this takes the row's write lock, so progress writes and
// completion of the same session cannot interleave.
func (r *SessionRepository) TouchIf(ctx context.Context, id uuid.UUID, status model.SessionStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.JobSession{}).
		Where("id = ? AND status = ?", id, status).
		Update("updated_at", at)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "lock session")
	}
	return res.RowsAffected == 1, nil
}

// SetPriceIf writes the price override, or clears it when price is nil, while
// the session is in one of statuses.
func (r *SessionRepository) SetPriceIf(ctx context.Context, id uuid.UUID, statuses []model.SessionStatus, price *float64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.JobSession{}).
		Where("id = ? AND status IN ?", id, statuses).
		Updates(map[string]any{"price_override": price, "updated_at": at})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "reprice session")
	}
	return res.RowsAffected == 1, nil
}
