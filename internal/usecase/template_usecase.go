package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

var jobCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_]{0,31}$`)

type TemplateUsecase struct {
	core
}

func NewTemplateUsecase(store *repository.Store, bus event.Publisher, opts Options) *TemplateUsecase {
	return &TemplateUsecase{core: newCore(store, bus, opts, "template")}
}

// Create stores tpl as a DRAFT owned by the calling employer.
func (uc *TemplateUsecase) Create(ctx context.Context, actor lifecycle.Actor, tpl *model.JobTemplate) (*model.JobTemplate, error) {
	if err := requireRole(actor, lifecycle.RoleEmployer); err != nil {
		return nil, err
	}
	tpl.ID = uuid.New()
	tpl.EmployerID = actor.ID
	tpl.Status = model.TemplateStatusDraft
	tpl.SessionSeq = 0
	tpl.JobCode = strings.ToUpper(strings.TrimSpace(tpl.JobCode))
	if tpl.JobCode == "" {
		tpl.JobCode = "JOB" + strings.ToUpper(strings.ReplaceAll(tpl.ID.String(), "-", "")[:8])
	}
	if tpl.Frequency == "" {
		tpl.Frequency = model.FrequencyWeekly
	}
	if err := validateTemplate(tpl); err != nil {
		return nil, err
	}

	now := uc.now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		taken, err := tx.Templates.JobCodeTaken(ctx, tpl.JobCode)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Invalid("job code already in use", map[string]string{"job_code": tpl.JobCode})
		}
		if err := tx.Templates.Create(ctx, tpl); err != nil {
			return err
		}
		emit(newEvent(model.EventTemplateCreated, tpl.ID, nil, actor, "", string(model.TemplateStatusDraft),
			map[string]any{"job_code": tpl.JobCode, "steps": len(tpl.Steps)}, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.store.Templates.FindByID(ctx, tpl.ID)
}

// ReplaceSteps swaps the step list of a DRAFT template.
func (uc *TemplateUsecase) ReplaceSteps(ctx context.Context, actor lifecycle.Actor, id uuid.UUID, steps []model.JobStep) (*model.JobTemplate, error) {
	if err := requireRole(actor, lifecycle.RoleEmployer); err != nil {
		return nil, err
	}
	if fields := validateSteps(steps); len(fields) > 0 {
		return nil, apperr.Invalid("invalid steps", fields)
	}
	err := uc.commit(ctx, func(tx *repository.Store, _ emitFunc) error {
		tpl, err := tx.Templates.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !tpl.OwnedBy(actor.ID) {
			return apperr.NotAuthorized("template belongs to another employer")
		}
		if tpl.Status != model.TemplateStatusDraft {
			return apperr.TemplateNotEditable(id.String(), string(tpl.Status))
		}
		for i := range steps {
			steps[i].ID = uuid.Nil
			for j := range steps[i].ChecklistItems {
				steps[i].ChecklistItems[j].ID = uuid.Nil
			}
		}
		return tx.Templates.ReplaceSteps(ctx, id, steps)
	})
	if err != nil {
		return nil, err
	}
	return uc.store.Templates.FindByID(ctx, id)
}

// Activate moves a DRAFT template to ACTIVE so sessions can be generated.
func (uc *TemplateUsecase) Activate(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*model.JobTemplate, error) {
	return uc.move(ctx, actor, id, model.TemplateStatusActive, model.EventTemplateActivated,
		[]model.TemplateStatus{model.TemplateStatusDraft},
		func(tpl *model.JobTemplate) error {
			if tpl.IsRecurring && len(tpl.Weekdays) == 0 {
				return apperr.NoEligibleDays(tpl.ID.String())
			}
			if !tpl.IsRecurring && tpl.OneOffDate == nil {
				return apperr.Invalid("one-off template needs a date", map[string]string{"one_off_date": "required"})
			}
			return nil
		})
}

// Archive retires a template. Existing sessions are left untouched.
func (uc *TemplateUsecase) Archive(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (*model.JobTemplate, error) {
	return uc.move(ctx, actor, id, model.TemplateStatusArchived, model.EventTemplateArchived,
		[]model.TemplateStatus{model.TemplateStatusDraft, model.TemplateStatusActive}, nil)
}

func (uc *TemplateUsecase) move(ctx context.Context, actor lifecycle.Actor, id uuid.UUID, to model.TemplateStatus, kind model.EventKind, froms []model.TemplateStatus, check func(*model.JobTemplate) error) (*model.JobTemplate, error) {
	if err := requireRole(actor, lifecycle.RoleEmployer); err != nil {
		return nil, err
	}
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		tpl, err := tx.Templates.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !tpl.OwnedBy(actor.ID) {
			return apperr.NotAuthorized("template belongs to another employer")
		}
		if tpl.Status == to {
			return nil
		}
		allowed := false
		for _, f := range froms {
			allowed = allowed || tpl.Status == f
		}
		if !allowed {
			return apperr.TemplateIllegalTransition(id.String(), string(tpl.Status), string(to))
		}
		if check != nil {
			if err := check(tpl); err != nil {
				return err
			}
		}
		ok, err := tx.Templates.UpdateStatusIf(ctx, id, froms, to)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.TemplateIllegalTransition(id.String(), string(tpl.Status), string(to))
		}
		emit(newEvent(kind, id, nil, actor, string(tpl.Status), string(to), nil, uc.now()))
		uc.log.Debugw("Template status changed", "template_id", id, "from", tpl.Status, "to", to)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.store.Templates.FindByID(ctx, id)
}

func (uc *TemplateUsecase) Get(ctx context.Context, id uuid.UUID) (*model.JobTemplate, error) {
	return uc.store.Templates.FindByID(ctx, id)
}

func (uc *TemplateUsecase) List(ctx context.Context, f repository.TemplateFilter) ([]model.JobTemplate, int64, error) {
	f.Page, f.PageSize = Page(f.Page, f.PageSize)
	return uc.store.Templates.List(ctx, f)
}

func validateTemplate(tpl *model.JobTemplate) error {
	fields := map[string]string{}
	if strings.TrimSpace(tpl.Title) == "" {
		fields["title"] = "required"
	}
	if !jobCodePattern.MatchString(tpl.JobCode) {
		fields["job_code"] = "must be 1-32 upper-case letters, digits or underscores"
	}
	if tpl.DurationMinutes < 0 {
		fields["duration_minutes"] = "must not be negative"
	}
	if tpl.Rate < 0 {
		fields["rate"] = "must not be negative"
	}
	if tpl.Frequency != model.FrequencyWeekly && tpl.Frequency != model.FrequencyBiweekly {
		fields["frequency"] = "must be WEEKLY or BIWEEKLY"
	}
	start, startErr := parseClock(tpl.StartTime)
	if startErr != nil {
		fields["start_time"] = startErr.Error()
	}
	end, endErr := parseClock(tpl.EndTime)
	if endErr != nil {
		fields["end_time"] = endErr.Error()
	}
	if startErr == nil && endErr == nil && tpl.StartTime != "" && tpl.EndTime != "" && !start.Before(end) {
		fields["end_time"] = "must be after start_time"
	}
	if tpl.StartsOn != nil && tpl.EndsOn != nil && tpl.EndsOn.Before(*tpl.StartsOn) {
		fields["ends_on"] = "must not be before starts_on"
	}
	for k, v := range validateSteps(tpl.Steps) {
		fields[k] = v
	}
	if len(fields) > 0 {
		return apperr.Invalid("invalid template", fields)
	}
	return nil
}

func validateSteps(steps []model.JobStep) map[string]string {
	fields := map[string]string{}
	orders := map[int]bool{}
	for i, s := range steps {
		key := fmt.Sprintf("steps[%d]", i)
		if strings.TrimSpace(s.Title) == "" {
			fields[key+".title"] = "required"
		}
		if orders[s.StepOrder] {
			fields[key+".step_order"] = "duplicate"
		}
		orders[s.StepOrder] = true

		items := map[int]bool{}
		for j, it := range s.ChecklistItems {
			ikey := fmt.Sprintf("%s.checklist_items[%d]", key, j)
			if strings.TrimSpace(it.Text) == "" {
				fields[ikey+".text"] = "required"
			}
			if items[it.ItemOrder] {
				fields[ikey+".item_order"] = "duplicate"
			}
			items[it.ItemOrder] = true
		}
	}
	return fields
}

// parseClock accepts "" or HH:MM.
func parseClock(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be HH:MM")
	}
	return t, nil
}
