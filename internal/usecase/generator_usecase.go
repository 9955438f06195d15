package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/locker"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/recurrence"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

const dateKey = "2006-01-02"

// GeneratorUsecase turns ACTIVE templates into OFFERED sessions.
type GeneratorUsecase struct {
	core
	locks *locker.Keyed
}

func NewGeneratorUsecase(store *repository.Store, bus event.Publisher, locks *locker.Keyed, opts Options) *GeneratorUsecase {
	return &GeneratorUsecase{core: newCore(store, bus, opts, "generator"), locks: locks}
}

// Generate creates one OFFERED session for every eligible date in the next
// horizonDays days that no live session covers yet. Calling it again over an
// overlapping horizon creates nothing new for dates already covered.
func (uc *GeneratorUsecase) Generate(ctx context.Context, actor lifecycle.Actor, templateID uuid.UUID, horizonDays int) ([]model.JobSession, error) {
	if err := requireRole(actor, lifecycle.RoleEmployer, lifecycle.RoleSystem); err != nil {
		return nil, err
	}
	if horizonDays <= 0 || horizonDays > uc.opts.MaxHorizonDays {
		return nil, apperr.Invalid("invalid horizon", map[string]string{
			"horizon_days": fmt.Sprintf("must be between 1 and %d", uc.opts.MaxHorizonDays),
		})
	}

	unlock := uc.locks.Lock("template:" + templateID.String())
	defer unlock()

	var created []model.JobSession
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		now := uc.now()
		if err := tx.Templates.Touch(ctx, templateID, now); err != nil {
			return err
		}
		tpl, err := tx.Templates.FindByID(ctx, templateID)
		if err != nil {
			return err
		}
		if actor.Is(lifecycle.RoleEmployer) && !tpl.OwnedBy(actor.ID) {
			return apperr.NotAuthorized("template belongs to another employer")
		}
		if tpl.Status != model.TemplateStatusActive {
			return apperr.TemplateNotActive(tpl.ID.String(), string(tpl.Status))
		}
		if tpl.IsRecurring && len(tpl.Weekdays) == 0 {
			return apperr.NoEligibleDays(tpl.ID.String())
		}

		today := recurrence.Today(now, uc.opts.Location)
		until := today.AddDate(0, 0, horizonDays)
		dates := recurrence.Dates(recurrence.FromTemplate(tpl), today, horizonDays)
		if len(dates) == 0 {
			return nil
		}

		live, err := tx.Sessions.LiveDates(ctx, tpl.ID, today, until)
		if err != nil {
			return err
		}
		covered := make(map[string]bool, len(live))
		for _, d := range live {
			covered[d.UTC().Format(dateKey)] = true
		}
		missing := make([]time.Time, 0, len(dates))
		for _, d := range dates {
			if !covered[d.Format(dateKey)] {
				missing = append(missing, d)
			}
		}
		if len(missing) == 0 {
			return nil
		}

		first, err := tx.Templates.ReserveSessionSeq(ctx, tpl.ID, len(missing))
		if err != nil {
			return err
		}
		created = make([]model.JobSession, len(missing))
		for i, d := range missing {
			created[i] = model.JobSession{
				ID:            uuid.New(),
				TemplateID:    tpl.ID,
				SessionCode:   fmt.Sprintf("%s-%d", tpl.JobCode, first+i),
				ScheduledDate: d,
				StartTime:     tpl.StartTime,
				EndTime:       tpl.EndTime,
				Status:        model.SessionStatusOffered,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
		}
		if err := tx.Sessions.CreateBatch(ctx, created); err != nil {
			return err
		}
		for i := range created {
			created[i].Template = tpl
			emit(sessionEvent(model.EventSessionOffered, &created[i], actor, "", model.SessionStatusOffered,
				map[string]any{"session_code": created[i].SessionCode, "scheduled_date": created[i].ScheduledDate.Format(dateKey)}, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		uc.log.Debugw("Sessions generated", "template_id", templateID, "count", len(created))
	}
	return created, nil
}

// GenerateAll runs Generate for every ACTIVE template as the system actor.
// A failing template does not stop the others; their errors are combined.
func (uc *GeneratorUsecase) GenerateAll(ctx context.Context, horizonDays int) (int, error) {
	ids, err := uc.store.Templates.ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	var combined error
	for _, id := range ids {
		if ctx.Err() != nil {
			return total, errors.CombineErrors(combined, ctx.Err())
		}
		sessions, err := uc.Generate(ctx, lifecycle.SystemActor, id, horizonDays)
		if err != nil {
			uc.log.Warnw("Session generation failed", "template_id", id, "error", err)
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "template %s", id))
			continue
		}
		total += len(sessions)
	}
	return total, combined
}
