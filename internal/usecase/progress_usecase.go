package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/progress"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

// ProgressUsecase records step and checklist completion for IN_PROGRESS
// sessions and derives the completion figures from those rows.
type ProgressUsecase struct {
	core
}

func NewProgressUsecase(store *repository.Store, bus event.Publisher, opts Options) *ProgressUsecase {
	return &ProgressUsecase{core: newCore(store, bus, opts, "progress")}
}

func (uc *ProgressUsecase) ToggleStep(ctx context.Context, actor lifecycle.Actor, sessionID, stepID uuid.UUID, completed bool) (progress.Completion, error) {
	return uc.toggle(ctx, actor, sessionID, func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate, emit emitFunc) error {
		if !containsID(tpl.StepIDs(), stepID) {
			return apperr.NotFound("step", stepID.String())
		}
		now := uc.now()
		if err := tx.Progress.SetStep(ctx, sessionID, stepID, completed, now); err != nil {
			return err
		}
		emit(sessionEvent(model.EventStepToggled, s, actor, s.Status, s.Status,
			map[string]any{"step_id": stepID, "completed": completed}, now))
		return nil
	})
}

func (uc *ProgressUsecase) ToggleChecklistItem(ctx context.Context, actor lifecycle.Actor, sessionID, itemID uuid.UUID, checked bool) (progress.Completion, error) {
	return uc.toggle(ctx, actor, sessionID, func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate, emit emitFunc) error {
		if !containsID(tpl.ChecklistItemIDs(), itemID) {
			return apperr.NotFound("checklist item", itemID.String())
		}
		now := uc.now()
		if err := tx.Progress.SetItem(ctx, sessionID, itemID, checked, now); err != nil {
			return err
		}
		emit(sessionEvent(model.EventChecklistItemToggled, s, actor, s.Status, s.Status,
			map[string]any{"item_id": itemID, "checked": checked}, now))
		return nil
	})
}

func (uc *ProgressUsecase) toggle(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID, write func(*repository.Store, *model.JobSession, *model.JobTemplate, emitFunc) error) (progress.Completion, error) {
	var out progress.Completion
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		s, err := tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := progressWritable(s); err != nil {
			return err
		}
		tpl, err := tx.Templates.FindByID(ctx, s.TemplateID)
		if err != nil {
			return err
		}
		if err := authorizeSession(actor, lifecycle.RoleEmployee, s, tpl); err != nil {
			return err
		}
		locked, err := tx.Sessions.TouchIf(ctx, sessionID, model.SessionStatusInProgress, uc.now())
		if err != nil {
			return err
		}
		if !locked {
			current, err := tx.Sessions.FindByID(ctx, sessionID)
			if err != nil {
				return err
			}
			return progressWritable(current)
		}
		if err := write(tx, s, tpl, emit); err != nil {
			return err
		}
		out, err = completionOf(ctx, tx, sessionID, tpl)
		return err
	})
	return out, err
}

// Completion derives the session's completion from its progress rows and
// the template's step and checklist counts.
func (uc *ProgressUsecase) Completion(ctx context.Context, sessionID uuid.UUID) (progress.Completion, error) {
	s, err := uc.store.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return progress.Completion{}, err
	}
	tpl, err := uc.store.Templates.FindByID(ctx, s.TemplateID)
	if err != nil {
		return progress.Completion{}, err
	}
	return completionOf(ctx, uc.store, sessionID, tpl)
}

// Rows returns the raw progress rows of a session.
func (uc *ProgressUsecase) Rows(ctx context.Context, sessionID uuid.UUID) ([]model.JobSessionStepProgress, []model.JobSessionChecklistProgress, error) {
	if _, err := uc.store.Sessions.FindByID(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	steps, err := uc.store.Progress.Steps(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	items, err := uc.store.Progress.Items(ctx, sessionID)
	return steps, items, err
}

func progressWritable(s *model.JobSession) error {
	switch s.Status {
	case model.SessionStatusInProgress:
		return nil
	case model.SessionStatusCompleted, model.SessionStatusEvaluated:
		return apperr.SessionLocked(s.ID.String(), string(s.Status))
	default:
		return apperr.SessionNotActive(s.ID.String(), string(s.Status))
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
