package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/config"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/locker"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/progress"
	"github.com/fadilmartias/jobmarket/internal/recurrence"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

// SessionUsecase is the only writer of session status.
type SessionUsecase struct {
	core
	locks *locker.Keyed
}

func NewSessionUsecase(store *repository.Store, bus event.Publisher, locks *locker.Keyed, opts Options) *SessionUsecase {
	return &SessionUsecase{core: newCore(store, bus, opts, "session"), locks: locks}
}

// Claim assigns an OFFERED session to the calling employee. Of any number of
// concurrent claims on one session exactly one succeeds; the rest get
// ClaimConflict. Repeating a claim you already won returns the session.
func (uc *SessionUsecase) Claim(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID) (*model.JobSession, error) {
	if err := requireRole(actor, lifecycle.RoleEmployee); err != nil {
		return nil, err
	}
	if !actor.Active() {
		return nil, apperr.EmployeeNotEligible(actor.ID.String())
	}

	unlock := uc.locks.Lock(sessionID.String())
	defer unlock()

	var out *model.JobSession
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		now := uc.now()
		won, err := tx.Sessions.ClaimIfOffered(ctx, sessionID, actor.ID, now)
		if err != nil {
			return err
		}
		s, err := tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		out = s
		if !won {
			switch {
			case s.Status == model.SessionStatusClaimed && s.AssignedToID() == actor.ID:
				return nil
			case s.Status == model.SessionStatusClaimed:
				return apperr.ClaimConflict(sessionID.String())
			default:
				return apperr.SessionNotOffered(sessionID.String(), string(s.Status))
			}
		}
		emit(sessionEvent(model.EventSessionClaimed, s, actor, model.SessionStatusOffered, model.SessionStatusClaimed,
			map[string]any{"employee_id": actor.ID}, now))
		uc.log.Debugw("Session claimed", "session_id", sessionID, "employee_id", actor.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *SessionUsecase) Approve(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID) (*model.JobSession, error) {
	return uc.apply(ctx, actor, sessionID, model.SessionStatusApproved, transitionHooks{
		columns: func(now time.Time, c map[string]any) { c["approved_at"] = now },
	})
}

func (uc *SessionUsecase) Refuse(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID) (*model.JobSession, error) {
	return uc.apply(ctx, actor, sessionID, model.SessionStatusRefused, transitionHooks{})
}

// Start moves an APPROVED session to IN_PROGRESS and seeds its progress rows.
// Under the scheduled start policy it fails before the scheduled date.
func (uc *SessionUsecase) Start(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID) (*model.JobSession, error) {
	return uc.apply(ctx, actor, sessionID, model.SessionStatusInProgress, transitionHooks{
		check: func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate) error {
			if uc.opts.StartPolicy == config.StartPolicyImmediate {
				return nil
			}
			today := recurrence.Today(uc.now(), uc.opts.Location)
			if today.Before(recurrence.Day(s.ScheduledDate.UTC())) {
				return apperr.SessionNotStartable(s.ID.String(), s.ScheduledDate.Format(dateKey))
			}
			return nil
		},
		columns: func(now time.Time, c map[string]any) { c["started_at"] = now },
		after: func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate) error {
			return tx.Progress.Seed(ctx, s.ID, tpl.StepIDs(), tpl.ChecklistItemIDs())
		},
	})
}

// Complete finishes an IN_PROGRESS session. Every step of the template must
// be completed; otherwise it fails with IncompleteSteps.
func (uc *SessionUsecase) Complete(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID) (*model.JobSession, error) {
	return uc.apply(ctx, actor, sessionID, model.SessionStatusCompleted, transitionHooks{
		check: func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate) error {
			c, err := completionOf(ctx, tx, s.ID, tpl)
			if err != nil {
				return err
			}
			if c.Remaining() > 0 {
				return apperr.IncompleteSteps(s.ID.String(), c.Remaining())
			}
			return nil
		},
		columns: func(now time.Time, c map[string]any) { c["completed_at"] = now },
	})
}

// Cancel withdraws a session that has not started. The assignee, if any, is
// kept for audit.
func (uc *SessionUsecase) Cancel(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID) (*model.JobSession, error) {
	return uc.apply(ctx, actor, sessionID, model.SessionStatusCancelled, transitionHooks{
		columns: func(now time.Time, c map[string]any) { c["cancelled_at"] = now },
	})
}

// Reprice sets the session's price override, or clears it when price is nil.
// Only the owning employer may do it, and only before work starts.
func (uc *SessionUsecase) Reprice(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID, price *float64) (*model.JobSession, error) {
	if price != nil && *price < 0 {
		return nil, apperr.Invalid("invalid price", map[string]string{"price_override": "must not be negative"})
	}
	var out *model.JobSession
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		s, err := tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		tpl, err := tx.Templates.FindByID(ctx, s.TemplateID)
		if err != nil {
			return err
		}
		if err := authorizeSession(actor, lifecycle.RoleEmployer, s, tpl); err != nil {
			return err
		}
		if !s.Repriceable() {
			return apperr.SessionPriceLocked(sessionID.String(), string(s.Status))
		}
		now := uc.now()
		changed, err := tx.Sessions.SetPriceIf(ctx, sessionID, model.RepriceableStatuses, price, now)
		if err != nil {
			return err
		}
		if !changed {
			s, err = tx.Sessions.FindByID(ctx, sessionID)
			if err != nil {
				return err
			}
			return apperr.SessionPriceLocked(sessionID.String(), string(s.Status))
		}
		out, err = tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		emit(sessionEvent(model.EventSessionRepriced, out, actor, out.Status, out.Status,
			map[string]any{"price_override": price, "effective_price": out.EffectivePrice(out.Template)}, now))
		uc.log.Debugw("Session repriced", "session_id", sessionID, "price_override", price)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transition is the generic entry point: it moves the session to to through
// the named operation for that target. Any pair outside the transition table
// fails with IllegalTransition and leaves the session untouched.
func (uc *SessionUsecase) Transition(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID, to model.SessionStatus) (*model.JobSession, error) {
	if !to.Valid() {
		return nil, apperr.Invalid("unknown status", map[string]string{"status": string(to)})
	}
	switch to {
	case model.SessionStatusApproved:
		return uc.Approve(ctx, actor, sessionID)
	case model.SessionStatusRefused:
		return uc.Refuse(ctx, actor, sessionID)
	case model.SessionStatusInProgress:
		return uc.Start(ctx, actor, sessionID)
	case model.SessionStatusCompleted:
		return uc.Complete(ctx, actor, sessionID)
	case model.SessionStatusCancelled:
		return uc.Cancel(ctx, actor, sessionID)
	}

	s, err := uc.store.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch {
	case s.Status == to && (to != model.SessionStatusClaimed || s.AssignedToID() == actor.ID):
		return s, nil
	case to == model.SessionStatusClaimed && s.Status == model.SessionStatusOffered:
		return uc.Claim(ctx, actor, sessionID)
	case to == model.SessionStatusEvaluated && s.Status == model.SessionStatusCompleted:
		return nil, apperr.Invalid("submit an evaluation to finish a completed session", map[string]string{"status": string(to)})
	case to == model.SessionStatusClaimed && s.Status == model.SessionStatusClaimed:
		return nil, apperr.ClaimConflict(sessionID.String())
	}
	return nil, apperr.IllegalTransition(sessionID.String(), string(s.Status), string(to))
}

type transitionHooks struct {
	// check runs with the session row locked, before the status changes.
	check func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate) error
	// columns adds columns to the status update.
	columns func(now time.Time, c map[string]any)
	// after runs once the status has changed, in the same transaction.
	after func(tx *repository.Store, s *model.JobSession, tpl *model.JobTemplate) error
}

func (uc *SessionUsecase) apply(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID, to model.SessionStatus, hooks transitionHooks) (*model.JobSession, error) {
	var out *model.JobSession
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		s, err := tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		tpl, err := tx.Templates.FindByID(ctx, s.TemplateID)
		if err != nil {
			return err
		}
		from := s.Status

		if from == to {
			if sources := lifecycle.Sources(to); len(sources) > 0 {
				r, _ := lifecycle.Lookup(sources[0], to)
				if err := authorizeSession(actor, r.Actor, s, tpl); err != nil {
					return err
				}
			}
			out = s
			return nil
		}

		rule, ok := lifecycle.Lookup(from, to)
		if !ok {
			return apperr.IllegalTransition(sessionID.String(), string(from), string(to))
		}
		if err := authorizeSession(actor, rule.Actor, s, tpl); err != nil {
			return err
		}

		now := uc.now()
		locked, err := tx.Sessions.TouchIf(ctx, sessionID, from, now)
		if err != nil {
			return err
		}
		if !locked {
			return uc.raced(ctx, tx, sessionID, to, &out)
		}
		if hooks.check != nil {
			if err := hooks.check(tx, s, tpl); err != nil {
				return err
			}
		}
		cols := map[string]any{}
		if hooks.columns != nil {
			hooks.columns(now, cols)
		}
		changed, err := tx.Sessions.TransitionIf(ctx, sessionID, from, to, now, cols)
		if err != nil {
			return err
		}
		if !changed {
			return uc.raced(ctx, tx, sessionID, to, &out)
		}
		if hooks.after != nil {
			if err := hooks.after(tx, s, tpl); err != nil {
				return err
			}
		}

		out, err = tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		emit(sessionEvent(rule.Event, out, actor, from, to, nil, now))
		uc.log.Debugw("Session transitioned", "session_id", sessionID, "from", from, "to", to, "actor_id", actor.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// raced handles a conditional update that matched no row because another
// request moved the session first.
func (uc *SessionUsecase) raced(ctx context.Context, tx *repository.Store, sessionID uuid.UUID, to model.SessionStatus, out **model.JobSession) error {
	s, err := tx.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Status == to {
		*out = s
		return nil
	}
	return apperr.IllegalTransition(sessionID.String(), string(s.Status), string(to))
}

func (uc *SessionUsecase) Get(ctx context.Context, sessionID uuid.UUID) (*model.JobSession, error) {
	return uc.store.Sessions.FindByID(ctx, sessionID)
}

func (uc *SessionUsecase) List(ctx context.Context, f repository.SessionFilter) ([]model.JobSession, int64, error) {
	f.Page, f.PageSize = Page(f.Page, f.PageSize)
	return uc.store.Sessions.List(ctx, f)
}

// History lists the events recorded for one session, oldest first.
func (uc *SessionUsecase) History(ctx context.Context, sessionID uuid.UUID) ([]model.SessionEvent, error) {
	if _, err := uc.store.Sessions.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return uc.store.Events.BySession(ctx, sessionID)
}

// Feed returns committed events after seq for polling consumers.
func (uc *SessionUsecase) Feed(ctx context.Context, after uint64, limit int) ([]model.SessionEvent, error) {
	_, limit = Page(1, limit)
	return uc.store.Events.After(ctx, after, limit)
}

func completionOf(ctx context.Context, tx *repository.Store, sessionID uuid.UUID, tpl *model.JobTemplate) (progress.Completion, error) {
	steps, err := tx.Progress.Steps(ctx, sessionID)
	if err != nil {
		return progress.Completion{}, err
	}
	items, err := tx.Progress.Items(ctx, sessionID)
	if err != nil {
		return progress.Completion{}, err
	}
	return progress.Compute(tpl, steps, items), nil
}
