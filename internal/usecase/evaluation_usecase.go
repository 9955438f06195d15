package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

const maxCommentLength = 2000

type EvaluationUsecase struct {
	core
}

func NewEvaluationUsecase(store *repository.Store, bus event.Publisher, opts Options) *EvaluationUsecase {
	return &EvaluationUsecase{core: newCore(store, bus, opts, "evaluation")}
}

// Submit records the customer's rating and moves the session from COMPLETED
// to EVALUATED. The status change, the evaluation row and the event are one
// transaction, so a session is never left COMPLETED with an evaluation.
func (uc *EvaluationUsecase) Submit(ctx context.Context, actor lifecycle.Actor, sessionID uuid.UUID, rating int, comment string) (*model.Evaluation, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.InvalidRating(sessionID.String(), rating)
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, apperr.Invalid("comment too long", map[string]string{"comment": "at most 2000 characters"})
	}
	if err := requireRole(actor, lifecycle.RoleCustomer); err != nil {
		return nil, err
	}

	var out *model.Evaluation
	err := uc.commit(ctx, func(tx *repository.Store, emit emitFunc) error {
		s, err := tx.Sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		tpl, err := tx.Templates.FindByID(ctx, s.TemplateID)
		if err != nil {
			return err
		}
		if err := authorizeSession(actor, lifecycle.RoleCustomer, s, tpl); err != nil {
			return err
		}
		switch s.Status {
		case model.SessionStatusCompleted:
		case model.SessionStatusEvaluated:
			return apperr.DuplicateEvaluation(sessionID.String())
		default:
			return apperr.SessionNotCompleted(sessionID.String(), string(s.Status))
		}
		exists, err := tx.Evaluations.ExistsForSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.DuplicateEvaluation(sessionID.String())
		}

		now := uc.now()
		changed, err := tx.Sessions.TransitionIf(ctx, sessionID, model.SessionStatusCompleted, model.SessionStatusEvaluated, now, nil)
		if err != nil {
			return err
		}
		if !changed {
			current, err := tx.Sessions.FindByID(ctx, sessionID)
			if err != nil {
				return err
			}
			if current.Status == model.SessionStatusEvaluated {
				return apperr.DuplicateEvaluation(sessionID.String())
			}
			return apperr.SessionNotCompleted(sessionID.String(), string(current.Status))
		}

		out = &model.Evaluation{
			ID:          uuid.New(),
			SessionID:   sessionID,
			CustomerID:  actor.ID,
			EmployeeID:  s.AssignedToID(),
			Rating:      rating,
			Comment:     comment,
			SubmittedAt: now,
			CreatedAt:   now,
		}
		if err := tx.Evaluations.Create(ctx, out); err != nil {
			return err
		}
		emit(sessionEvent(model.EventEvaluationSubmitted, s, actor, model.SessionStatusCompleted, model.SessionStatusEvaluated,
			map[string]any{"evaluation_id": out.ID, "rating": rating}, now))
		uc.log.Debugw("Evaluation submitted", "session_id", sessionID, "rating", rating)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *EvaluationUsecase) Get(ctx context.Context, sessionID uuid.UUID) (*model.Evaluation, error) {
	return uc.store.Evaluations.FindBySession(ctx, sessionID)
}
