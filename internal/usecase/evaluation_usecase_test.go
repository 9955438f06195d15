package usecase

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

func TestHappyPathEndsEvaluated(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.offered(t, 3, 1)

	claimed, err := f.sessions.Claim(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusClaimed, claimed.Status)
	assert.Equal(t, f.employee.ID, claimed.AssignedToID())

	_, err = f.sessions.Approve(f.ctx, f.employer, s.ID)
	require.NoError(t, err)
	_, err = f.sessions.Start(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
	for _, id := range tpl.StepIDs() {
		_, err = f.progress.ToggleStep(f.ctx, f.employee, s.ID, id, true)
		require.NoError(t, err)
	}
	_, err = f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.NoError(t, err)

	ev, err := f.evaluations.Submit(f.ctx, f.customer, s.ID, 5, "  spotless  ")
	require.NoError(t, err)
	assert.Equal(t, 5, ev.Rating)
	assert.Equal(t, "spotless", ev.Comment)
	assert.Equal(t, f.employee.ID, ev.EmployeeID)
	assert.Equal(t, f.customer.ID, ev.CustomerID)
	assert.Equal(t, model.SessionStatusEvaluated, f.status(t, s.ID))

	var n int64
	require.NoError(t, f.store.DB().Model(&model.Evaluation{}).Where("session_id = ?", s.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, []model.EventKind{
		model.EventSessionOffered,
		model.EventSessionClaimed,
		model.EventSessionApproved,
		model.EventSessionStarted,
		model.EventStepToggled,
		model.EventStepToggled,
		model.EventStepToggled,
		model.EventSessionCompleted,
		model.EventEvaluationSubmitted,
	}, f.kinds(t, s.ID))

	got, err := f.evaluations.Get(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, got.ID)

	mine, total, err := f.sessions.List(f.ctx, repository.SessionFilter{
		AssignedTo: &f.employee.ID,
		Statuses:   []model.SessionStatus{model.SessionStatusEvaluated},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, s.ID, mine[0].ID)
}

func TestEvaluationIsExclusive(t *testing.T) {
	f := newFixture(t)
	_, s := f.completed(t)

	const n = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, dupes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.evaluations.Submit(f.ctx, f.customer, s.ID, 4, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case apperr.HasCode(err, apperr.CodeDuplicateEvaluation):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dupes)
}

func TestEvaluationRejections(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.started(t, 1, 0)

	_, err := f.evaluations.Submit(f.ctx, f.customer, s.ID, 5, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotCompleted), "got %v", err)

	_, err = f.progress.ToggleStep(f.ctx, f.employee, s.ID, tpl.StepIDs()[0], true)
	require.NoError(t, err)
	_, err = f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1} {
		_, err = f.evaluations.Submit(f.ctx, f.customer, s.ID, rating, "")
		assert.True(t, apperr.HasCode(err, apperr.CodeInvalidRating), "rating %d: got %v", rating, err)
	}
	_, err = f.evaluations.Submit(f.ctx, f.customer, s.ID, 3, strings.Repeat("x", 2001))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.evaluations.Submit(f.ctx, actor(lifecycle.RoleCustomer), s.ID, 3, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized), "got %v", err)
	_, err = f.evaluations.Submit(f.ctx, f.employer, s.ID, 3, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized), "got %v", err)

	assert.Equal(t, model.SessionStatusCompleted, f.status(t, s.ID))
	_, err = f.evaluations.Get(f.ctx, s.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
