package usecase

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/model"
)

func TestCompleteRequiresEveryStep(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.started(t, 3, 0)
	ids := tpl.StepIDs()

	for _, id := range ids[:2] {
		_, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, id, true)
		require.NoError(t, err)
	}
	_, err := f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.True(t, apperr.HasCode(err, apperr.CodeIncompleteSteps), "got %v", err)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, 1, e.Remaining)
	assert.Equal(t, model.SessionStatusInProgress, f.status(t, s.ID))

	c, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, ids[2], true)
	require.NoError(t, err)
	assert.Equal(t, 100, c.Percent)

	done, err := f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
}

func TestUncheckedChecklistDoesNotBlockCompletion(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.started(t, 1, 3)

	_, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, tpl.StepIDs()[0], true)
	require.NoError(t, err)
	c, err := f.progress.Completion(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, c.ItemsChecked)
	assert.Equal(t, 3, c.ItemsTotal)

	_, err = f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
}

func TestRandomTogglesKeepCompletionConsistent(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.started(t, 4, 2)
	steps := tpl.StepIDs()
	items := tpl.ChecklistItemIDs()

	rng := rand.New(rand.NewSource(7))
	doneSteps := map[uuid.UUID]bool{}
	checked := map[uuid.UUID]bool{}
	for i := 0; i < 60; i++ {
		if rng.Intn(2) == 0 {
			id := steps[rng.Intn(len(steps))]
			v := rng.Intn(2) == 0
			doneSteps[id] = v
			_, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, id, v)
			require.NoError(t, err)
		} else {
			id := items[rng.Intn(len(items))]
			v := rng.Intn(2) == 0
			checked[id] = v
			_, err := f.progress.ToggleChecklistItem(f.ctx, f.employee, s.ID, id, v)
			require.NoError(t, err)
		}

		c, err := f.progress.Completion(f.ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, count(doneSteps), c.StepsCompleted)
		assert.Equal(t, count(checked), c.ItemsChecked)
		assert.Equal(t, len(steps), c.StepsTotal)
		assert.Equal(t, len(items), c.ItemsTotal)
		assert.Equal(t, count(doneSteps)*25, c.Percent)
	}
}

func count(m map[uuid.UUID]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

func TestToggleRejections(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.approved(t, 2, 1)
	stepID := tpl.StepIDs()[0]

	_, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, stepID, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionNotActive), "got %v", err)

	_, err = f.sessions.Start(f.ctx, f.employee, s.ID)
	require.NoError(t, err)

	_, err = f.progress.ToggleStep(f.ctx, f.employee, s.ID, uuid.New(), true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = f.progress.ToggleChecklistItem(f.ctx, f.employee, s.ID, stepID, true)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.progress.ToggleStep(f.ctx, actor(lifecycle.RoleEmployee), s.ID, stepID, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized), "got %v", err)
	_, err = f.progress.ToggleStep(f.ctx, f.employer, s.ID, stepID, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotAuthorized), "got %v", err)

	for _, id := range tpl.StepIDs() {
		_, err = f.progress.ToggleStep(f.ctx, f.employee, s.ID, id, true)
		require.NoError(t, err)
	}
	_, err = f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.NoError(t, err)

	_, err = f.progress.ToggleStep(f.ctx, f.employee, s.ID, stepID, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeSessionLocked), "got %v", err)
	c, err := f.progress.Completion(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.StepsCompleted)
}

func TestToggleIsIdempotent(t *testing.T) {
	f := newFixture(t)
	tpl, s := f.started(t, 2, 0)
	id := tpl.StepIDs()[0]

	for i := 0; i < 3; i++ {
		c, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, id, true)
		require.NoError(t, err)
		assert.Equal(t, 1, c.StepsCompleted)
		assert.Equal(t, 50, c.Percent)
	}
	steps, _, err := f.progress.Rows(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, steps, 2)
}
