package repository_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
	"github.com/fadilmartias/jobmarket/internal/repository/repotest"
)

func TestFindByIDOrdersStepsAndItems(t *testing.T) {
	store := repotest.Store(t)
	tpl := &model.JobTemplate{
		EmployerID: uuid.New(),
		JobCode:    "ORDER",
		Title:      "Ordered",
		Steps: []model.JobStep{
			{Title: "third", StepOrder: 3},
			{Title: "first", StepOrder: 1, ChecklistItems: []model.JobStepChecklistItem{
				{Text: "b", ItemOrder: 2}, {Text: "a", ItemOrder: 1},
			}},
			{Title: "second", StepOrder: 2},
		},
	}
	require.NoError(t, store.Templates.Create(ctx, tpl))

	got, err := store.Templates.FindByID(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 3)
	assert.Equal(t, "first", got.Steps[0].Title)
	assert.Equal(t, "third", got.Steps[2].Title)
	assert.Equal(t, "a", got.Steps[0].ChecklistItems[0].Text)

	_, err = store.Templates.FindByID(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestReserveSessionSeqIsMonotonic(t *testing.T) {
	store := repotest.Store(t)
	tpl := seedTemplate(t, store, 0)

	first, err := store.Templates.ReserveSessionSeq(ctx, tpl.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	next, err := store.Templates.ReserveSessionSeq(ctx, tpl.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestUpdateStatusIf(t *testing.T) {
	store := repotest.Store(t)
	tpl := seedTemplate(t, store, 0)

	ok, err := store.Templates.UpdateStatusIf(ctx, tpl.ID, []model.TemplateStatus{model.TemplateStatusDraft}, model.TemplateStatusArchived)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Templates.UpdateStatusIf(ctx, tpl.ID, []model.TemplateStatus{model.TemplateStatusActive}, model.TemplateStatusArchived)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := store.Templates.ListActiveIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReplaceStepsDropsOldChecklist(t *testing.T) {
	store := repotest.Store(t)
	tpl := seedTemplate(t, store, 2)

	require.NoError(t, store.Templates.ReplaceSteps(ctx, tpl.ID, []model.JobStep{{Title: "only", StepOrder: 1}}))
	got, err := store.Templates.FindByID(ctx, tpl.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 1)
	assert.Empty(t, got.ChecklistItemIDs())

	var orphans int64
	require.NoError(t, store.DB().Model(&model.JobStepChecklistItem{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestTouchMissingTemplate(t *testing.T) {
	store := repotest.Store(t)
	err := store.Templates.Touch(ctx, uuid.New(), time.Now())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTransactionRollsBack(t *testing.T) {
	store := repotest.Store(t)
	tpl := seedTemplate(t, store, 0)

	err := store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Templates.ReserveSessionSeq(ctx, tpl.ID, 3); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	first, err := store.Templates.ReserveSessionSeq(ctx, tpl.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
}
