package progress

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fadilmartias/jobmarket/internal/model"
)

func template(steps, itemsPerStep int) *model.JobTemplate {
	tpl := &model.JobTemplate{ID: uuid.New()}
	for i := 0; i < steps; i++ {
		s := model.JobStep{ID: uuid.New(), TemplateID: tpl.ID, StepOrder: i + 1}
		for j := 0; j < itemsPerStep; j++ {
			s.ChecklistItems = append(s.ChecklistItems, model.JobStepChecklistItem{ID: uuid.New(), StepID: s.ID, ItemOrder: j + 1})
		}
		tpl.Steps = append(tpl.Steps, s)
	}
	return tpl
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 0, Percent(0, 3))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(3, 3))
	assert.Equal(t, 50, Percent(1, 2))
}

func TestComputeIgnoresForeignRows(t *testing.T) {
	tpl := template(2, 1)
	steps := []model.JobSessionStepProgress{
		{StepID: tpl.Steps[0].ID, IsCompleted: true},
		{StepID: uuid.New(), IsCompleted: true},
	}
	items := []model.JobSessionChecklistProgress{
		{ItemID: tpl.Steps[1].ChecklistItems[0].ID, IsChecked: true},
		{ItemID: uuid.New(), IsChecked: true},
	}

	c := Compute(tpl, steps, items)

	assert.Equal(t, Completion{StepsCompleted: 1, StepsTotal: 2, ItemsChecked: 1, ItemsTotal: 2, Percent: 50}, c)
	assert.Equal(t, 1, c.Remaining())
}

func TestComputeNoSteps(t *testing.T) {
	c := Compute(template(0, 0), nil, nil)
	assert.Equal(t, Completion{}, c)
}

// Random toggle sequences: the derived value always matches an independent
// count of the latest flag per step.
func TestComputeRandomToggleSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		tpl := template(1+rng.Intn(6), rng.Intn(4))
		stepState := map[uuid.UUID]bool{}
		itemState := map[uuid.UUID]bool{}
		itemIDs := tpl.ChecklistItemIDs()

		for n := rng.Intn(40); n > 0; n-- {
			if len(itemIDs) > 0 && rng.Intn(2) == 0 {
				itemState[itemIDs[rng.Intn(len(itemIDs))]] = rng.Intn(2) == 0
			} else {
				stepState[tpl.Steps[rng.Intn(len(tpl.Steps))].ID] = rng.Intn(2) == 0
			}
		}

		var steps []model.JobSessionStepProgress
		wantSteps := 0
		for id, done := range stepState {
			steps = append(steps, model.JobSessionStepProgress{StepID: id, IsCompleted: done})
			if done {
				wantSteps++
			}
		}
		var items []model.JobSessionChecklistProgress
		wantItems := 0
		for id, checked := range itemState {
			items = append(items, model.JobSessionChecklistProgress{ItemID: id, IsChecked: checked})
			if checked {
				wantItems++
			}
		}

		c := Compute(tpl, steps, items)
		assert.Equal(t, wantSteps, c.StepsCompleted)
		assert.Equal(t, len(tpl.Steps), c.StepsTotal)
		assert.Equal(t, wantItems, c.ItemsChecked)
		assert.Equal(t, len(itemIDs), c.ItemsTotal)
		assert.Equal(t, Percent(wantSteps, len(tpl.Steps)), c.Percent)
	}
}
