// Package progress derives session completion from progress rows.
package progress

import (
	"math"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/model"
)

type Completion struct {
	StepsCompleted int `json:"steps_completed"`
	StepsTotal     int `json:"steps_total"`
	ItemsChecked   int `json:"items_checked"`
	ItemsTotal     int `json:"items_total"`
	Percent        int `json:"percent"`
}

// Remaining is the number of steps not yet completed.
func (c Completion) Remaining() int {
	return c.StepsTotal - c.StepsCompleted
}

// Compute counts completed steps and checked items of tpl. Rows for steps or
// items that do not belong to tpl are ignored.
func Compute(tpl *model.JobTemplate, steps []model.JobSessionStepProgress, items []model.JobSessionChecklistProgress) Completion {
	stepSet := make(map[uuid.UUID]bool, len(tpl.Steps))
	itemSet := make(map[uuid.UUID]bool)
	for _, s := range tpl.Steps {
		stepSet[s.ID] = true
		for _, it := range s.ChecklistItems {
			itemSet[it.ID] = true
		}
	}

	c := Completion{StepsTotal: len(stepSet), ItemsTotal: len(itemSet)}
	done := make(map[uuid.UUID]bool, len(steps))
	for _, row := range steps {
		if row.IsCompleted && stepSet[row.StepID] && !done[row.StepID] {
			done[row.StepID] = true
			c.StepsCompleted++
		}
	}
	checked := make(map[uuid.UUID]bool, len(items))
	for _, row := range items {
		if row.IsChecked && itemSet[row.ItemID] && !checked[row.ItemID] {
			checked[row.ItemID] = true
			c.ItemsChecked++
		}
	}
	c.Percent = Percent(c.StepsCompleted, c.StepsTotal)
	return c
}

// Percent is round(done/total*100), 0 when total is 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
