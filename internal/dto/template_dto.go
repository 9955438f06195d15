package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/model"
)

const DateLayout = "2006-01-02"

type ChecklistItemRequest struct {
	Text      string `json:"text"`
	ItemOrder int    `json:"item_order"`
}

type StepRequest struct {
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	ProductsNeeded string                 `json:"products_needed"`
	StepOrder      int                    `json:"step_order"`
	ChecklistItems []ChecklistItemRequest `json:"checklist_items"`
}

type CreateTemplateRequest struct {
	JobCode         string        `json:"job_code"`
	CustomerID      *uuid.UUID    `json:"customer_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Address         string        `json:"address"`
	DurationMinutes int           `json:"duration_minutes"`
	StartTime       string        `json:"start_time"`
	EndTime         string        `json:"end_time"`
	Rate            float64       `json:"rate"`
	IsRecurring     bool          `json:"is_recurring"`
	Frequency       string        `json:"frequency"`
	Weekdays        []string      `json:"weekdays"`
	OneOffDate      string        `json:"one_off_date"`
	StartsOn        string        `json:"starts_on"`
	EndsOn          string        `json:"ends_on"`
	Steps           []StepRequest `json:"steps"`
}

type ReplaceStepsRequest struct {
	Steps []StepRequest `json:"steps"`
}

// ToModel converts the request, reporting unparseable dates and weekdays as
// validation errors.
func (r CreateTemplateRequest) ToModel() (*model.JobTemplate, error) {
	fields := map[string]string{}
	weekdays, err := model.ParseWeekdays(r.Weekdays)
	if err != nil {
		fields["weekdays"] = err.Error()
	}
	oneOff := parseDate(r.OneOffDate, "one_off_date", fields)
	startsOn := parseDate(r.StartsOn, "starts_on", fields)
	endsOn := parseDate(r.EndsOn, "ends_on", fields)
	if len(fields) > 0 {
		return nil, apperr.Invalid("invalid template", fields)
	}
	return &model.JobTemplate{
		JobCode:         r.JobCode,
		CustomerID:      r.CustomerID,
		Title:           r.Title,
		Description:     r.Description,
		Address:         r.Address,
		DurationMinutes: r.DurationMinutes,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Rate:            r.Rate,
		IsRecurring:     r.IsRecurring,
		Frequency:       model.Frequency(r.Frequency),
		Weekdays:        weekdays,
		OneOffDate:      oneOff,
		StartsOn:        startsOn,
		EndsOn:          endsOn,
		Steps:           StepsToModel(r.Steps),
	}, nil
}

func StepsToModel(in []StepRequest) []model.JobStep {
	steps := make([]model.JobStep, 0, len(in))
	for _, s := range in {
		items := make([]model.JobStepChecklistItem, 0, len(s.ChecklistItems))
		for _, it := range s.ChecklistItems {
			items = append(items, model.JobStepChecklistItem{Text: it.Text, ItemOrder: it.ItemOrder})
		}
		steps = append(steps, model.JobStep{
			Title:          s.Title,
			Description:    s.Description,
			ProductsNeeded: s.ProductsNeeded,
			StepOrder:      s.StepOrder,
			ChecklistItems: items,
		})
	}
	return steps
}

func parseDate(v, field string, fields map[string]string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		fields[field] = "must be YYYY-MM-DD"
		return nil
	}
	return &t
}

// ParseDate parses an optional YYYY-MM-DD query value.
func ParseDate(v, field string) (*time.Time, error) {
	fields := map[string]string{}
	t := parseDate(v, field, fields)
	if len(fields) > 0 {
		return nil, apperr.Invalid("invalid date", fields)
	}
	return t, nil
}
