// Package recurrence expands a template's recurrence rule into calendar dates.
//
// Dates are calendar days represented as midnight UTC, independent of the
// location the caller's "today" was computed in.
package recurrence

import (
	"time"

	"github.com/fadilmartias/jobmarket/internal/model"
)

type Rule struct {
	Recurring bool
	Frequency model.Frequency
	Weekdays  model.Weekdays
	OneOff    *time.Time
	StartsOn  *time.Time
	EndsOn    *time.Time
	// Anchor fixes which weeks count for BIWEEKLY rules.
	Anchor time.Time
}

func FromTemplate(t *model.JobTemplate) Rule {
	anchor := t.CreatedAt
	if t.StartsOn != nil {
		anchor = *t.StartsOn
	}
	return Rule{
		Recurring: t.IsRecurring,
		Frequency: t.Frequency,
		Weekdays:  t.Weekdays,
		OneOff:    t.OneOffDate,
		StartsOn:  t.StartsOn,
		EndsOn:    t.EndsOn,
		Anchor:    Day(anchor),
	}
}

// Day truncates t to its calendar date in t's own location, as midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

// Dates lists the dates in [from, from+horizonDays) the rule produces, ascending.
func Dates(r Rule, from time.Time, horizonDays int) []time.Time {
	if horizonDays <= 0 {
		return nil
	}
	start := Day(from)
	end := start.AddDate(0, 0, horizonDays)

	if !r.Recurring {
		if r.OneOff == nil {
			return nil
		}
		d := Day(*r.OneOff)
		if d.Before(start) || !d.Before(end) {
			return nil
		}
		return []time.Time{d}
	}

	var out []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if r.matches(d) {
			out = append(out, d)
		}
	}
	return out
}

func (r Rule) matches(d time.Time) bool {
	if !r.Weekdays.Contains(d.Weekday()) {
		return false
	}
	if r.StartsOn != nil && d.Before(Day(*r.StartsOn)) {
		return false
	}
	if r.EndsOn != nil && d.After(Day(*r.EndsOn)) {
		return false
	}
	if r.Frequency == model.FrequencyBiweekly {
		return weeksBetween(r.Anchor, d)%2 == 0
	}
	return true
}

// weeksBetween counts Monday-based weeks from a to b.
func weeksBetween(a, b time.Time) int {
	wa := mondayOf(a)
	wb := mondayOf(b)
	days := int(wb.Sub(wa).Hours() / 24)
	w := days / 7
	if w < 0 {
		w = -w
	}
	return w
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return Day(t).AddDate(0, 0, -offset)
}
