// Package lifecycle holds the legal-transition graph for job sessions.
//
// It is pure: no storage, no clock. The session usecase consults it before
// every conditional update.
package lifecycle

import (
	"github.com/fadilmartias/jobmarket/internal/model"
)

// Rule is one row of the transition table.
type Rule struct {
	From  model.SessionStatus
	To    model.SessionStatus
	Actor Role
	Event model.EventKind
}

var rules = []Rule{
	{model.SessionStatusOffered, model.SessionStatusClaimed, RoleEmployee, model.EventSessionClaimed},
	{model.SessionStatusClaimed, model.SessionStatusApproved, RoleEmployer, model.EventSessionApproved},
	{model.SessionStatusClaimed, model.SessionStatusRefused, RoleEmployer, model.EventSessionRefused},
	{model.SessionStatusApproved, model.SessionStatusInProgress, RoleEmployee, model.EventSessionStarted},
	{model.SessionStatusInProgress, model.SessionStatusCompleted, RoleEmployee, model.EventSessionCompleted},
	{model.SessionStatusCompleted, model.SessionStatusEvaluated, RoleCustomer, model.EventEvaluationSubmitted},
	{model.SessionStatusOffered, model.SessionStatusCancelled, RoleEmployer, model.EventSessionCancelled},
	{model.SessionStatusClaimed, model.SessionStatusCancelled, RoleEmployer, model.EventSessionCancelled},
	{model.SessionStatusApproved, model.SessionStatusCancelled, RoleEmployer, model.EventSessionCancelled},
}

type edge struct {
	from, to model.SessionStatus
}

var table = func() map[edge]Rule {
	m := make(map[edge]Rule, len(rules))
	for _, r := range rules {
		m[edge{r.From, r.To}] = r
	}
	return m
}()

// Lookup returns the rule for from→to.
func Lookup(from, to model.SessionStatus) (Rule, bool) {
	r, ok := table[edge{from, to}]
	return r, ok
}

// CanTransition reports whether from→to is in the table.
func CanTransition(from, to model.SessionStatus) bool {
	_, ok := Lookup(from, to)
	return ok
}

// Targets lists the statuses reachable from s in one step.
func Targets(s model.SessionStatus) []model.SessionStatus {
	var out []model.SessionStatus
	for _, r := range rules {
		if r.From == s {
			out = append(out, r.To)
		}
	}
	return out
}

// Sources lists the statuses from which to is reachable in one step.
func Sources(to model.SessionStatus) []model.SessionStatus {
	var out []model.SessionStatus
	for _, r := range rules {
		if r.To == to {
			out = append(out, r.From)
		}
	}
	return out
}

// Rules returns a copy of the transition table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
