package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/locker"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
	"github.com/fadilmartias/jobmarket/internal/repository/repotest"
)

// 2026-10-14 is a Wednesday.
var wednesday = time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	clock time.Time
	store *repository.Store
	bus   *event.Bus

	templates   *TemplateUsecase
	generator   *GeneratorUsecase
	sessions    *SessionUsecase
	progress    *ProgressUsecase
	evaluations *EvaluationUsecase

	employer lifecycle.Actor
	employee lifecycle.Actor
	customer lifecycle.Actor

	drafts int
}

func newFixture(t *testing.T, tweak ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		clock:    wednesday,
		store:    repotest.Store(t),
		employer: actor(lifecycle.RoleEmployer),
		employee: actor(lifecycle.RoleEmployee),
		customer: actor(lifecycle.RoleCustomer),
	}
	log := zaptest.NewLogger(t).Sugar()
	f.bus = event.NewBus(log)
	t.Cleanup(f.bus.Close)

	opts := Options{Now: func() time.Time { return f.clock }, Logger: log, MaxHorizonDays: 60}
	for _, fn := range tweak {
		fn(&opts)
	}
	locks := locker.New(8)
	f.templates = NewTemplateUsecase(f.store, f.bus, opts)
	f.generator = NewGeneratorUsecase(f.store, f.bus, locks, opts)
	f.sessions = NewSessionUsecase(f.store, f.bus, locks, opts)
	f.progress = NewProgressUsecase(f.store, f.bus, opts)
	f.evaluations = NewEvaluationUsecase(f.store, f.bus, opts)
	return f
}

func actor(role lifecycle.Role) lifecycle.Actor {
	return lifecycle.Actor{ID: uuid.New(), Role: role, Status: lifecycle.AccountActive}
}

func steps(n, itemsPerStep int) []model.JobStep {
	out := make([]model.JobStep, n)
	for i := range out {
		out[i] = model.JobStep{Title: "Step", StepOrder: i + 1}
		for j := 0; j < itemsPerStep; j++ {
			out[i].ChecklistItems = append(out[i].ChecklistItems, model.JobStepChecklistItem{Text: "Item", ItemOrder: j + 1})
		}
	}
	return out
}

// draft creates a MON/WED template owned by f.employer. The first one gets
// job code T, later ones T2, T3 and so on.
func (f *fixture) draft(t *testing.T, nSteps, itemsPerStep int) *model.JobTemplate {
	t.Helper()
	f.drafts++
	code := "T"
	if f.drafts > 1 {
		code = fmt.Sprintf("T%d", f.drafts)
	}
	tpl, err := f.templates.Create(f.ctx, f.employer, &model.JobTemplate{
		JobCode:     code,
		CustomerID:  &f.customer.ID,
		Title:       "Office cleaning",
		IsRecurring: true,
		Frequency:   model.FrequencyWeekly,
		Weekdays:    model.Weekdays{time.Monday, time.Wednesday},
		StartTime:   "09:00",
		EndTime:     "12:00",
		Rate:        45,
		Steps:       steps(nSteps, itemsPerStep),
	})
	require.NoError(t, err)
	return tpl
}

func (f *fixture) active(t *testing.T, nSteps, itemsPerStep int) *model.JobTemplate {
	t.Helper()
	tpl := f.draft(t, nSteps, itemsPerStep)
	tpl, err := f.templates.Activate(f.ctx, f.employer, tpl.ID)
	require.NoError(t, err)
	return tpl
}

// offered returns the first generated session (scheduled today).
func (f *fixture) offered(t *testing.T, nSteps, itemsPerStep int) (*model.JobTemplate, *model.JobSession) {
	t.Helper()
	tpl := f.active(t, nSteps, itemsPerStep)
	sessions, err := f.generator.Generate(f.ctx, f.employer, tpl.ID, 14)
	require.NoError(t, err)
	require.NotEmpty(t, sessions)
	return tpl, &sessions[0]
}

func (f *fixture) approved(t *testing.T, nSteps, itemsPerStep int) (*model.JobTemplate, *model.JobSession) {
	t.Helper()
	tpl, s := f.offered(t, nSteps, itemsPerStep)
	_, err := f.sessions.Claim(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
	s, err = f.sessions.Approve(f.ctx, f.employer, s.ID)
	require.NoError(t, err)
	return tpl, s
}

func (f *fixture) started(t *testing.T, nSteps, itemsPerStep int) (*model.JobTemplate, *model.JobSession) {
	t.Helper()
	tpl, s := f.approved(t, nSteps, itemsPerStep)
	s, err := f.sessions.Start(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
	return tpl, s
}

func (f *fixture) completed(t *testing.T) (*model.JobTemplate, *model.JobSession) {
	t.Helper()
	tpl, s := f.started(t, 2, 0)
	for _, id := range tpl.StepIDs() {
		_, err := f.progress.ToggleStep(f.ctx, f.employee, s.ID, id, true)
		require.NoError(t, err)
	}
	s, err := f.sessions.Complete(f.ctx, f.employee, s.ID)
	require.NoError(t, err)
	return tpl, s
}

func (f *fixture) status(t *testing.T, id uuid.UUID) model.SessionStatus {
	t.Helper()
	s, err := f.store.Sessions.FindByID(f.ctx, id)
	require.NoError(t, err)
	return s.Status
}

func (f *fixture) kinds(t *testing.T, id uuid.UUID) []model.EventKind {
	t.Helper()
	events, err := f.sessions.History(f.ctx, id)
	require.NoError(t, err)
	out := make([]model.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
