package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/config"
	"github.com/fadilmartias/jobmarket/internal/event"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Options carries the knobs shared by every usecase.
type Options struct {
	Now            func() time.Time
	Location       *time.Location
	StartPolicy    string
	MaxHorizonDays int
	Logger         *zap.SugaredLogger
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.StartPolicy == "" {
		o.StartPolicy = config.StartPolicyScheduled
	}
	if o.MaxHorizonDays <= 0 {
		o.MaxHorizonDays = 90
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// core is embedded by the usecases: it owns the store, the clock and the
// outbox-then-publish commit path.
type core struct {
	store *repository.Store
	bus   event.Publisher
	opts  Options
	log   *zap.SugaredLogger
}

func newCore(store *repository.Store, bus event.Publisher, opts Options, name string) core {
	opts = opts.withDefaults()
	return core{store: store, bus: bus, opts: opts, log: opts.Logger.Named(name)}
}

func (c *core) now() time.Time {
	return c.opts.Now().UTC()
}

type emitFunc func(*model.SessionEvent)

// commit runs fn in a transaction, appends every emitted event to the outbox
// in that same transaction and publishes them once it has committed.
func (c *core) commit(ctx context.Context, fn func(tx *repository.Store, emit emitFunc) error) error {
	var pending []*model.SessionEvent
	err := c.store.Transaction(ctx, func(tx *repository.Store) error {
		pending = pending[:0]
		emit := func(ev *model.SessionEvent) { pending = append(pending, ev) }
		if err := fn(tx, emit); err != nil {
			return err
		}
		return tx.Events.Append(ctx, pending)
	})
	if err != nil {
		return err
	}
	if c.bus != nil && len(pending) > 0 {
		out := make([]model.SessionEvent, len(pending))
		for i, ev := range pending {
			out[i] = *ev
		}
		c.bus.Publish(out...)
	}
	return nil
}

func newEvent(kind model.EventKind, templateID uuid.UUID, sessionID *uuid.UUID, actor lifecycle.Actor, from, to string, payload any, at time.Time) *model.SessionEvent {
	ev := &model.SessionEvent{
		Kind:       kind,
		SessionID:  sessionID,
		TemplateID: templateID,
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: at,
	}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			ev.Payload = b
		}
	}
	return ev
}

func sessionEvent(kind model.EventKind, s *model.JobSession, actor lifecycle.Actor, from, to model.SessionStatus, payload any, at time.Time) *model.SessionEvent {
	id := s.ID
	return newEvent(kind, s.TemplateID, &id, actor, string(from), string(to), payload, at)
}

// Page normalises 1-based paging input.
func Page(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func requireRole(a lifecycle.Actor, roles ...lifecycle.Role) error {
	for _, r := range roles {
		if a.Is(r) {
			return nil
		}
	}
	return apperr.NotAuthorized("role " + string(a.Role) + " cannot perform this action")
}

// authorizeSession checks that a may drive a transition whose rule is
// reserved for role on session s of template tpl.
func authorizeSession(a lifecycle.Actor, role lifecycle.Role, s *model.JobSession, tpl *model.JobTemplate) error {
	if !a.Is(role) {
		return apperr.NotAuthorized("only the " + string(role) + " may perform this transition")
	}
	switch role {
	case lifecycle.RoleEmployer:
		if !tpl.OwnedBy(a.ID) {
			return apperr.NotAuthorized("session belongs to another employer")
		}
	case lifecycle.RoleEmployee:
		if !a.Active() {
			return apperr.EmployeeNotEligible(a.ID.String())
		}
		if s.AssignedToID() != a.ID {
			return apperr.NotAuthorized("session is assigned to another employee")
		}
	case lifecycle.RoleCustomer:
		if tpl.CustomerID == nil || *tpl.CustomerID != a.ID {
			return apperr.NotAuthorized("session belongs to another customer")
		}
	}
	return nil
}
