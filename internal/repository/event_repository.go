package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fadilmartias/jobmarket/internal/model"
)

// eventSeqLock is the advisory lock key that serializes outbox appends on
// Postgres. It is held until the surrounding transaction ends, so seq values
// become visible in the order they were handed out.
const eventSeqLock int64 = 0x6a6f62657674

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db}
}

// Append writes the events and fills their Seq. It must be the last write of
// its transaction: on Postgres it takes a transaction-scoped advisory lock
// first, so a reader paging by seq never sees a later seq commit before an
// earlier one.
func (r *EventRepository) Append(ctx context.Context, events []*model.SessionEvent) error {
	if len(events) == 0 {
		return nil
	}
	if r.db.Dialector.Name() == "postgres" {
		if err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", eventSeqLock).Error; err != nil {
			return errors.Wrap(err, "lock event sequence")
		}
	}
	for _, ev := range events {
		if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
			return errors.Wrapf(err, "append %s event", ev.Kind)
		}
	}
	return nil
}

// After returns up to limit events with Seq greater than after, oldest first.
func (r *EventRepository) After(ctx context.Context, after uint64, limit int) ([]model.SessionEvent, error) {
	var out []model.SessionEvent
	err := r.db.WithContext(ctx).
		Where("seq > ?", after).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error
	return out, errors.Wrap(err, "list events")
}

func (r *EventRepository) BySession(ctx context.Context, sessionID uuid.UUID) ([]model.SessionEvent, error) {
	var out []model.SessionEvent
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&out).Error
	return out, errors.Wrap(err, "list session events")
}
