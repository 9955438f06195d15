package repository

import (
	"context"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/model"
)

// Store bundles the repositories over one *gorm.DB. Inside Transaction every
// repository shares the transaction handle.
type Store struct {
	db          *gorm.DB
	Templates   *TemplateRepository
	Sessions    *SessionRepository
	Progress    *ProgressRepository
	Evaluations *EvaluationRepository
	Events      *EventRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Templates:   NewTemplateRepository(db),
		Sessions:    NewSessionRepository(db),
		Progress:    NewProgressRepository(db),
		Evaluations: NewEvaluationRepository(db),
		Events:      NewEventRepository(db),
	}
}

// Transaction runs fn inside one database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates every table the engine uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.JobTemplate{},
		&model.JobStep{},
		&model.JobStepChecklistItem{},
		&model.JobSession{},
		&model.JobSessionStepProgress{},
		&model.JobSessionChecklistProgress{},
		&model.Evaluation{},
		&model.SessionEvent{},
	)
	if err != nil {
		return errors.Wrap(err, "migrate")
	}
	return nil
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource, id)
	}
	return errors.Wrapf(err, "find %s %s", resource, id)
}
