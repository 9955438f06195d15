package repository_test

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fadilmartias/jobmarket/internal/model"
	"github.com/fadilmartias/jobmarket/internal/repository"
	"github.com/fadilmartias/jobmarket/internal/repository/repotest"
)

func outboxEvent(kind model.EventKind) *model.SessionEvent {
	return &model.SessionEvent{
		Kind:       kind,
		TemplateID: uuid.New(),
		ActorID:    uuid.New(),
		ActorRole:  "EMPLOYER",
		OccurredAt: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestAppendLocksSequenceBeforeInsertOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec(`SELECT pg_advisory_xact_lock\(\$1\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "session_events" .* RETURNING "seq"`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(41))
	mock.ExpectQuery(`INSERT INTO "session_events" .* RETURNING "seq"`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))

	events := []*model.SessionEvent{outboxEvent(model.EventSessionClaimed), outboxEvent(model.EventSessionApproved)}
	require.NoError(t, repository.NewEventRepository(db).Append(ctx, events))

	assert.Equal(t, uint64(41), events[0].Seq)
	assert.Equal(t, uint64(42), events[1].Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendWithoutEventsSkipsLock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, repository.NewEventRepository(db).Append(ctx, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAndAfterOnSqlite(t *testing.T) {
	store := repotest.Store(t)
	first := []*model.SessionEvent{outboxEvent(model.EventTemplateCreated)}
	second := []*model.SessionEvent{outboxEvent(model.EventTemplateActivated), outboxEvent(model.EventSessionOffered)}
	require.NoError(t, store.Events.Append(ctx, first))
	require.NoError(t, store.Events.Append(ctx, second))
	assert.Less(t, first[0].Seq, second[0].Seq)

	events, err := store.Events.After(ctx, first[0].Seq, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventTemplateActivated, events[0].Kind)
	assert.Equal(t, model.EventSessionOffered, events[1].Kind)
}
