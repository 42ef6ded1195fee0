package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwhan-dev/timetable-notify/internal/models"
)

func newNotificationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scheduled_notifications WHERE sent = false")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO scheduled_notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO scheduled_notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	records := []models.ScheduledNotification{
		{
			Kind:         models.KindClassReminder,
			Title:        "🔔 Class reminder - Algorithms",
			Body:         "Starts at 9:00",
			ScheduledFor: time.Now().Add(time.Hour),
			ClassPeriod:  "1st",
			ClassName:    "Algorithms",
		},
		{
			Kind:         models.KindAttendanceCheck,
			Title:        "📍 Attendance check - Algorithms",
			Body:         "Class started",
			ScheduledFor: time.Now().Add(time.Hour + 10*time.Minute),
			ClassPeriod:  "1st",
			ClassName:    "Algorithms",
		},
	}

	require.NoError(t, repo.Replace(context.Background(), records))
	assert.NotEmpty(t, records[0].ID, "ids are assigned on insert")
	assert.NotEmpty(t, records[1].ID)
	assert.False(t, records[0].Sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryReplaceRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scheduled_notifications WHERE sent = false")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO scheduled_notifications").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), []models.ScheduledNotification{{Kind: models.KindClassReminder}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListDue(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "notification_type", "title", "body", "scheduled_for", "class_period", "class_name", "class_room", "professor", "sent", "sent_at", "created_at"}).
		AddRow("n-1", "class-reminder", "🔔 Class reminder - Algorithms", "Starts soon", now.Add(-time.Minute), "1st", "Algorithms", "B101", "Prof. Kim", false, nil, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, notification_type, title, body, scheduled_for, class_period, class_name, class_room, professor, sent, sent_at, created_at FROM scheduled_notifications WHERE sent = false AND scheduled_for <= $1 ORDER BY scheduled_for ASC")).
		WithArgs(now).
		WillReturnRows(rows)

	due, err := repo.ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "n-1", due[0].ID)
	assert.Equal(t, models.KindClassReminder, due[0].Kind)
	assert.False(t, due[0].Sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkSent(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_notifications SET sent = true, sent_at = $2 WHERE id = $1")).
		WithArgs("n-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "n-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCountUnsent(t *testing.T) {
	db, mock, cleanup := newNotificationRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM scheduled_notifications WHERE sent = false")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountUnsent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
