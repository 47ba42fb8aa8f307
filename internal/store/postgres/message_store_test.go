package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/travel-buddies/travel-buddies-backend/errors"
)

func TestMessageStore_AppendMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewMessageStore(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO trip_messages`).
		WithArgs("trip-1", "user-1", "hello", false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("msg-1", now))

	msg, err := s.AppendMessage(context.Background(), "trip-1", "user-1", "hello", false)
	require.NoError(t, err)

	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "trip-1", msg.TripID)
	assert.Equal(t, "user-1", msg.AuthorID)
	assert.Equal(t, "hello", msg.Content)
	assert.False(t, msg.IsSystem)
	assert.Equal(t, now, msg.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_AppendMessage_RejectsEmptyContent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewMessageStore(mock)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := s.AppendMessage(context.Background(), "trip-1", "user-1", content, false)
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ValidationError, appErr.Type)
	}

	// No SQL may be issued for rejected content.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_AppendMessage_StorageFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewMessageStore(mock)

	mock.ExpectQuery(`INSERT INTO trip_messages`).
		WithArgs("trip-1", "user-1", "hello", false).
		WillReturnError(errors.New("connection reset"))

	_, err = s.AppendMessage(context.Background(), "trip-1", "user-1", "hello", false)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.DatabaseError, appErr.Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_ListMessages(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewMessageStore(mock)
	t0 := time.Now()
	t1 := t0.Add(time.Second)

	mock.ExpectQuery(`SELECT (.+) FROM trip_messages m`).
		WithArgs("trip-1", 0, 50).
		WillReturnRows(pgxmock.
			NewRows([]string{"id", "trip_id", "author_id", "content", "is_system", "created_at", "username"}).
			AddRow("m1", "trip-1", "u1", "first", false, t0, "alice").
			AddRow("m2", "trip-1", "u2", "second", false, t1, "bob"))

	messages, err := s.ListMessages(context.Background(), "trip-1", 0, 50)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "alice", messages[0].AuthorUsername)
	assert.Equal(t, "second", messages[1].Content)
	assert.True(t, !messages[1].CreatedAt.Before(messages[0].CreatedAt))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageStore_ListMessages_ClampsPagination(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewMessageStore(mock)

	// Negative skip becomes 0, oversized limit is clamped to the maximum.
	mock.ExpectQuery(`SELECT (.+) FROM trip_messages m`).
		WithArgs("trip-1", 0, maxMessagePageSize).
		WillReturnRows(pgxmock.NewRows([]string{"id", "trip_id", "author_id", "content", "is_system", "created_at", "username"}))

	_, err = s.ListMessages(context.Background(), "trip-1", -5, 10000)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
