package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tutor-service/internal/models"
	"tutor-service/internal/storage"
	"tutor-service/pkg/response"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, response.ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505", Message: "duplicate key"}, response.ErrConflict},
		{"exclusion violation", &pq.Error{Code: "23P01", Message: "conflicting key value"}, response.ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503", Message: "violates foreign key"}, response.ErrNotFound},
		{"check violation", &pq.Error{Code: "23514", Message: "violates check constraint"}, response.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("storage.postgres.Test", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "storage.postgres.Test")
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		cause := &pq.Error{Code: "57014", Message: "canceling statement"}
		err := mapError("op", cause)

		var pqErr *pq.Error
		require.ErrorAs(t, err, &pqErr)
		for _, sentinel := range []error{response.ErrNotFound, response.ErrConflict, response.ErrBadRequest} {
			assert.NotErrorIs(t, err, sentinel)
		}
	})
}

func newMock(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &Storage{db: db, q: db}, mock
}

func TestBookDate(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	dateID, studentID := uuid.New(), uuid.New()

	query := regexp.QuoteMeta(`UPDATE dates SET status = 'booked', student_id = $2 WHERE id = $1 AND status = 'available'`)
	mock.ExpectExec(query).WithArgs(dateID.String(), studentID.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs(dateID.String(), studentID.String()).WillReturnResult(sqlmock.NewResult(0, 0))

	booked, err := s.BookDate(ctx, dateID, studentID)
	require.NoError(t, err)
	assert.True(t, booked)

	booked, err = s.BookDate(ctx, dateID, studentID)
	require.NoError(t, err)
	assert.False(t, booked)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDateStatus(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE dates SET status = $2, student_id = NULL WHERE id = $1`)).
		WithArgs(id.String(), "canceled").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE dates SET status = $2 WHERE id = $1`)).
		WithArgs(id.String(), "booked").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.SetDateStatus(ctx, id, models.DateCanceled))
	assert.ErrorIs(t, s.SetDateStatus(ctx, id, models.DateBooked), response.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRollsBack(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()
	dateID, studentID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE dates SET status = 'booked'`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key"})
	mock.ExpectRollback()

	err := s.Tx(ctx, func(q storage.Querier) error {
		_, err := q.BookDate(ctx, dateID, studentID)
		return err
	})
	assert.ErrorIs(t, err, response.ErrConflict)

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, s.Tx(ctx, func(storage.Querier) error { return nil }))

	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")
	assert.ErrorIs(t, s.Tx(ctx, func(storage.Querier) error { return boom }), boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
