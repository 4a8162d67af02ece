package vote

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestInsertVote(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("INSERT INTO report_votes").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := repo.Insert(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertVoteDuplicateIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	// unique_violation from the (report_id, user_id) constraint
	mock.ExpectExec("INSERT INTO report_votes").
		WillReturnError(&pq.Error{Code: "23505"})

	inserted, err := repo.Insert(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteVoteReportsRemoval(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db)

	mock.ExpectExec("DELETE FROM report_votes").
		WillReturnResult(sqlmock.NewResult(0, 1))
	removed, err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, removed)

	mock.ExpectExec("DELETE FROM report_votes").
		WillReturnResult(sqlmock.NewResult(0, 0))
	removed, err = repo.Delete(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
