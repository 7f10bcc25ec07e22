// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helenatai/chemucl/db"
	"github.com/helenatai/chemucl/models"
)

func setupMockStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Store) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, mock, New(conn, db.Postgres, zap.NewNop())
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "round_id", "location_id", "location_code", "location_name", "status",
		"created_at", "started_at", "paused_at", "completed_at",
	})
}

func TestPostgres_GetSessionLocksRow(t *testing.T) {
	_, mock, s := setupMockStore(t)
	ctx := t.Context()
	started := t0.Add(time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM audit_session WHERE id = \$1 FOR UPDATE`).
		WithArgs("s-1").
		WillReturnRows(sessionRows().AddRow(
			"s-1", "r-1", "loc-1", "LOC-1", "Lab A", "in_progress",
			t0, started, nil, nil,
		))
	mock.ExpectCommit()

	var got *models.AuditSession
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		got, err = tx.GetSession(ctx, "s-1", true)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Nil(t, got.PausedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ReadsDoNotLock(t *testing.T) {
	_, mock, s := setupMockStore(t)

	mock.ExpectQuery(`FROM audit_session WHERE id = \$1$`).
		WithArgs("s-1").
		WillReturnRows(sessionRows())

	_, err := s.GetSession(t.Context(), "s-1")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FinishSession(t *testing.T) {
	_, mock, s := setupMockStore(t)
	ctx := t.Context()
	at := t0.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE audit_round\s+SET pending_count = pending_count - 1`).
		WithArgs("r-1", at).
		WillReturnRows(sqlmock.NewRows([]string{"pending_count", "finished_count"}).AddRow(0, 3))
	mock.ExpectCommit()

	var pending, finished int
	err := s.WithTx(ctx, func(tx *Tx) error {
		var err error
		pending, finished, err = tx.FinishSession(ctx, "r-1", at)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 0, pending)
	assert.Equal(t, 3, finished)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FinishSessionNothingPending(t *testing.T) {
	_, mock, s := setupMockStore(t)
	ctx := t.Context()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE audit_round`).
		WillReturnRows(sqlmock.NewRows([]string{"pending_count", "finished_count"}))
	mock.ExpectRollback()

	err := s.WithTx(ctx, func(tx *Tx) error {
		_, _, err := tx.FinishSession(ctx, "r-1", t0)
		return err
	})

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UniqueViolationIsDuplicate(t *testing.T) {
	_, mock, s := setupMockStore(t)
	ctx := t.Context()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO audit_round`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := s.WithTx(ctx, func(tx *Tx) error {
		return tx.InsertRound(ctx, &models.AuditRound{
			ID: "r-2", RoundNumber: 7, Auditor: "jdoe", Status: models.RoundNotStarted,
			CreatedAt: t0, LastActivityAt: t0,
		})
	})

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.ErrorIs(t, err, ErrRoundNumberTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_OtherErrorsPassThrough(t *testing.T) {
	_, mock, s := setupMockStore(t)
	ctx := t.Context()
	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE audit_record`).
		WithArgs("s-1", "missing", "pending").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := s.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ReconcileMissing(ctx, "s-1")
		return err
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CommitFailure(t *testing.T) {
	_, mock, s := setupMockStore(t)
	ctx := t.Context()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE audit_round SET last_activity_at = \$2 WHERE id = \$1`).
		WithArgs("r-1", t0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := s.WithTx(ctx, func(tx *Tx) error {
		return tx.TouchRound(ctx, "r-1", t0)
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}
