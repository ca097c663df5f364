package sqldb

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Sokol111/mqtt-event-ingestor/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})
	return NewWithDB(sqlDB, DialectPostgres, zap.NewNop()), mock
}

func TestWithTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO event").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	result, err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
		tx, err := TxFromContext(txCtx)
		require.NoError(t, err)
		_, err = tx.ExecContext(txCtx, "INSERT INTO event (topic) VALUES ($1)", "test")
		return "ok", err
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())
	fnErr := errors.New("insert failed")

	mock.ExpectBegin()
	mock.ExpectRollback()

	result, err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
		return nil, fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	assert.Nil(t, result)
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = txManager.WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
			panic("boom")
		})
	})
}

func TestWithTransaction_BeginFails(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	called := false
	_, err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
		called = true
		return nil, nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	assert.False(t, called)
}

func TestWithTransaction_CommitFails(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

	_, err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
		return 1, nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

func TestWithTransaction_NestedJoinsOuter(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := txManager.WithTransaction(context.Background(), func(outer context.Context) (any, error) {
		return txManager.WithTransaction(outer, func(inner context.Context) (any, error) {
			outerTx, _ := TxFromContext(outer)
			innerTx, _ := TxFromContext(inner)
			assert.Same(t, outerTx, innerTx)
			return nil, nil
		})
	})

	require.NoError(t, err)
}

func TestTxFromContext_NoTransaction(t *testing.T) {
	_, err := TxFromContext(context.Background())

	assert.ErrorIs(t, err, persistence.ErrNoTransaction)
}

func TestConn_PrefersTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	txManager := NewTxManager(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()

	assert.Same(t, db.SQL(), db.Conn(context.Background()))

	_, err := txManager.WithTransaction(context.Background(), func(txCtx context.Context) (any, error) {
		tx, _ := TxFromContext(txCtx)
		assert.Same(t, tx, db.Conn(txCtx))
		return nil, nil
	})
	require.NoError(t, err)
}
