package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sokol111/mqtt-event-ingestor/pkg/persistence"
	"go.uber.org/zap"
)

type txKey struct{}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// TxFromContext returns the active transaction or persistence.ErrNoTransaction.
func TxFromContext(ctx context.Context) (*sql.Tx, error) {
	if tx, ok := txFromContext(ctx); ok {
		return tx, nil
	}
	return nil, persistence.ErrNoTransaction
}

type sqlTxManager struct {
	db  *DB
	log *zap.Logger
}

// NewTxManager returns a persistence.TxManager backed by database/sql.
func NewTxManager(db *DB, log *zap.Logger) persistence.TxManager {
	return &sqlTxManager{db: db, log: log}
}

// WithTransaction commits when fn returns nil and rolls back on error or panic.
// A call made with a context that already carries a transaction joins it.
func (t *sqlTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) (any, error)) (result any, err error) {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	t.log.Debug("starting transaction")
	tx, err := t.db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			t.rollback(tx)
			panic(p)
		}
	}()

	result, err = fn(context.WithValue(ctx, txKey{}, tx))
	if err != nil {
		t.rollback(tx)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		t.log.Error("transaction commit failed", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.log.Debug("transaction committed successfully")
	return result, nil
}

func (t *sqlTxManager) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.log.Warn("transaction rollback failed", zap.Error(err))
		return
	}
	t.log.Debug("transaction rolled back")
}
