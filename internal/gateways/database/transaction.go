package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

const DefaultTxTimeout = 10 * time.Second

type TransactionOptions struct {
	IsolationLevel sql.IsolationLevel
	Timeout        time.Duration
}

func SerializableTransactionOptions() *TransactionOptions {
	return &TransactionOptions{
		IsolationLevel: sql.LevelSerializable,
		Timeout:        DefaultTxTimeout,
	}
}

// WithTransaction runs fn in a transaction that commits or rolls back as a
// whole. Cancelling ctx after the transaction has begun does not abort it;
// only the timeout in opts does.
func (db *DB) WithTransaction(ctx context.Context, opts *TransactionOptions, fn func(context.Context, bun.Tx) error) error {
	if opts == nil {
		opts = SerializableTransactionOptions()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	// sqlite only understands the default isolation level
	var txOpts *sql.TxOptions
	if db.IsPostgres() {
		txOpts = &sql.TxOptions{Isolation: opts.IsolationLevel}
	}

	tx, err := db.bunDB.BeginTx(txCtx, txOpts)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
