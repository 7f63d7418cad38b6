package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ellavondegurechaff/gohye-trades/internal/domain/trades"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

// mapError translates driver errors into trade error kinds. Errors it does
// not recognise are wrapped with action.
func mapError(err error, action string) error {
	if err == nil {
		return nil
	}
	if trades.KindOf(err) != nil {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, trades.ErrNotFound)
	}
	if isRetryable(err) {
		return fmt.Errorf("%s: %w: %w", action, trades.ErrConflict, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// isRetryable reports serialization failures, deadlocks and sqlite lock
// contention; the caller may run the whole operation again.
func isRetryable(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected:
			return true
		}
		return false
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == sqlStateUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
