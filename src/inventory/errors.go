package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Engine errors are typed so callers can branch on kind without string
// matching. Retry guidance: ErrBusy is transient and safe to retry with
// backoff; everything else is surfaced as-is.
var (
	ErrNotBookable     = errors.New("event is not open for booking")
	ErrBusy            = errors.New("inventory is busy, retry shortly")
	ErrAlreadyTerminal = errors.New("hold is already in a terminal state")
	ErrHoldExpired     = errors.New("hold has expired")
	ErrAlreadyCanceled = errors.New("booking is already canceled")
	ErrAlreadyExpired  = errors.New("booking has expired")
	ErrSeatInUse       = errors.New("seat is attached to an active hold or sale")
	ErrNotFound        = errors.New("record not found")
	ErrForbidden       = errors.New("operation not allowed for this user")
	ErrInvalidRequest  = errors.New("malformed reservation request")
)

// InsufficientStockError carries the actual availability so callers can
// retry with an adjusted quantity.
type InsufficientStockError struct {
	Requested uint
	Available uint
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d tickets available (requested %d)", e.Available, e.Requested)
}

// SeatsUnavailableError lists the seats that could not be taken.
type SeatsUnavailableError struct {
	Missing []uint
}

func (e *SeatsUnavailableError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("seats no longer available: %s", strings.Join(ids, ","))
}

// StorageError wraps an unexpected storage failure with the operation that
// hit it. The raw driver error stays reachable through Unwrap for logging
// but handlers only ever see the kind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

const (
	pgUniqueViolation      = "23505"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isLockContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

func wrapStorage(op string, err error) error {
	if isLockContention(err) {
		return ErrBusy
	}
	return &StorageError{Op: op, Err: err}
}
