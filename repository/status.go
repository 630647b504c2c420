package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Status classifies the outcome of a store operation.
type Status int

const (
	Ok Status = iota
	ErrorGeneric
	ErrorNotFound
	ErrorAlreadyExists
	ErrorConstraintFailed
	ErrorIO
	ErrorConnection
	ErrorDB
)

// String returns the status name for logs and messages.
func (s Status) String() string {
	switch s {
	case Ok:
		return "Ok"
	case ErrorNotFound:
		return "ErrorNotFound"
	case ErrorAlreadyExists:
		return "ErrorAlreadyExists"
	case ErrorConstraintFailed:
		return "ErrorConstraintFailed"
	case ErrorIO:
		return "ErrorIO"
	case ErrorConnection:
		return "ErrorConnection"
	case ErrorDB:
		return "ErrorDB"
	default:
		return "ErrorGeneric"
	}
}

// StoreError is the (status, message) pair every store mutation reports.
type StoreError struct {
	Status  Status
	Message string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// storeErrorf builds a typed store error.
func storeErrorf(status Status, format string, args ...interface{}) *StoreError {
	return &StoreError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// StatusOf extracts the Status from an error returned by the store.
// A nil error maps to Ok.
func StatusOf(err error) Status {
	if err == nil {
		return Ok
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Status
	}
	return ErrorGeneric
}

// classify maps driver errors onto the store taxonomy. Duplicate-key and
// not-found conditions become typed statuses; everything else surfaces as a
// database error.
func classify(err error, context string) *StoreError {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storeErrorf(ErrorNotFound, "%s: no such row", context)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return storeErrorf(ErrorAlreadyExists, "%s: %v", context, err)
			}
			return storeErrorf(ErrorConstraintFailed, "%s: %v", context, err)
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrFull:
			return storeErrorf(ErrorIO, "%s: %v", context, err)
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return storeErrorf(ErrorConnection, "%s: %v", context, err)
		}
		return storeErrorf(ErrorDB, "%s: %v", context, err)
	}
	return storeErrorf(ErrorDB, "%s: %v", context, err)
}
