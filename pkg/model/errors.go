package model

import (
	"errors"
	"fmt"
)

// ErrInfeasibleResult is returned when a solver did not produce an optimal solution, hence there is nothing to check
var ErrInfeasibleResult = errors.New("solver did not report an optimal solution")

// DataError reports a malformed or inconsistent instance. Normalization never returns partial results alongside it
type DataError struct {
	Field  string
	Index  []int
	Reason string
}

func (err *DataError) Error() string {
	if len(err.Index) == 0 {
		return fmt.Sprintf("invalid %v: %v", err.Field, err.Reason)
	}
	return fmt.Sprintf("invalid %v at %v: %v", err.Field, err.Index, err.Reason)
}

func dataError(field, reason string, index ...int) *DataError {
	return &DataError{Field: field, Index: index, Reason: reason}
}

// IsDataError reports whether err (or any error it wraps) is a *DataError
func IsDataError(err error) bool {
	var dataErr *DataError
	return errors.As(err, &dataErr)
}
