package domain

import (
	"errors"
	"fmt"
)

// DataErrorKind classifies recoverable calculation failures.
type DataErrorKind int

const (
	// KindMissingData means a series or attribute was unavailable.
	KindMissingData DataErrorKind = iota + 1
	// KindComputation means a value was NaN or outside its domain.
	KindComputation
)

func (k DataErrorKind) String() string {
	switch k {
	case KindMissingData:
		return "missing data"
	case KindComputation:
		return "computation"
	default:
		return "unknown"
	}
}

// DataError is returned by extractors and scorers instead of a value when
// input is missing or unusable. The caller decides whether to apply the
// documented fallback.
type DataError struct {
	Kind   DataErrorKind
	Hazard HazardType
	Stage  string
	Detail string
	Err    error
}

func (e *DataError) Error() string {
	msg := fmt.Sprintf("%s: %s/%s", e.Kind, e.Hazard, e.Stage)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataError) Unwrap() error { return e.Err }

// MissingData builds a KindMissingData error.
func MissingData(h HazardType, stage, detail string, err error) *DataError {
	return &DataError{Kind: KindMissingData, Hazard: h, Stage: stage, Detail: detail, Err: err}
}

// Computation builds a KindComputation error.
func Computation(h HazardType, stage, detail string) *DataError {
	return &DataError{Kind: KindComputation, Hazard: h, Stage: stage, Detail: detail}
}

// IsMissingData reports whether err is or wraps a missing-data DataError or ErrNotFound.
func IsMissingData(err error) bool {
	var de *DataError
	if errors.As(err, &de) {
		return de.Kind == KindMissingData
	}
	return errors.Is(err, ErrNotFound)
}

// IsComputation reports whether err is or wraps a computation DataError.
func IsComputation(err error) bool {
	var de *DataError
	return errors.As(err, &de) && de.Kind == KindComputation
}
