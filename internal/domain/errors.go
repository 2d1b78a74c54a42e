package domain

import (
	"errors"
)

// ErrorKind classifies failures so callers can tell "no data for this
// selection" apart from "the data is malformed".
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnrecognizedFilingStatus
	KindMalformedFieldFormat
	KindMissingRequiredColumn
	KindInvalidSchedule
	KindDataNotFound
	KindInvalidInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedFilingStatus:
		return "unrecognized_filing_status"
	case KindMalformedFieldFormat:
		return "malformed_field_format"
	case KindMissingRequiredColumn:
		return "missing_required_column"
	case KindInvalidSchedule:
		return "invalid_schedule"
	case KindDataNotFound:
		return "data_not_found"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. A TaxError matches a sentinel of the same kind.
var (
	ErrUnrecognizedFilingStatus = &TaxError{Kind: KindUnrecognizedFilingStatus}
	ErrMalformedFieldFormat     = &TaxError{Kind: KindMalformedFieldFormat}
	ErrMissingRequiredColumn    = &TaxError{Kind: KindMissingRequiredColumn}
	ErrInvalidSchedule          = &TaxError{Kind: KindInvalidSchedule}
	ErrDataNotFound             = &TaxError{Kind: KindDataNotFound}
	ErrInvalidInput             = &TaxError{Kind: KindInvalidInput}
)

// TaxError represents errors from ingestion, storage and computation
type TaxError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *TaxError) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TaxError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels (a TaxError with only Kind set) by kind
func (e *TaxError) Is(target error) bool {
	t, ok := target.(*TaxError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Message == "" && t.Cause == nil
}

// KindOf returns the kind of the first TaxError in err's chain
func KindOf(err error) ErrorKind {
	var te *TaxError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// NewError builds a TaxError
func NewError(kind ErrorKind, op, message string) *TaxError {
	return &TaxError{Kind: kind, Op: op, Message: message}
}

// WrapError builds a TaxError carrying an underlying cause
func WrapError(kind ErrorKind, op, message string, cause error) *TaxError {
	return &TaxError{Kind: kind, Op: op, Message: message, Cause: cause}
}
