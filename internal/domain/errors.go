package domain

import "errors"

var (
	// ErrIndeterminatePrecision is returned when the precision of an offset
	// cannot be derived from how it was written. Callers must not substitute
	// zero for the missing uncertainty.
	ErrIndeterminatePrecision = errors.New("indeterminate distance precision")

	// ErrIncompleteLocality is returned when a computation needs a part of a
	// locality (offset, unit, heading or feature) that the parser did not find.
	ErrIncompleteLocality = errors.New("incomplete locality")

	ErrUnknownUnit         = errors.New("unknown distance unit")
	ErrUnknownHeading      = errors.New("unknown heading")
	ErrUnknownLocalityType = errors.New("unknown locality type")
	ErrInvalidDistance     = errors.New("invalid distance")
	ErrEmptyLocation       = errors.New("empty location")
)
