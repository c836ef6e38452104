package domain

import (
	"errors"
	"fmt"
)

// Operation errors surfaced to view clients
var (
	ErrFetchFailed    = errors.New("fetch failed")
	ErrMutationFailed = errors.New("mutation failed")
	ErrNotFound       = errors.New("entry not found")
	ErrReadOnly       = errors.New("canonical entries are read-only")
	ErrListChanged    = errors.New("list changed while loading page")
)

// Entry validation errors
var (
	ErrInvalidEntry      = errors.New("invalid entry")
	ErrEntryNameRequired = fmt.Errorf("%w: name is required", ErrInvalidEntry)
	ErrNegativeMeasure   = fmt.Errorf("%w: height and weight must be non-negative", ErrInvalidEntry)
)
