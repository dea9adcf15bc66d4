package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the item does not exist or belongs to another owner.
	// Callers must not be able to tell the two apart.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItem indicates the input violates a field constraint.
	ErrInvalidItem = errors.New("invalid item")

	// ErrNoFieldsToUpdate is returned for an update that supplies no fields.
	ErrNoFieldsToUpdate = fmt.Errorf("%w: no valid fields to update", ErrInvalidItem)

	// ErrStore indicates the item store failed to read or write.
	ErrStore = errors.New("item store failure")

	// ErrItemNotWritten indicates a filtered write matched no row.
	ErrItemNotWritten = fmt.Errorf("%w: write affected no record", ErrStore)
)
