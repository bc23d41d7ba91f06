package registry

import "errors"

var (
	// ErrInvalidDelegate is returned when the delegate is empty or
	// equal to the owner.
	ErrInvalidDelegate = errors.New("invalid delegate")

	// ErrInvalidDuration is returned when the requested duration is
	// zero, negative, or exceeds the configured maximum.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrOwnerHasNoResource is returned when the owner directory
	// reports that the owner controls nothing under the scope.
	ErrOwnerHasNoResource = errors.New("owner controls no resource under scope")
)
