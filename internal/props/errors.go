package props

import "errors"

// Errors returned by engine operations.
var (
	// ErrAlreadyInitialized indicates a second Initialize call.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrDestroyed indicates an operation on a destroyed engine.
	ErrDestroyed = errors.New("engine destroyed")

	// ErrNotButton indicates a button operation on a non-button property.
	ErrNotButton = errors.New("property is not a button")

	// ErrNoInlineAction indicates an inline trigger on a property that
	// declares no inline action.
	ErrNoInlineAction = errors.New("property has no inline action")
)
