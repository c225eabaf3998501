package resource

import "errors"

// Programming-error sentinels. These indicate that a caller violated a
// documented precondition; operations in this package report them by
// panicking through fatalf (see kind.go) with the sentinel's text in the
// panic's error message, because the accounting this package guards must
// never silently self-correct a real bug.
var (
	// ErrNotWholeQuantity indicates that a caller asked ResourceIds to treat
	// a quantity >= 1 as whole when it has a non-zero fractional part.
	ErrNotWholeQuantity = errors.New("resource: quantity must be a whole number")

	// ErrResourceUnavailable indicates an Acquire for more than Contains
	// would permit. The caller must gate every Acquire on Contains.
	ErrResourceUnavailable = errors.New("resource: insufficient quantity available to acquire")

	// ErrUnknownResource indicates a SubtractStrict or similar strict
	// operation referenced a resource name that is not present.
	ErrUnknownResource = errors.New("resource: unknown resource name")

	// ErrResidualOverflow indicates a merge of fractional residuals during
	// Release summed to more than 1 for a single slot id.
	ErrResidualOverflow = errors.New("resource: merged fractional residual exceeds 1")

	// ErrNegativeCapacity indicates a capacity value was required to be
	// non-negative but was not.
	ErrNegativeCapacity = errors.New("resource: capacity must be non-negative")

	// ErrDuplicateSlotID indicates the same slot id was found in both
	// whole_ids and fractional_ids, or twice within the same sequence.
	ErrDuplicateSlotID = errors.New("resource: slot id held in more than one place")
)
