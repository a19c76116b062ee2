package track

import "errors"

var (
	// ErrDuplicate indicates an insert for an address that is already tracked.
	ErrDuplicate = errors.New("track: address already tracked")

	// ErrNilPointer indicates an insert for the nil address.
	ErrNilPointer = errors.New("track: nil address")
)
