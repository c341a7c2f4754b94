// Package status declares error constants returned by the hashfs package.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/hashfs and its consumers.
package status

import "github.com/oneconcern/datagit/pkg/errors"

var (
	// ErrNotFound indicates that the object does not exist in the block store
	ErrNotFound = errors.New("object not found in block store")

	// ErrInvalidKey indicates that a string is not a valid content key for the configured scheme
	ErrInvalidKey = errors.New("invalid content key")

	// ErrUnknownScheme indicates that the requested content key scheme is not supported
	ErrUnknownScheme = errors.New("unknown content key scheme")

	// ErrCorruptedLink indicates that a link object could not be decoded
	ErrCorruptedLink = errors.New("corrupted link object")

	// ErrCorruptedObject indicates that an object does not hash to its key
	ErrCorruptedObject = errors.New("object content does not match its key")

	// ErrWrite indicates that an object could not be written to the block store
	ErrWrite = errors.New("cannot write object to block store")

	// ErrRead indicates that a source could not be read
	ErrRead = errors.New("cannot read source")

	// ErrMerge indicates that a block store could not be merged into another one
	ErrMerge = errors.New("cannot merge block stores")
)
