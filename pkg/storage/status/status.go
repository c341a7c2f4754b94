// Copyright © 2018 One Concern

// Package status declares error constants returned by
// implementations of the Store interface.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/storage and one
// of its implementions.
package status

import "github.com/oneconcern/datagit/pkg/errors"

var (
	// Sentinel errors returned by implementations of the interface defined by storage

	// ErrNotExists indicates that the fetched object does not exist on storage
	ErrNotExists = errors.New("object doesn't exist")

	// ErrNotFound indicates that the backend API call did not find the target resource
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates that you don't provided correct credentials to the API
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the backend API forbids access to the target resource
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidResource indicates that the storage resource has an invalid name
	ErrInvalidResource = errors.New("invalid storage resource name")

	// ErrStorageAPI indicates any other storage API error
	ErrStorageAPI = errors.New("storage API error")

	// ErrNotConnected indicates that the backend was used before a successful call to Connect
	ErrNotConnected = errors.New("storage backend is not connected")

	// ErrConnect indicates that the backend could not be reached or authenticated at connection time
	ErrConnect = errors.New("cannot connect to storage backend")

	// ErrLocalIO indicates a failure to read or write the local side of a transfer
	ErrLocalIO = errors.New("local file error during transfer")

	// ErrUnknownBackend indicates that a backend identifier does not match any supported backend
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrBackendConfig indicates that the configuration for a backend is missing or invalid
	ErrBackendConfig = errors.New("invalid storage backend configuration")
)
