package domain

import "errors"

var (
	// ErrKeyNotFound is returned by a KeyValueStore when a key is absent.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidProduct is returned when a submitted product fails validation.
	ErrInvalidProduct = errors.New("invalid product")

	// ErrAdvisorAPIFailure is returned when an advisor service call fails.
	ErrAdvisorAPIFailure = errors.New("advisor API request failed")

	// ErrMalformedResponse is returned when the advisor service replies with
	// a payload that cannot be used.
	ErrMalformedResponse = errors.New("malformed advisor response")
)
