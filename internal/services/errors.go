// Package services defines the business logic for help requests, profiles,
// and impact metrics. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requires a caller
	// identity and none was provided.
	ErrUnauthenticated = errors.New("caller identity required")

	// ErrMissingFields is returned when a create request lacks a title or type.
	ErrMissingFields = errors.New("title and type are required")

	// ErrMissingLocation is returned when a request carries neither
	// coordinates, a usable saved profile location, nor a geocodable address.
	ErrMissingLocation = errors.New("location or address required")

	// ErrInvalidCoordinates is returned for latitude/longitude outside the
	// WGS84 ranges.
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrUnresolvedAddress is returned when the geocoder could not resolve the
	// supplied address; the provider cause is attached via wrapping.
	ErrUnresolvedAddress = errors.New("could not resolve address")

	// ErrInvalidMinutes is returned when a completion reports a non-positive
	// number of actual minutes.
	ErrInvalidMinutes = errors.New("actual minutes must be positive")

	// ErrInvalidRole is returned when a profile update carries a role outside
	// the allowed set.
	ErrInvalidRole = errors.New("role must be volunteer or neighbor")

	// ErrRequestNotFound indicates that the referenced help request does not
	// exist.
	ErrRequestNotFound = errors.New("request not found")

	// ErrAlreadyClaimed is returned to a claimer who lost the race: the
	// request exists but is no longer open.
	ErrAlreadyClaimed = errors.New("request already claimed")

	// ErrAlreadyCompleted is returned when completing (or claiming) a request
	// that has already reached its terminal state.
	ErrAlreadyCompleted = errors.New("request already completed")

	// ErrPermissionDenied is returned when the caller is neither the assigned
	// volunteer nor the requester of the request they try to complete.
	ErrPermissionDenied = errors.New("not allowed to complete this request")
)
