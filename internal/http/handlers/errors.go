// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - The lifecycle codes (unauthenticated, invalid_argument, not_found,
//     failed_precondition, permission_denied) carry the outcome of a store
//     operation; the generic codes mirror transport-level HTTP semantics.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "failed_precondition",
//	  "message": "request already claimed"
//	}
package handlers

const (
	// Lifecycle outcome codes.
	ErrCodeUnauthenticated    = "unauthenticated"
	ErrCodeInvalidArgument    = "invalid_argument"
	ErrCodeNotFound           = "not_found"
	ErrCodeFailedPrecondition = "failed_precondition"
	ErrCodePermissionDenied   = "permission_denied"

	// Generic transport codes.
	ErrCodeBadRequest       = "bad_request"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
