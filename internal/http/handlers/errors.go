// HTTP-layer error codes used across all API endpoints.
//
// These symbolic codes supplement HTTP status semantics with a stable,
// machine-readable taxonomy. Handlers pick the most specific matching code
// and pass it to fail() together with the status and a human-readable
// message; clients branch on the code, not the message.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "model_not_found",
//	  "message": "model not found"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeCatalogueLoad = "catalogue_load_failed"
	ErrCodeModelLoad     = "model_load_failed"
	ErrCodeModelNotFound = "model_not_found"
	ErrCodeValidation    = "validation_failed"
	ErrCodeStorage       = "storage_failed"
	ErrCodeLoginFailed   = "login_failed"
	ErrCodeLoginDisabled = "login_disabled"
)
