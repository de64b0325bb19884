package model

import "errors"

// Error taxonomy shared by every layer. Wrap with goerr to attach values and test with errors.Is.
var (
	// ErrConfiguration is fatal and raised before any external call
	ErrConfiguration = errors.New("configuration error")

	// ErrTransientService covers rate limiting, server side failures and network errors
	ErrTransientService = errors.New("transient service error")

	// ErrPermanentService covers authentication and malformed requests
	ErrPermanentService = errors.New("permanent service error")

	// ErrParse is returned when service output does not match the required shape
	ErrParse = errors.New("unparsable service output")

	// ErrValidationRejected means a query plan violates the allow-list or limits
	ErrValidationRejected = errors.New("query plan rejected")

	ErrStoreUnavailable = errors.New("store unavailable")
	ErrQueryTimeout     = errors.New("query timed out")
	ErrRateLimited      = errors.New("query rate limit exceeded")
	ErrNotFound         = errors.New("not found")
)

// Context keys for error values
const (
	BatchIndexKey = "batch_index"
	BatchSizeKey  = "batch_size"
	OverlapKey    = "overlap"
	FieldKey      = "field"
	OperatorKey   = "operator"
	ValueKey      = "value"
	LimitKey      = "limit"
	MessageIDKey  = "message_id"
	PathKey       = "path"
)
