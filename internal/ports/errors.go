package ports

import (
	"errors"
	"fmt"
)

// Standard application-level errors.
// Adapters and pipeline components wrap underlying errors with these.
var (
	// General Errors
	ErrUnknown         = errors.New("unknown error occurred")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")
	ErrInternal        = errors.New("internal error")

	// Signal validation errors (fail fast, before any exchange call)
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrMissingField     = errors.New("missing required field")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidPrice     = errors.New("invalid price value")
	ErrNoFieldsToUpdate = errors.New("no stop fields to update")

	// Execution errors
	ErrSizingFailed     = errors.New("failed to calculate position size")
	ErrExchangeRejected = errors.New("exchange rejected the request")

	// Exchange transport errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
)

// RetCodeStopNotModified is the venue's business code for a trading-stop
// call whose values are identical to the current ones. It is a benign
// no-op, not a failure.
const RetCodeStopNotModified = 34040

// ExchangeError carries the business-level result code and message from the
// venue's response envelope (retCode/retMsg). HTTP-level success can still
// carry a non-zero code here; callers must branch on Code, not transport
// status.
type ExchangeError struct {
	Code    int
	Message string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange error: retCode=%d retMsg=%q", e.Code, e.Message)
}

// IsStopNotModified reports whether err is the venue's "values unchanged"
// rejection of a trading-stop call.
func IsStopNotModified(err error) bool {
	var exErr *ExchangeError
	return errors.As(err, &exErr) && exErr.Code == RetCodeStopNotModified
}

// AsExchangeError extracts the business error from an error chain.
func AsExchangeError(err error) (*ExchangeError, bool) {
	var exErr *ExchangeError
	ok := errors.As(err, &exErr)
	return exErr, ok
}
