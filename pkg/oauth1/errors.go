package oauth1

import "errors"

// Request validation failures. Every kind is terminal for the request.
var (
	// ErrConfiguration reports a caller or setup mistake (missing credentials,
	// unsupported HTTP method) rather than a bad request.
	ErrConfiguration = errors.New("configuration error")

	ErrInvalidSignature = errors.New("invalid signature sent")
	ErrInvalidNonce     = errors.New("invalid nonce sent")
	ErrInvalidTimestamp = errors.New("invalid timestamp sent")
	ErrNonceReused      = errors.New("nonce has already been used")
	ErrTimestampExpired = errors.New("timestamp has expired")
)

// IsValidationError reports whether err is one of the request-level failure
// kinds. Configuration errors and store backend failures are not.
func IsValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrInvalidNonce),
		errors.Is(err, ErrInvalidTimestamp),
		errors.Is(err, ErrNonceReused),
		errors.Is(err, ErrTimestampExpired):
		return true
	}
	return false
}
