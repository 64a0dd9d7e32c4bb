package speech

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSynthesisFailed is wrapped by every SynthesisError.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

// Cancellation reasons.
const (
	ReasonError           = "Error"
	ReasonCancelledByUser = "CancelledByUser"
)

// Cancellation error codes.
const (
	CodeConnectionFailure     = "ConnectionFailure"
	CodeAuthenticationFailure = "AuthenticationFailure"
	CodeBadRequest            = "BadRequest"
	CodeTooManyRequests       = "TooManyRequests"
	CodeServiceTimeout        = "ServiceTimeout"
	CodeServiceError          = "ServiceError"
)

// CancellationDetails explains why a synthesis did not complete.
type CancellationDetails struct {
	Reason       string `json:"reason"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorDetails string `json:"error_details,omitempty"`
}

// SynthesisError is returned when the service does not produce audio.
type SynthesisError struct {
	Details CancellationDetails
}

func (e *SynthesisError) Error() string {
	if e.Details.ErrorCode == "" {
		return fmt.Sprintf("%v: %s: %s", ErrSynthesisFailed, e.Details.Reason, e.Details.ErrorDetails)
	}
	return fmt.Sprintf("%v: %s (%s): %s", ErrSynthesisFailed, e.Details.Reason, e.Details.ErrorCode, e.Details.ErrorDetails)
}

func (e *SynthesisError) Unwrap() error {
	return ErrSynthesisFailed
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeAuthenticationFailure
	case http.StatusBadRequest:
		return CodeBadRequest
	case http.StatusTooManyRequests:
		return CodeTooManyRequests
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return CodeServiceTimeout
	default:
		return CodeServiceError
	}
}
