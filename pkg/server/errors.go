package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/groundctl/mavmon/pkg/errors"
	"github.com/groundctl/mavmon/pkg/serializer"
)

// ErrorResponse is the wire shape of every error this surface returns.
type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"requestId"`
	Timestamp time.Time              `json:"timestamp"`
	Retryable bool                   `json:"retryable"`
}

// HTTPStatusFromCode maps an error code to the HTTP status the surface
// reports for it. Unknown codes map to 500.
func HTTPStatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidRequest, apperrors.ErrCodeMalformedInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeNoTelemetry:
		return http.StatusNotFound
	case apperrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeUnavailable, apperrors.ErrCodeSinkUnavailable, apperrors.ErrCodeSetupFailure:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// retryableFromCode reports whether a client should retry a request that
// failed with the given code. Transient conditions are retryable, caller
// mistakes are not.
func retryableFromCode(code apperrors.ErrorCode) bool {
	switch code {
	case apperrors.ErrCodeTimeout,
		apperrors.ErrCodeUnavailable,
		apperrors.ErrCodeSinkUnavailable,
		apperrors.ErrCodeNoTelemetry,
		apperrors.ErrCodeTransportFailure,
		apperrors.ErrCodeRateLimitExceeded,
		apperrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails combines two detail maps with the second taking precedence.
// Returns nil when both are empty so the details field is omitted from the
// response body.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// WriteError writes a structured error response.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code apperrors.ErrorCode, message string, retryable bool, details map[string]interface{}) {

	requestID := requestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr writes an error response derived from err. Structured
// errors carry their own code, message, and context; anything else is
// reported as an internal error with fallbackMsg as the message.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error,
	fallbackMsg string, details map[string]interface{}) {

	var serr *apperrors.StructuredError
	if errors.As(err, &serr) {
		d := serr.Context
		if serr.Cause != nil {
			d = mergeDetails(d, map[string]any{"error": serr.Cause.Error()})
		}
		d = mergeDetails(d, details)
		WriteError(w, r, HTTPStatusFromCode(serr.Code), serr.Code, serr.Message, retryableFromCode(serr.Code), d)
		return
	}

	d := mergeDetails(map[string]any{"error": err.Error()}, details)
	WriteError(w, r, http.StatusInternalServerError, apperrors.ErrCodeInternal, fallbackMsg, true, d)
}
