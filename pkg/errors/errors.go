// Copyright (c) 2026, GroundCtl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import stderrors "errors"

// ErrorCode classifies an error for programmatic handling. Codes are
// stable strings: they appear in logs, API error bodies, and tests.
type ErrorCode string

const (
	// ErrCodeMalformedInput indicates a telemetry payload that could not be
	// decoded or normalized. Malformed input is never fatal: the affected
	// message is dropped and processing continues.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"
	// ErrCodeTransportFailure indicates a receive-path failure on the
	// telemetry transport (socket errors, short reads).
	ErrCodeTransportFailure ErrorCode = "TRANSPORT_FAILURE"
	// ErrCodeSinkUnavailable indicates a publish-side sink (broker or
	// stream subscriber) rejected or could not accept a delivery.
	ErrCodeSinkUnavailable ErrorCode = "SINK_UNAVAILABLE"
	// ErrCodeSetupFailure indicates a resource could not be acquired during
	// startup. Setup failures are fatal before the receive loop starts and
	// must never be raised after it.
	ErrCodeSetupFailure ErrorCode = "SETUP_FAILURE"
	// ErrCodeNoTelemetry indicates no telemetry has been accepted since
	// startup. The status surface maps it to 404.
	ErrCodeNoTelemetry ErrorCode = "NO_TELEMETRY"

	// ErrCodeNotFound indicates a requested resource that does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates an operation that ran past its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an unexpected failure inside the daemon.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates a caller request that fails validation.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeRateLimitExceeded indicates a caller that ran past the API rate limit.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeMethodNotAllowed indicates an HTTP method the resource does not support.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeUnavailable indicates a temporarily unusable service or
	// resource. Serialized as SERVICE_UNAVAILABLE on the wire.
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// StructuredError is the error type mavmon components return. The code
// drives HTTP status mapping and retry decisions, the optional context
// feeds structured logs and API error details.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

func (e *StructuredError) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New builds an error from a code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{Code: code, Message: message}
}

// NewWithContext builds an error carrying key/value context.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Context: context}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause}
}

// WrapWithContext attaches a code, message, and context to a cause.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{Code: code, Message: message, Cause: cause, Context: context}
}

// IsCode reports whether any error in err's chain is a StructuredError
// carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}
