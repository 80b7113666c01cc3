// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTransportFailure,
//	    "failed to read telemetry datagram",
//	    readErr,
//	    map[string]interface{}{
//	        "addr": conn.LocalAddr().String(),
//	    },
//	)
package errors
