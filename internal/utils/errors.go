package utils

import (
	"context"
	"errors"
	"net/http"
)

// Common application errors used across services.
var (
	ErrEncoding           = errors.New("ENCODING_ERROR")
	ErrDecode             = errors.New("DECODE_ERROR")
	ErrSignature          = errors.New("SIGNATURE_ERROR")
	ErrDownstreamDispatch = errors.New("DOWNSTREAM_DISPATCH_ERROR")
	ErrInvalidAmount      = errors.New("INVALID_AMOUNT")
	ErrGateway            = errors.New("GATEWAY_ERROR")
)

// ErrorCode returns the public API error code for err.
// Decode and signature failures share one code so a caller cannot tell
// which check rejected the payload.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDecode), errors.Is(err, ErrSignature):
		return "INVALID_PAYLOAD"
	case errors.Is(err, ErrInvalidAmount):
		return "INVALID_AMOUNT"
	case errors.Is(err, ErrEncoding):
		return "ENCODING_FAILED"
	case errors.Is(err, ErrGateway):
		return "GATEWAY_UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus maps err to the HTTP status returned to the caller.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrDecode),
		errors.Is(err, ErrSignature),
		errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
