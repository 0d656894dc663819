package models

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientHistory means the series is shorter than the longest configured window + 1.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrInvalidHorizon means the requested horizon is not a positive number of business days.
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrInvalidConfidence means the confidence level is outside (0, 1).
	ErrInvalidConfidence = errors.New("invalid confidence")
	// ErrMalformedHistory covers non-positive prices, unordered or duplicate dates and degenerate inputs.
	ErrMalformedHistory = errors.New("malformed history")
	// ErrInvalidConfig means an indicator window or weight is out of range.
	ErrInvalidConfig = errors.New("invalid engine config")
	// ErrSymbolNotFound is returned by price sources that have no data for a symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// ErrorKind maps an error to a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSymbolNotFound):
		return "symbol_not_found"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, ErrMalformedHistory):
		return "malformed_history"
	case errors.Is(err, ErrInvalidHorizon):
		return "invalid_horizon"
	case errors.Is(err, ErrInvalidConfidence):
		return "invalid_confidence"
	case errors.Is(err, ErrInvalidConfig):
		return "invalid_config"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal"
	}
}

// IsInputError reports whether err is caused by the caller's data or parameters rather than the system.
func IsInputError(err error) bool {
	switch ErrorKind(err) {
	case "symbol_not_found", "insufficient_history", "malformed_history",
		"invalid_horizon", "invalid_confidence", "invalid_config":
		return true
	}
	return false
}
