package bench

import (
	"errors"
	"fmt"
)

// ErrorCode allows us to encapsulate specific failure codes for the benchmark
// process.
type ErrorCode int

// Error/exit codes for benchmark-related errors.
const (
	NoError ErrorCode = iota
	ErrFailedToDecodeConfig
	ErrFailedToReadConfigFile
	ErrInvalidConfig
	ErrFailedToCreateActor
	ErrFailedToSend
	ErrTimedOut
	ErrKilled
	ErrStatsSanityCheckFailed
	ErrFailedToWriteStats
)

// Error is a way of wrapping the meaningful exit code we want to provide on
// failure.
type Error struct {
	Code     ErrorCode
	Message  string
	Upstream error
}

// Error implements error.
var _ error = (*Error)(nil)

// NewError allows us to create new Error structures from the given code and
// upstream error (can be nil).
func NewError(code ErrorCode, upstream error, additionalInfo ...string) *Error {
	return &Error{
		Code:     code,
		Message:  ErrorMessageForCode(code, additionalInfo...),
		Upstream: upstream,
	}
}

// Error implements error.
func (e Error) Error() string {
	if e.Upstream != nil {
		return fmt.Sprintf("%s. Caused by: %s", e.Message, e.Upstream.Error())
	}
	return e.Message
}

func (e Error) Unwrap() error {
	return e.Upstream
}

// ErrorMessageForCode translates the given error code into a human-readable,
// English message.
func ErrorMessageForCode(code ErrorCode, additionalInfo ...string) string {
	var result string
	switch code {
	case NoError:
		result = "No error"
	case ErrFailedToDecodeConfig:
		result = "Failed to decode YAML configuration"
	case ErrFailedToReadConfigFile:
		result = "Failed to read configuration file"
	case ErrInvalidConfig:
		result = "Invalid configuration"
	case ErrFailedToCreateActor:
		result = "Failed to create actor"
	case ErrFailedToSend:
		result = "Failed to send message"
	case ErrTimedOut:
		result = "Timed out waiting for benchmark to complete"
	case ErrKilled:
		result = "Process killed"
	case ErrStatsSanityCheckFailed:
		result = "Statistics sanity check failed"
	case ErrFailedToWriteStats:
		result = "Failed to write statistics"
	default:
		return "Unrecognized error"
	}
	if len(additionalInfo) > 0 {
		result = fmt.Sprintf("%s: %s", result, additionalInfo[0])
	}
	return result
}

// IsErrorCode is a convenience function that checks whether err is (or
// wraps) an Error with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ExitCode maps err to the process exit code: 0 for nil, the error's code
// for an Error, and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return int(NoError)
	}
	var e *Error
	if errors.As(err, &e) {
		return int(e.Code)
	}
	return 1
}
