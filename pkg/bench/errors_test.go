package bench

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	err := NewError(ErrInvalidConfig, errors.New("producers must be positive"))
	require.Equal(t, "Invalid configuration. Caused by: producers must be positive", err.Error())

	err = NewError(ErrTimedOut, nil, "1m0s")
	require.Equal(t, "Timed out waiting for benchmark to complete: 1m0s", err.Error())
	require.Equal(t, "Unrecognized error", ErrorMessageForCode(ErrorCode(1000)))
}

func TestErrorCodes(t *testing.T) {
	upstream := errors.New("upstream")
	err := fmt.Errorf("wrapped: %w", NewError(ErrKilled, upstream))
	require.True(t, IsErrorCode(err, ErrKilled))
	require.False(t, IsErrorCode(err, ErrTimedOut))
	require.False(t, IsErrorCode(upstream, ErrKilled))
	require.True(t, errors.Is(err, upstream))

	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, int(ErrKilled), ExitCode(err))
	require.Equal(t, 1, ExitCode(upstream))
}
