package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTooLargeError_MatchesSentinelAndCarriesCount(t *testing.T) {
	err := fmt.Errorf("conversation: %w", &ResultTooLargeError{Count: 501, Threshold: 500})

	assert.True(t, errors.Is(err, ErrResultTooLarge))
	assert.False(t, errors.Is(err, ErrMalformedTimestamp))

	var tooLarge *ResultTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Equal(t, int64(501), tooLarge.Count)
	assert.Contains(t, err.Error(), "501")
}

func TestMalformedTimestampError(t *testing.T) {
	err := &MalformedTimestampError{Value: "2021-02-19 17:11:00"}

	assert.ErrorIs(t, err, ErrMalformedTimestamp)
	assert.Contains(t, err.Error(), `"2021-02-19 17:11:00"`)
}

func TestDecryptError_UnwrapsCause(t *testing.T) {
	cause := errors.New("illegal base64 data")
	err := &DecryptError{Column: "body_string", Err: cause}

	assert.ErrorIs(t, err, ErrDecrypt)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "body_string")
}
