// pkg/retry/retry_test.go

package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func quickConfig() Config {
	return Config{MaxRetries: 3, InitialInterval: time.Millisecond, Multiplier: 1.0}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(quickConfig(), func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(quickConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	err := Do(quickConfig(), func() error {
		calls++
		return errors.New("still broken")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	underlying := errors.New("access denied")
	err := Do(quickConfig(), func() error {
		calls++
		return NonRetryable{Err: underlying}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, underlying)
}
