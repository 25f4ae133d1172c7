// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// NonRetryable wraps an error that should fail immediately instead of
// being retried, such as an access-denied removal.
type NonRetryable struct {
	Err error
}

func (e NonRetryable) Error() string {
	return e.Err.Error()
}

func (e NonRetryable) Unwrap() error {
	return e.Err
}

// Config defines the configuration for retry attempts.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// DefaultConfig covers transient filesystem contention, such as a share
// lock held briefly by an exiting process.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 2 * time.Second,
		Multiplier:      2.0,
	}
}

// Do retries a given function with exponential backoff.
func Do(config Config, action func() error) error {
	interval := config.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		err := action()
		if err == nil {
			return nil
		}
		lastErr = err

		var nonRetryable NonRetryable
		if errors.As(err, &nonRetryable) {
			logging.Warn("Non-retryable error encountered",
				"attempt", attempt, "error", err)
			return err
		}

		if attempt < config.MaxRetries {
			logging.Warn("Attempt failed, retrying",
				"attempt", attempt,
				"max_attempts", config.MaxRetries,
				"retry_delay", interval.String(),
				"error", err)
			time.Sleep(interval)
			interval = time.Duration(float64(interval) * config.Multiplier)
		}
	}

	return fmt.Errorf("action failed after %d attempts: %w", config.MaxRetries, lastErr)
}
