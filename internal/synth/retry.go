// ABOUTME: Retrying synthesizer wrapper
// ABOUTME: Retries transient service failures with exponential backoff
package synth

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// Retry wraps a Synthesizer and retries transient failures
type Retry struct {
	Next     Synthesizer
	Attempts int
	Backoff  time.Duration
}

// NewRetry wraps next with attempts total tries starting at backoff
func NewRetry(next Synthesizer, attempts int, backoff time.Duration) *Retry {
	if attempts < 1 {
		attempts = 1
	}
	return &Retry{Next: next, Attempts: attempts, Backoff: backoff}
}

// Synthesize calls the wrapped synthesizer until it succeeds, fails
// permanently, or runs out of attempts
func (r *Retry) Synthesize(ctx context.Context, req Request) (string, error) {
	delay := r.Backoff
	var err error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		var data string
		data, err = r.Next.Synthesize(ctx, req)
		if err == nil {
			return data, nil
		}
		if !retryable(err) || attempt == r.Attempts {
			return "", err
		}

		log.Printf("Synthesis attempt %d/%d failed, retrying in %v: %v", attempt, r.Attempts, delay, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", err
}

// retryable reports whether err is a transient network or service failure
func retryable(err error) bool {
	if errors.Is(err, audio.ErrEmptyAudio) || errors.Is(err, audio.ErrDecode) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Temporary()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
