package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultMaxRetries     = 2
	defaultInitialBackoff = 250 * time.Millisecond
	maxBackoff            = 5 * time.Second
	backoffFactor         = 2.0
)

// statusError is a non-2xx response.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error: %s", e.status)
}

// retryWithBackoff runs fn until it succeeds, fails permanently, ctx ends or
// maxRetries retries have been spent.
func retryWithBackoff(ctx context.Context, maxRetries int, initial time.Duration, fn func() error) error {
	var err error
	backoff := initial

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !isRetriable(err) {
			break
		}

		// up to 20% jitter
		delay := time.Duration(float64(backoff) * (1.0 + 0.2*rand.Float64()))
		log.Debug().Err(err).Dur("delay", delay.Round(time.Millisecond)).
			Int("attempt", attempt+1).Int("max_retries", maxRetries).Msg("Transient error, retrying")

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}

		backoff = time.Duration(float64(backoff) * backoffFactor)
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return err
}

// isRetriable reports whether a failed fetch may succeed if tried again.
func isRetriable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError || se.code == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}
