// Package apierr classifies provider HTTP failures into domain errors so the
// resilience layer can tell transient failures from permanent ones.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/custodia-labs/comply/internal/core/domain"
)

// maxBody bounds how much of an error body is echoed into messages.
const maxBody = 512

// Status converts a non-2xx response into an error. 429 wraps
// domain.ErrRateLimited and 5xx wraps domain.ErrServiceUnavailable;
// anything else wraps domain.ErrUpstream.
func Status(provider string, code int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxBody {
		msg = msg[:maxBody] + "..."
	}

	var kind error
	switch {
	case code == http.StatusTooManyRequests:
		kind = domain.ErrRateLimited
	case code >= 500:
		kind = domain.ErrServiceUnavailable
	default:
		kind = domain.ErrUpstream
	}
	return fmt.Errorf("%s: %w (status %d): %s", provider, kind, code, msg)
}

// Transport wraps an error from http.Client.Do. Network failures, including
// client timeouts, wrap domain.ErrServiceUnavailable. Cancellation is not
// classified.
func Transport(provider string, err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", provider, domain.ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%s: send request: %w", provider, err)
}

// Decode wraps a response decoding failure as an upstream error.
func Decode(provider string, err error) error {
	return fmt.Errorf("%s: %w: decode response: %w", provider, domain.ErrUpstream, err)
}
