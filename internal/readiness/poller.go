// Package readiness polls a resource's log stream until a fixed marker shows
// up or a bounded attempt budget runs out.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ErrTimedOut is returned when the attempt budget is exhausted without the
// marker appearing. Callers must treat it as a hard failure.
var ErrTimedOut = errors.New("readiness polling timed out")

var errMarkerAbsent = errors.New("readiness marker not found")

// Default number of log lines fetched per attempt. The marker is emitted once
// near the end of initialization, so a modest tail is enough.
const defaultLogTail = 200

// LogSource fetches the current log tail of a named resource.
type LogSource interface {
	ServiceLogs(ctx context.Context, service string, tail int) (string, error)
}

// Policy bounds the retry loop: MaxAttempts tries with a fixed Delay between
// them. Total wall-clock wait is at most MaxAttempts times Delay.
type Policy struct {
	MaxAttempts uint64
	Delay       time.Duration
}

// Poller waits for a resource to report readiness through its logs.
type Poller struct {
	logger zerolog.Logger
	source LogSource
	tail   int
}

// New constructs a Poller reading from the given log source.
func New(logger zerolog.Logger, source LogSource) *Poller {
	return &Poller{
		logger: logger,
		source: source,
		tail:   defaultLogTail,
	}
}

// Wait polls the named resource's logs for the marker. It returns nil as soon
// as the marker appears (short-circuit, no remaining attempts are waited out)
// and ErrTimedOut once the attempt budget is spent. Log-fetch errors count as
// failed attempts; the resource's container may simply not exist yet.
func (p *Poller) Wait(ctx context.Context, resource, marker string, policy Policy) error {
	if policy.MaxAttempts == 0 {
		return errors.New("max attempts must be greater than zero")
	}

	attempt := 0
	operation := func() error {
		attempt++
		logs, err := p.source.ServiceLogs(ctx, resource, p.tail)
		if err != nil {
			return err
		}
		if strings.Contains(logs, marker) {
			return nil
		}
		return errMarkerAbsent
	}

	notify := func(err error, wait time.Duration) {
		p.logger.Debug().
			Err(err).
			Str("resource", resource).
			Int("attempt", attempt).
			Dur("retry_in", wait).
			Msg("resource not ready")
	}

	policyBackOff := backoff.WithMaxRetries(backoff.NewConstantBackOff(policy.Delay), policy.MaxAttempts-1)
	err := backoff.RetryNotify(operation, backoff.WithContext(policyBackOff, ctx), notify)
	if err == nil {
		p.logger.Info().
			Str("resource", resource).
			Int("attempts", attempt).
			Msg("resource ready")
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("readiness polling canceled: %w", ctx.Err())
	}
	return fmt.Errorf("%w: %q did not log %q within %d attempts", ErrTimedOut, resource, marker, attempt)
}
