package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// scriptedLogs returns one canned log body per attempt, repeating the last
// entry once the script runs out.
type scriptedLogs struct {
	bodies []string
	errs   []error
	calls  int
}

func (s *scriptedLogs) ServiceLogs(ctx context.Context, service string, tail int) (string, error) {
	index := s.calls
	s.calls++
	if index >= len(s.bodies) {
		index = len(s.bodies) - 1
	}
	if s.errs != nil && index < len(s.errs) && s.errs[index] != nil {
		return "", s.errs[index]
	}
	return s.bodies[index], nil
}

func fastPolicy(attempts uint64) Policy {
	return Policy{MaxAttempts: attempts, Delay: time.Millisecond}
}

func TestWaitReadyOnExactAttempt(t *testing.T) {
	source := &scriptedLogs{
		bodies: []string{
			"Starting Oracle Net Listener.",
			"Pluggable database opening.",
			"DATABASE IS READY TO USE!",
		},
	}
	poller := New(zerolog.Nop(), source)

	err := poller.Wait(context.Background(), "oracle-demo", "DATABASE IS READY TO USE!", fastPolicy(30))
	require.NoError(t, err)
	require.Equal(t, 3, source.calls, "expected short-circuit after the matching attempt")
}

func TestWaitReadyFirstAttempt(t *testing.T) {
	source := &scriptedLogs{bodies: []string{"DATABASE IS READY TO USE!"}}
	poller := New(zerolog.Nop(), source)

	err := poller.Wait(context.Background(), "oracle-demo", "DATABASE IS READY TO USE!", fastPolicy(30))
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)
}

func TestWaitTimesOutAfterBudget(t *testing.T) {
	source := &scriptedLogs{bodies: []string{"still starting"}}
	poller := New(zerolog.Nop(), source)

	err := poller.Wait(context.Background(), "oracle-demo", "DATABASE IS READY TO USE!", fastPolicy(5))
	require.ErrorIs(t, err, ErrTimedOut)
	require.Equal(t, 5, source.calls, "expected exactly MaxAttempts attempts")
}

func TestWaitRetriesFetchErrors(t *testing.T) {
	source := &scriptedLogs{
		bodies: []string{"", "", "DATABASE IS READY TO USE!"},
		errs:   []error{errors.New("no container yet"), nil, nil},
	}
	poller := New(zerolog.Nop(), source)

	err := poller.Wait(context.Background(), "oracle-demo", "DATABASE IS READY TO USE!", fastPolicy(30))
	require.NoError(t, err)
	require.Equal(t, 3, source.calls)
}

func TestWaitTimedOutOnPersistentFetchError(t *testing.T) {
	source := &scriptedLogs{
		bodies: []string{""},
		errs:   []error{errors.New("no container yet")},
	}
	poller := New(zerolog.Nop(), source)

	err := poller.Wait(context.Background(), "oracle-demo", "DATABASE IS READY TO USE!", fastPolicy(3))
	require.ErrorIs(t, err, ErrTimedOut)
	require.Equal(t, 3, source.calls)
}

func TestWaitContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	source := &scriptedLogs{bodies: []string{"still starting"}}
	poller := New(zerolog.Nop(), source)

	err := poller.Wait(ctx, "oracle-demo", "DATABASE IS READY TO USE!", fastPolicy(30))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrTimedOut)
}

func TestWaitRejectsZeroAttempts(t *testing.T) {
	poller := New(zerolog.Nop(), &scriptedLogs{bodies: []string{""}})

	err := poller.Wait(context.Background(), "oracle-demo", "marker", Policy{MaxAttempts: 0, Delay: time.Millisecond})
	require.Error(t, err)
}

func TestWaitBoundedWallClock(t *testing.T) {
	source := &scriptedLogs{bodies: []string{"still starting"}}
	poller := New(zerolog.Nop(), source)
	policy := Policy{MaxAttempts: 4, Delay: 10 * time.Millisecond}

	start := time.Now()
	err := poller.Wait(context.Background(), "oracle-demo", "marker", policy)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrTimedOut)
	require.Less(t, elapsed, time.Duration(policy.MaxAttempts)*policy.Delay+50*time.Millisecond)
}
