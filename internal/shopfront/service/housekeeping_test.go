package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/pkg/slogx"
)

// sweepRecorder stubs the sessions store to observe housekeeping sweeps.
type sweepRecorder struct {
	mu      sync.Mutex
	cutoffs []time.Time
}

func (r *sweepRecorder) CreateSession(context.Context, domain.Session) error { return nil }
func (r *sweepRecorder) GetSession(context.Context, string) (domain.Session, error) {
	return domain.Session{}, nil
}
func (r *sweepRecorder) SaveSession(context.Context, domain.Session) error { return nil }
func (r *sweepRecorder) DeleteSession(context.Context, string) error       { return nil }

func (r *sweepRecorder) DeleteIdleSessions(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	return 1, nil
}

func (r *sweepRecorder) sweeps() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.cutoffs...)
}

func TestHousekeepingSweepsOnStart(t *testing.T) {
	rec := &sweepRecorder{}

	svc := NewHousekeepingService(rec, slogx.Discard(), time.Hour, 24*time.Hour)
	svc.Start()
	svc.Stop()

	sweeps := rec.sweeps()
	require.Len(t, sweeps, 1)

	// The cutoff trails now by the idle window.
	require.WithinDuration(t, time.Now().Add(-24*time.Hour), sweeps[0], time.Minute)
}

func TestHousekeepingTicks(t *testing.T) {
	rec := &sweepRecorder{}

	svc := NewHousekeepingService(rec, slogx.Discard(), 10*time.Millisecond, 24*time.Hour)
	svc.Start()

	require.Eventually(t, func() bool {
		return len(rec.sweeps()) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	svc.Stop()
}

func TestHousekeepingDefaults(t *testing.T) {
	svc := NewHousekeepingService(nil, slogx.Discard(), 0, 0)
	require.Equal(t, time.Hour, svc.Interval)
	require.Equal(t, 7*24*time.Hour, svc.MaxIdle)
}
