package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/era5land-etl/internal/pipeline"
)

type mockRunner struct {
	reqs []pipeline.RunRequest
	sum  pipeline.Summary
	err  error
}

func (m *mockRunner) Run(_ context.Context, req pipeline.RunRequest) (pipeline.Summary, error) {
	m.reqs = append(m.reqs, req)
	return m.sum, m.err
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		lag, days int
		want      pipeline.RunRequest
	}{
		{"default lag", time.Date(2024, 3, 10, 6, 30, 0, 0, time.UTC), 5, 7,
			pipeline.RunRequest{Start: date(2024, 2, 28), End: date(2024, 3, 5)}},
		{"single day", time.Date(2024, 1, 3, 23, 59, 0, 0, time.UTC), 2, 1,
			pipeline.RunRequest{Start: date(2024, 1, 1), End: date(2024, 1, 1)}},
		{"year boundary", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 1, 3,
			pipeline.RunRequest{Start: date(2023, 12, 30), End: date(2024, 1, 1)}},
		{"non-UTC clock", time.Date(2024, 1, 2, 1, 0, 0, 0, time.FixedZone("CET", 3600)), 0, 1,
			pipeline.RunRequest{Start: date(2024, 1, 2), End: date(2024, 1, 2)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Window(tc.now, tc.lag, tc.days))
		})
	}
}

func TestTick_RunsCurrentWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC))
	runner := &mockRunner{}
	s := New("0 6 * * *", 5, 7, runner, clock, slog.Default())

	s.Tick(context.Background())
	clock.Advance(24 * time.Hour)
	s.Tick(context.Background())

	require.Len(t, runner.reqs, 2)
	assert.Equal(t, date(2024, 3, 5), runner.reqs[0].End)
	assert.Equal(t, date(2024, 3, 6), runner.reqs[1].End)
	assert.Equal(t, date(2024, 2, 29), runner.reqs[1].Start)
}

func TestTick_ToleratesRunErrors(t *testing.T) {
	runner := &mockRunner{err: errors.New("bad range")}
	s := New("0 6 * * *", 5, 7, runner, clockwork.NewFakeClock(), slog.Default())

	assert.NotPanics(t, func() { s.Tick(context.Background()) })
	assert.Len(t, runner.reqs, 1)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := New("not a cron", 5, 7, &mockRunner{}, nil, slog.Default())
	defer s.Stop()

	require.Error(t, s.Start(context.Background()))
}

func TestStart_ValidSchedule(t *testing.T) {
	s := New("0 6 * * *", 5, 7, &mockRunner{}, nil, slog.Default())
	defer s.Stop()

	require.NoError(t, s.Start(context.Background()))
}
