package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/era5land-etl/internal/domain"
)

type fakeWriter struct {
	err    error
	sent   []kafkago.Message
	calls  int
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testEvent() domain.ArtifactEvent {
	return domain.ArtifactEvent{
		RunID:     "run-1",
		Category:  "Soil",
		Date:      "20240101",
		Path:      "/out/SoilMoisture/2024/01/ERA5_Land_Daily_Soil_20240101.nc",
		Variables: []string{"stl1", "stl2"},
		Bytes:     1024,
		WrittenAt: time.Date(2024, 1, 6, 6, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("Soil/20240101"), msg.Key)
	assert.Contains(t, string(msg.Value), `"category":"Soil"`)
	assert.Contains(t, string(msg.Value), `"variables":["stl1","stl2"]`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "category", msg.Headers[0].Key)
	assert.Equal(t, []byte("Soil"), msg.Headers[0].Value)
	assert.Equal(t, "run_id", msg.Headers[1].Key)
	assert.Equal(t, []byte("run-1"), msg.Headers[1].Value)
	assert.Equal(t, "written_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2024-01-06T06:00:00Z"), msg.Headers[2].Value)
}

func TestNotify_Publishes(t *testing.T) {
	fw := &fakeWriter{}
	n := newNotifier(fw, slog.Default())

	require.NoError(t, n.Notify(context.Background(), testEvent()))
	require.Len(t, fw.sent, 1)
	assert.Equal(t, []byte("Soil/20240101"), fw.sent[0].Key)

	require.NoError(t, n.Close())
	assert.True(t, fw.closed)
}

func TestNotify_BreakerOpensAfterFailures(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	n := newNotifier(fw, slog.Default())

	for range 3 {
		err := n.Notify(context.Background(), testEvent())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrBreakerOpen)
	}

	err := n.Notify(context.Background(), testEvent())
	require.ErrorIs(t, err, ErrBreakerOpen)
	assert.Equal(t, 3, fw.calls)
}
