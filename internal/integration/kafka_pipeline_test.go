//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/era5land-etl/internal/adapter/geotiff"
	"github.com/couchcryptid/era5land-etl/internal/adapter/kafka"
	"github.com/couchcryptid/era5land-etl/internal/adapter/ncfile"
	"github.com/couchcryptid/era5land-etl/internal/domain"
	"github.com/couchcryptid/era5land-etl/internal/observability"
	"github.com/couchcryptid/era5land-etl/internal/pipeline"
)

const testTopic = "test-artifacts"

var testGrid = domain.Grid{Rows: 4, Cols: 8}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("era5land-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

func writeTiles(t *testing.T, root string, date time.Time) {
	t.Helper()
	dir := filepath.Join(root, date.Format("2006"), date.Format("01"))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for side, lonMin := range []float64{-180, 0} {
		path := filepath.Join(dir, fmt.Sprintf("ERA5_LAND_DAILY_%s_%d.tif", date.Format(domain.DateLayout), side))
		err := geotiff.WriteTile(path, testGrid.Cols/2, testGrid.Rows, 150, lonMin, 180, func(band int, buf []float32) {
			for i := range buf {
				buf[i] = float32(band) + float32(i)/100
			}
		})
		require.NoError(t, err)
	}
}

// TestPipelineNotifiesKafka runs a real conversion and verifies that one
// artifact event per category reaches the topic.
func TestPipelineNotifiesKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	root := t.TempDir()
	layout := domain.Layout{
		InputRoot:    filepath.Join(root, "tif"),
		OutputRoot:   filepath.Join(root, "nc"),
		TilePrefix:   "ERA5_LAND_DAILY",
		TileExt:      "tif",
		OutputPrefix: "ERA5_Land_Daily",
	}
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	writeTiles(t, layout.InputRoot, date)

	writer, err := ncfile.NewWriter(string(ncfile.FormatClassic), 5)
	require.NoError(t, err)
	notifier := kafka.NewNotifier([]string{broker}, testTopic, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	p := pipeline.New(geotiff.NewReader(), writer, notifier, pipeline.Options{
		Layout:     layout,
		Categories: domain.AllCategories(),
		Grid:       testGrid,
		Metadata:   domain.DefaultMetadata(),
	}, discardLogger(), observability.NewMetricsForTesting())

	sum, err := p.Run(ctx, pipeline.RunRequest{Start: date, End: date})
	require.NoError(t, err)
	require.Zero(t, sum.Failed)
	require.Equal(t, 5, sum.Artifacts)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	seen := map[string]domain.ArtifactEvent{}
	for len(seen) < 5 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from artifact topic")

		var ev domain.ArtifactEvent
		require.NoError(t, json.Unmarshal(msg.Value, &ev))
		assert.Equal(t, ev.Category+"/20240101", string(msg.Key))
		seen[ev.Category] = ev
	}

	for _, c := range domain.AllCategories() {
		ev, ok := seen[c.String()]
		require.True(t, ok, c.String())
		assert.Equal(t, sum.RunID, ev.RunID)
		assert.Equal(t, layout.ArtifactPath(c, date), ev.Path)
		assert.Positive(t, ev.Bytes)
		assert.FileExists(t, ev.Path)
	}
}
