package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Dates.WithLabelValues("written").Inc()
	a.ArtifactsWritten.WithLabelValues("Soil").Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(a.Dates.WithLabelValues("written")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(a.ArtifactsWritten.WithLabelValues("Soil")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Dates.WithLabelValues("written")), 0)
}
