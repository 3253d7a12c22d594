package telemetry

import (
	"testing"

	"github.com/recordgraph/recordgraph/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestCollectorHost(t *testing.T) {
	assert.Equal(t, "otel:4317", collectorHost("http://otel:4317"))
	assert.Equal(t, "otel:4317", collectorHost("https://otel:4317/"))
	assert.Equal(t, "otel:4317", collectorHost("otel:4317"))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), Sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), Sampler(3).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), Sampler(0.25).Description())
}

func TestSetupTracing_Disabled(t *testing.T) {
	tp, err := SetupTracing(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, tp)
}
