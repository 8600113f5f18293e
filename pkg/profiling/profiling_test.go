package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsconnecto/vsconnecto-api/config"
)

func TestSampleTypes(t *testing.T) {
	got, err := sampleTypes("")
	require.NoError(t, err)
	assert.Equal(t, defaultSampleTypes, got)

	got, err = sampleTypes("cpu, block,cpu,")
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileBlockCount,
		pyroscope.ProfileBlockDuration,
	}, got)

	_, err = sampleTypes("cpu,heap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"heap"`)
}

func TestIdentityTags(t *testing.T) {
	tags := Identity{ServiceName: "vsconnecto-api", Environment: "production"}.tags()
	assert.Equal(t, map[string]string{
		"service_name": "vsconnecto-api",
		"environment":  "production",
	}, tags)
}

func TestStart_Disabled(t *testing.T) {
	stop, err := Start(config.ProfilingConfig{Enabled: false}, Identity{})
	require.NoError(t, err)
	stop()
}

func TestStart_RequiresEndpoint(t *testing.T) {
	_, err := Start(config.ProfilingConfig{Enabled: true, Endpoint: "  "}, Identity{})
	assert.Error(t, err)
}
