package profiling

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes("")
	require.NoError(t, err)
	assert.Equal(t, defaultProfileTypes, types)

	types, err = parseProfileTypes("cpu, goroutines")
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileGoroutines}, types)

	types, err = parseProfileTypes("mutex,mutex")
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration}, types)

	_, err = parseProfileTypes("heap")
	assert.Error(t, err)
}

func TestBuildApplicationName(t *testing.T) {
	name := buildApplicationName("", "prism-api", "production", "1.2.3")
	assert.Equal(t, "prism-api{service_name=prism-api,environment=production,service_version=1.2.3}", name)

	name = buildApplicationName("custom-app", "prism-api", "dev", "0.0.1")
	assert.Equal(t, "custom-app{service_name=prism-api,environment=dev,service_version=0.0.1}", name)
}
