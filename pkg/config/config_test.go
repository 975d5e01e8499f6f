package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 5*time.Second, c.Server.RequestTimeout)
	assert.Positive(t, c.Server.MaxConcurrent)
	assert.Zero(t, c.Server.RateLimit)
	assert.Empty(t, c.Server.RateIPHeader)
	assert.Equal(t, "graph.bin", c.Graph.Path)
	assert.Equal(t, "bidijkstra", c.Search.Algorithm)
	assert.Equal(t, "binary", c.Search.Queue)
	assert.Equal(t, 1024, c.Search.CacheSize)
	assert.Equal(t, 500.0, c.Search.MaxSnapMeters)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "pathfinder.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  addr: ":9090"
  request_timeout: 2s
  cors_origins: ["https://example.com"]
search:
  algorithm: biastar
  queue: fibonacci
log:
  format: json
`), 0o644))

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, 2*time.Second, c.Server.RequestTimeout)
	assert.Equal(t, []string{"https://example.com"}, c.Server.CORSOrigins)
	assert.Equal(t, "biastar", c.Search.Algorithm)
	assert.Equal(t, "fibonacci", c.Search.Queue)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PATHFINDER_SEARCH_ALGORITHM", "parallel-bibfs")
	t.Setenv("PATHFINDER_GRAPH_PATH", "/data/sg.bin")
	t.Setenv("PATHFINDER_SERVER_RATE_IP_HEADER", "X-Forwarded-For")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "parallel-bibfs", c.Search.Algorithm)
	assert.Equal(t, "/data/sg.bin", c.Graph.Path)
	assert.Equal(t, "X-Forwarded-For", c.Server.RateIPHeader)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown algorithm", "PATHFINDER_SEARCH_ALGORITHM", "floodfill"},
		{"unknown queue", "PATHFINDER_SEARCH_QUEUE", "pairing"},
		{"bad log level", "PATHFINDER_LOG_LEVEL", "loud"},
		{"negative rate", "PATHFINDER_SERVER_RATE_LIMIT", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := NewLogger("debug", format)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(-1))
	}

	_, err := NewLogger("loud", "console")
	assert.Error(t, err)
}
