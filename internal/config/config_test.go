package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golimit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "#0B1220", cfg.Theme.Bg)
	assert.Equal(t, 32, cfg.Engine.MaxOrder)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeFile(t, `
log_level: debug
theme:
  accent: "#FF0000"
server:
  addr: ":9090"
  metrics: "false"
mcp:
  transport: sse
  port: "9191"
engine:
  max_order: 16
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "#FF0000", cfg.Theme.Accent)
	assert.Equal(t, DefaultTheme.Fg, cfg.Theme.Fg)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.False(t, cfg.Server.Metrics)
	assert.Equal(t, "sse", cfg.MCP.Transport)
	assert.Equal(t, 9191, cfg.MCP.Port)
	assert.Equal(t, 16, cfg.Engine.MaxOrder)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvAddr, "127.0.0.1:7000")
	path := writeFile(t, "log_level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name, content, want string
	}{
		{"bad yaml", "log_level: [", "failed to parse config"},
		{"unknown key", "colour: red\n", "invalid config"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"bad transport", "mcp:\n  transport: grpc\n", "mcp.transport"},
		{"bad port", "mcp:\n  port: 70000\n", "mcp.port"},
		{"small order", "engine:\n  max_order: 2\n", "engine.max_order"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeFile(t, c.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}
