package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "tictactoe.db", cfg.DBDSN)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 5*time.Minute, cfg.SessionCleanupInterval)
	assert.Equal(t, 0, cfg.SessionCapacity)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"TTT_HOST":                     "0.0.0.0",
		"TTT_PORT":                     "9090",
		"TTT_DB_DRIVER":                "postgres",
		"TTT_DB_DSN":                   "host=db user=ttt dbname=ttt sslmode=disable",
		"TTT_SESSION_IDLE_TTL":         "10m",
		"TTT_SESSION_CLEANUP_INTERVAL": "30s",
		"TTT_SESSION_CAPACITY":         "500",
		"TTT_DEBUG":                    "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, "http://localhost:9090", cfg.BaseURL())
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 10*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, 30*time.Second, cfg.SessionCleanupInterval)
	assert.Equal(t, 500, cfg.SessionCapacity)
	assert.True(t, cfg.Debug)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		parse   bool
	}{
		{name: "unparseable port", environ: map[string]string{"TTT_PORT": "eighty"}, parse: true},
		{name: "port out of range", environ: map[string]string{"TTT_PORT": "70000"}},
		{name: "unknown driver", environ: map[string]string{"TTT_DB_DRIVER": "mysql"}},
		{name: "zero ttl", environ: map[string]string{"TTT_SESSION_IDLE_TTL": "0s"}},
		{name: "zero interval", environ: map[string]string{"TTT_SESSION_CLEANUP_INTERVAL": "0s"}},
		{name: "negative capacity", environ: map[string]string{"TTT_SESSION_CAPACITY": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			require.Error(t, err)
			if !tt.parse {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("TTT_PORT", "8181")
	t.Setenv("TTT_SESSION_CAPACITY", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, 3, cfg.SessionCapacity)
}

func TestValidate_EmptyDSN(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	cfg.DBDSN = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
