// internal/config/config_test.go
package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/scoring"
	episode "github.com/pippijn/sint/service/internal/env"
	"github.com/pippijn/sint/service/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 4, c.Players)
	assert.Equal(t, uint64(12345), c.Seed)
	assert.Equal(t, "memory", c.SessionBackend)
	assert.Equal(t, "sint:session:", c.RedisPrefix)
	assert.Zero(t, c.SessionTTL)
	assert.Equal(t, 100, c.StabilizeLimit)
	assert.Equal(t, time.Second, c.Debounce)
	assert.Equal(t, episode.ModeLinear, c.Mode())
	assert.Equal(t, scoring.DefaultWeights(), c.Weights)
	assert.Equal(t, []engine.PlayerID{"P1", "P2", "P3", "P4"}, c.Roster())
	assert.Len(t, c.ReplayOptions(nil), 4)
}

func TestFromEnvOverrides(t *testing.T) {
	weights := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(weights, []byte("victory: 500\nturn: 3\n"), 0o600))

	t.Setenv("SINT_PLAYERS", "2")
	t.Setenv("SINT_SESSION_TTL", "90s")
	t.Setenv("SINT_INCOMPLETE_POLICY", "strict")
	t.Setenv("SINT_ENV_MODE", "session")
	t.Setenv("SINT_SCORING_FILE", weights)

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []engine.PlayerID{"P1", "P2"}, c.Roster())
	assert.Equal(t, 90*time.Second, c.SessionTTL)
	assert.Equal(t, episode.ModeSession, c.Mode())
	assert.Equal(t, 500.0, c.Weights.Victory)
	assert.Equal(t, 3.0, c.Weights.Turn)
	assert.Equal(t, scoring.DefaultWeights().Defeat, c.Weights.Defeat)
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"parse":         {"SINT_PLAYERS": "four"},
		"players":       {"SINT_PLAYERS": "7"},
		"level":         {"SINT_LOG_LEVEL": "loud"},
		"format":        {"SINT_LOG_FORMAT": "xml"},
		"backend":       {"SINT_SESSION_BACKEND": "memcached"},
		"audit dsn":     {"SINT_AUDIT_BACKEND": "sqlite"},
		"audit backend": {"SINT_AUDIT_BACKEND": "mongo", "SINT_AUDIT_DSN": "x"},
		"limit":         {"SINT_STABILIZE_LIMIT": "0"},
		"policy":        {"SINT_INCOMPLETE_POLICY": "lenient"},
		"mode":          {"SINT_ENV_MODE": "batch"},
		"debounce":      {"SINT_DEBOUNCE": "0s"},
		"scoring file":  {"SINT_SCORING_FILE": "/nonexistent/weights.yaml"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnvParseErrorPrefix(t *testing.T) {
	t.Setenv("SINT_SEED", "-1")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "parse env:")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SINT_PLAYERS=3\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("SINT_PLAYERS") })

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Players)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	_, err := Load()
	assert.NoError(t, err)
}

func TestOpenSessionsMemory(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)
	store, closeFn, err := c.OpenSessions(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, store)
	assert.NoError(t, closeFn())
}
