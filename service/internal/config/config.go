// internal/config/config.go

// Package config loads service configuration from the environment, an
// optional .env file and an optional YAML scoring weights file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/scoring"
	episode "github.com/pippijn/sint/service/internal/env"
	"github.com/pippijn/sint/service/internal/replay"
	"github.com/pippijn/sint/service/internal/session"
	"github.com/sirupsen/logrus"
)

// Config is the service configuration.
type Config struct {
	LogLevel  string `env:"SINT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SINT_LOG_FORMAT" envDefault:"text"`

	Players int    `env:"SINT_PLAYERS" envDefault:"4"`
	Seed    uint64 `env:"SINT_SEED" envDefault:"12345"`

	SessionBackend string        `env:"SINT_SESSION_BACKEND" envDefault:"memory"`
	RedisAddr      string        `env:"SINT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPrefix    string        `env:"SINT_REDIS_PREFIX" envDefault:"sint:session:"`
	SessionTTL     time.Duration `env:"SINT_SESSION_TTL" envDefault:"0s"`

	AuditBackend string `env:"SINT_AUDIT_BACKEND" envDefault:"none"`
	AuditDSN     string `env:"SINT_AUDIT_DSN"`

	StabilizeLimit   int           `env:"SINT_STABILIZE_LIMIT" envDefault:"100"`
	IncompletePolicy string        `env:"SINT_INCOMPLETE_POLICY" envDefault:"continue"`
	EnvMode          string        `env:"SINT_ENV_MODE" envDefault:"linear"`
	Debounce         time.Duration `env:"SINT_DEBOUNCE" envDefault:"1s"`
	ScoringFile      string        `env:"SINT_SCORING_FILE"`

	// Weights are the defaults overlaid with ScoringFile, if set.
	Weights scoring.Weights `env:"-"`
}

// Load reads .env from the working directory when present, then parses the
// environment, then loads scoring weights, then validates.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv is Load without the .env file.
func FromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.Weights = scoring.DefaultWeights()
	if c.ScoringFile != "" {
		w, err := scoring.LoadWeights(c.ScoringFile)
		if err != nil {
			return Config{}, err
		}
		c.Weights = w
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects unknown backends and out-of-range limits.
func (c Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("SINT_LOG_LEVEL: %w", err))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("SINT_LOG_FORMAT: unknown format %q", c.LogFormat))
	}
	if c.Players < 1 || c.Players > engine.MaxPlayers {
		errs = append(errs, fmt.Errorf("SINT_PLAYERS: %d outside 1..%d", c.Players, engine.MaxPlayers))
	}
	switch c.SessionBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("SINT_REDIS_ADDR: required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("SINT_SESSION_BACKEND: unknown backend %q", c.SessionBackend))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("SINT_SESSION_TTL: negative duration %s", c.SessionTTL))
	}
	switch c.AuditBackend {
	case "", "none":
	case "sqlite", "postgres":
		if c.AuditDSN == "" {
			errs = append(errs, fmt.Errorf("SINT_AUDIT_DSN: required for the %s backend", c.AuditBackend))
		}
	default:
		errs = append(errs, fmt.Errorf("SINT_AUDIT_BACKEND: unknown backend %q", c.AuditBackend))
	}
	if c.StabilizeLimit <= 0 {
		errs = append(errs, fmt.Errorf("SINT_STABILIZE_LIMIT: must be positive, got %d", c.StabilizeLimit))
	}
	if _, err := replay.ParseIncompletePolicy(c.IncompletePolicy); err != nil {
		errs = append(errs, fmt.Errorf("SINT_INCOMPLETE_POLICY: %w", err))
	}
	if _, err := episode.ParseMode(c.EnvMode); err != nil {
		errs = append(errs, fmt.Errorf("SINT_ENV_MODE: %w", err))
	}
	if c.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("SINT_DEBOUNCE: must be positive, got %s", c.Debounce))
	}
	return errors.Join(errs...)
}

// Roster returns P1..Pn for the configured player count.
func (c Config) Roster() []engine.PlayerID {
	roster := make([]engine.PlayerID, c.Players)
	for i := range roster {
		roster[i] = fmt.Sprintf("P%d", i+1)
	}
	return roster
}

// ReplayOptions returns the verifier options the configuration selects.
func (c Config) ReplayOptions(log logrus.FieldLogger) []replay.Option {
	policy, _ := replay.ParseIncompletePolicy(c.IncompletePolicy)
	return []replay.Option{
		replay.WithLogger(log),
		replay.WithStabilizeLimit(c.StabilizeLimit),
		replay.WithIncompletePolicy(policy),
		replay.WithWeights(c.Weights),
	}
}

// Mode returns the configured driver mode.
func (c Config) Mode() episode.Mode {
	m, _ := episode.ParseMode(c.EnvMode)
	return m
}

// OpenSessions returns the configured session store and a function that
// releases it.
func (c Config) OpenSessions(ctx context.Context) (session.Store, func() error, error) {
	if c.SessionBackend != "redis" {
		return session.NewMemoryStore(), func() error { return nil }, nil
	}
	client, err := session.DialRedis(ctx, c.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client, c.RedisPrefix, c.SessionTTL), client.Close, nil
}
