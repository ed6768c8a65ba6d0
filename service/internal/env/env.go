// internal/env/env.go

// Package env is the episode control surface for training: Reset starts a
// game and advances it to the first decision, Step applies one table index
// for the active actor and advances to the next decision.
package env

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/agent"
	"github.com/pippijn/sint/service/internal/logging"
	"github.com/pippijn/sint/service/internal/replay"
	"github.com/pippijn/sint/service/internal/session"
	"github.com/sirupsen/logrus"
)

// ScoreScale divides the absolute block score in session mode.
const ScoreScale = 1000

var (
	// ErrNotReset is returned by Step before the first Reset.
	ErrNotReset = errors.New("env: Reset has not been called")
	// ErrEpisodeDone is returned by Step after the game has ended.
	ErrEpisodeDone = errors.New("env: episode is done")
	// ErrStalled means the game is not over but no actor owes a decision.
	ErrStalled = errors.New("env: no active actor")
	// ErrNotConsumed means the session verifier refused a clean block,
	// which happens under the strict incomplete policy.
	ErrNotConsumed = errors.New("env: block was not consumed")
)

// Mode selects how Step verifies an action.
type Mode uint8

const (
	// ModeLinear applies each action to the current snapshot and rewards
	// the transition with the engine's dense score.
	ModeLinear Mode = iota
	// ModeSession submits the growing log through a session cache and
	// rewards the absolute score of the resulting state.
	ModeSession
)

func (m Mode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeSession:
		return "session"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode accepts "linear" or "session".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return ModeLinear, nil
	case "session":
		return ModeSession, nil
	}
	return 0, fmt.Errorf("env: unknown mode %q", s)
}

// Driver runs one episode at a time. It is not safe for concurrent use;
// run one Driver per goroutine.
type Driver struct {
	eng    engine.Engine
	roster []engine.PlayerID
	log    logrus.FieldLogger
	limit  int

	mode   Mode
	cache  *session.Cache
	id     string
	linear *replay.Linear

	seed    uint64
	snap    *engine.Snapshot
	history []engine.Record
	rounds  []engine.RoundBlock
	steps   int
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Driver) { d.log = l }
}

// WithStabilizeLimit bounds the implicit ready votes per advance.
func WithStabilizeLimit(n int) Option {
	return func(d *Driver) { d.limit = n }
}

// WithSession selects session mode: every Step is verified through c under
// session id.
func WithSession(c *session.Cache, id string) Option {
	return func(d *Driver) {
		d.mode = ModeSession
		d.cache = c
		d.id = id
	}
}

// New returns a Driver for roster over eng. The default mode is linear.
func New(eng engine.Engine, roster []engine.PlayerID, opts ...Option) (*Driver, error) {
	if len(roster) == 0 || len(roster) > agent.NumRecipients {
		return nil, fmt.Errorf("env: roster size %d outside 1..%d", len(roster), agent.NumRecipients)
	}
	d := &Driver{eng: eng, roster: slices.Clone(roster), limit: replay.DefaultStabilizeLimit}
	for _, fn := range opts {
		fn(d)
	}
	if d.log == nil {
		d.log = logging.Discard()
	}
	if d.mode == ModeSession {
		if d.cache == nil {
			return nil, errors.New("env: session mode needs a cache")
		}
		if strings.TrimSpace(d.id) == "" {
			d.id = session.NewID()
		}
		d.log = d.log.WithField("session", d.id)
	}
	d.linear = replay.NewLinear(eng, replay.WithLogger(d.log), replay.WithStabilizeLimit(d.limit))
	return d, nil
}

// Reset starts a new game from seed and advances it to the first decision.
func (d *Driver) Reset(ctx context.Context, seed uint64) ([]float32, error) {
	d.seed = seed
	d.rounds = nil
	d.steps = 0

	switch d.mode {
	case ModeSession:
		if err := d.cache.Forget(ctx, d.id); err != nil {
			return nil, err
		}
		res, err := d.cache.VerifyWithSession(ctx, d.id, d.roster, seed, nil)
		if err != nil {
			return nil, err
		}
		d.snap, d.history = res.Final, res.History
	default:
		s, err := d.eng.NewGame(d.roster, seed)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, replay.ErrMissingSnapshot
		}
		s, implicit, err := replay.Stabilize(d.eng, s, d.limit, d.log)
		if err != nil {
			return nil, err
		}
		d.snap, d.history = s, implicit
	}

	d.log.WithFields(logrus.Fields{
		"seed":  seed,
		"mode":  d.mode,
		"phase": d.snap.Phase,
		"turn":  d.snap.TurnCount,
	}).Info("episode reset")
	return d.observe(), nil
}

// Step applies table index idx for the active actor. done is true exactly
// when the game reached Victory or GameOver.
//
// A masked index returns a *agent.MaskedActionError and an engine
// rejection returns a *replay.Rejection. Either way the state is unchanged.
func (d *Driver) Step(ctx context.Context, idx int) (obs []float32, reward float64, done bool, err error) {
	if d.snap == nil {
		return nil, 0, false, ErrNotReset
	}
	if d.snap.Phase.IsTerminal() {
		return d.observe(), 0, true, ErrEpisodeDone
	}
	actor, ok := replay.ActiveActor(d.snap)
	if !ok {
		return d.observe(), 0, false, fmt.Errorf("%w: %s turn %d", ErrStalled, d.snap.Phase, d.snap.TurnCount)
	}
	log := d.log.WithFields(logrus.Fields{"actor": actor, "turn": d.snap.TurnCount})

	a, err := agent.Resolve(d.eng, d.snap, actor, idx)
	if err != nil {
		log.WithField("index", idx).WithError(err).Error("invalid action index")
		return d.observe(), 0, false, err
	}
	rec := engine.Record{Actor: actor, Action: a}

	switch d.mode {
	case ModeSession:
		reward, err = d.stepSession(ctx, rec)
	default:
		reward, err = d.stepLinear(ctx, rec)
	}
	if err != nil {
		log.WithField("action", a).WithError(err).Error("step failed")
		return d.observe(), 0, false, err
	}
	d.steps++

	done = d.snap.Phase.IsTerminal()
	log.WithFields(logrus.Fields{"action": a, "reward": reward}).Debug("step")
	if done {
		d.log.WithFields(logrus.Fields{
			"phase": d.snap.Phase,
			"turn":  d.snap.TurnCount,
			"steps": d.steps,
		}).Info("episode done")
	}
	return d.observe(), reward, done, nil
}

func (d *Driver) stepSession(ctx context.Context, rec engine.Record) (float64, error) {
	rounds := append(slices.Clip(d.rounds), engine.RoundBlock{rec})
	res, err := d.cache.VerifyWithSession(ctx, d.id, d.roster, d.seed, rounds)
	if err != nil {
		return 0, err
	}
	if res.Failed != nil {
		return 0, res.Failed
	}
	if res.Consumed != len(rounds) {
		return 0, fmt.Errorf("%w: consumed %d of %d", ErrNotConsumed, res.Consumed, len(rounds))
	}
	d.rounds = rounds
	d.snap, d.history = res.Final, res.History
	return res.Score / ScoreScale, nil
}

func (d *Driver) stepLinear(ctx context.Context, rec engine.Record) (float64, error) {
	res, err := d.linear.Step(ctx, d.snap, []engine.Record{rec}, d.history)
	if err != nil {
		return 0, err
	}
	d.rounds = append(d.rounds, engine.RoundBlock{rec})
	d.snap = res.Next
	d.history = append(d.history, res.Applied...)
	return res.Reward, nil
}

// observe encodes the current state from the active actor's perspective.
func (d *Driver) observe() []float32 {
	actor, _ := replay.ActiveActor(d.snap)
	return agent.Observe(d.snap, actor)
}

// ActionMask returns the legal table indices for the active actor. It is
// all-false when nobody owes a decision.
func (d *Driver) ActionMask() [agent.NumActions]bool {
	var mask [agent.NumActions]bool
	if d.snap == nil {
		return mask
	}
	if actor, ok := replay.ActiveActor(d.snap); ok {
		agent.ActionMask(d.eng, d.snap, actor, &mask)
	}
	return mask
}

// ActiveActor returns the actor Step will act for.
func (d *Driver) ActiveActor() (engine.PlayerID, bool) {
	if d.snap == nil {
		return "", false
	}
	return replay.ActiveActor(d.snap)
}

// Snapshot returns the current state. Callers must not modify it.
func (d *Driver) Snapshot() *engine.Snapshot { return d.snap }

// History returns a copy of every record applied this episode, implicit
// ready votes included.
func (d *Driver) History() []engine.Record { return slices.Clone(d.history) }

// Rounds returns the submitted action log, one block per step.
func (d *Driver) Rounds() []engine.RoundBlock { return slices.Clone(d.rounds) }

// Mode reports the verification mode.
func (d *Driver) Mode() Mode { return d.mode }

// SessionID returns the session id in session mode.
func (d *Driver) SessionID() string { return d.id }

// Steps counts successful steps since Reset.
func (d *Driver) Steps() int { return d.steps }
