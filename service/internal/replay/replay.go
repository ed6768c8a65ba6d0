// internal/replay/replay.go

// Package replay drives a rules engine through recorded action logs. It
// holds the block-oriented Verifier, the single-step Linear verifier and the
// Stabilize loop both of them share for non-interactive phases.
package replay

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/scoring"
	"github.com/pippijn/sint/service/internal/logging"
	"github.com/sirupsen/logrus"
)

// DefaultStabilizeLimit bounds the implicit ready votes submitted by one
// Stabilize call.
const DefaultStabilizeLimit = 100

// Assertion-class errors. These indicate a broken engine or caller and are
// never retried.
var (
	// ErrMissingSnapshot is returned when the engine accepts an action but
	// returns no snapshot.
	ErrMissingSnapshot = errors.New("replay: engine returned no snapshot")
	// ErrImplicitReady is returned when the engine rejects a ready vote
	// submitted on an actor's behalf.
	ErrImplicitReady = errors.New("replay: implicit ready rejected")
	// ErrNoRoster is returned when neither a roster nor a start snapshot is given.
	ErrNoRoster = errors.New("replay: roster is required")
)

// IncompletePolicy decides what happens when a block applies cleanly but
// leaves the round open.
type IncompletePolicy uint8

const (
	// IncompleteContinue reports the open round on the result and keeps
	// going. The next block continues the same round.
	IncompleteContinue IncompletePolicy = iota
	// IncompleteStrict stops at the open block and marks the result as not
	// successful.
	IncompleteStrict
)

func (p IncompletePolicy) String() string {
	switch p {
	case IncompleteContinue:
		return "continue"
	case IncompleteStrict:
		return "strict"
	}
	return fmt.Sprintf("IncompletePolicy(%d)", uint8(p))
}

// ParseIncompletePolicy accepts "continue" or "strict".
func ParseIncompletePolicy(s string) (IncompletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return IncompleteContinue, nil
	case "strict":
		return IncompleteStrict, nil
	}
	return 0, fmt.Errorf("replay: unknown incomplete policy %q", s)
}

// options shared by Verifier and Linear.
type options struct {
	log     logrus.FieldLogger
	limit   int
	policy  IncompletePolicy
	weights scoring.Weights
}

func (o *options) defaults() {
	if o.log == nil {
		o.log = logging.Discard()
	}
	if o.limit <= 0 {
		o.limit = DefaultStabilizeLimit
	}
}

// Option configures a Verifier or Linear.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithStabilizeLimit sets the implicit ready ceiling per Stabilize call.
func WithStabilizeLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithIncompletePolicy selects how open rounds are reported.
func WithIncompletePolicy(p IncompletePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithWeights sets the weights used for the block-level score.
func WithWeights(w scoring.Weights) Option {
	return func(o *options) { o.weights = w }
}

func buildOptions(opts []Option) options {
	o := options{weights: scoring.DefaultWeights()}
	for _, fn := range opts {
		fn(&o)
	}
	o.defaults()
	return o
}

func genesis(eng engine.Engine, roster []engine.PlayerID, seed uint64, start *engine.Snapshot) (*engine.Snapshot, error) {
	if start != nil {
		return start, nil
	}
	if len(roster) == 0 {
		return nil, ErrNoRoster
	}
	s, err := eng.NewGame(roster, seed)
	if err != nil {
		return nil, fmt.Errorf("replay: new game: %w", err)
	}
	if s == nil {
		return nil, ErrMissingSnapshot
	}
	return s, nil
}
