// internal/replay/linear.go
package replay

import (
	"context"
	"fmt"
	"slices"

	"github.com/pippijn/sint/engine"
	"github.com/sirupsen/logrus"
)

// Linear applies a few records to an explicit snapshot and returns the
// dense reward for the transition. It has no notion of rounds: there is no
// completeness check, only the same Stabilize pass the Verifier uses.
type Linear struct {
	eng engine.Engine
	options
}

// NewLinear returns a Linear stepper over eng.
func NewLinear(eng engine.Engine, opts ...Option) *Linear {
	return &Linear{eng: eng, options: buildOptions(opts)}
}

// StepResult is the outcome of Linear.Step.
type StepResult struct {
	Next   *engine.Snapshot
	Reward float64
	// Applied holds the submitted records followed by any implicit ready
	// votes, in application order.
	Applied []engine.Record
}

// Step applies records to start. A rejection is returned as a *Rejection
// error and start is left as the caller's current state. history is the
// recent record log passed through to the engine's scorer.
func (l *Linear) Step(ctx context.Context, start *engine.Snapshot, records []engine.Record, history []engine.Record) (*StepResult, error) {
	if start == nil {
		return nil, ErrMissingSnapshot
	}
	s, applied, err := Stabilize(l.eng, start, l.limit, l.log)
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := l.eng.ApplyAction(s, rec.Actor, rec.Action, nil)
		if err != nil {
			l.log.WithFields(logrus.Fields{"actor": rec.Actor, "action": rec.Action}).WithError(err).Info("action rejected")
			return nil, newRejection(0, i, rec, err, s)
		}
		if next == nil {
			l.log.WithField("action", rec.Action).Error("engine returned no snapshot")
			return nil, fmt.Errorf("%w: %s", ErrMissingSnapshot, rec)
		}
		applied = append(applied, rec)

		next, implicit, err := Stabilize(l.eng, next, l.limit, l.log)
		if err != nil {
			return nil, err
		}
		applied = append(applied, implicit...)
		s = next
	}

	return &StepResult{
		Next:    s,
		Reward:  l.eng.ComputeScore(start, s, slices.Concat(history, records)),
		Applied: applied,
	}, nil
}
