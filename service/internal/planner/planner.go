// internal/planner/planner.go

// Package planner turns a stream of observed game states into decisions.
// Every observation cancels the pending decision and schedules a new one
// after the debounce window, so a burst of events produces one decision
// against the latest state. Decisions run one at a time on a single
// goroutine; an observation never interrupts a decision already running.
package planner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/service/internal/logging"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Observe after Close or after the planner's
// context is cancelled.
var ErrClosed = errors.New("planner: closed")

// Decider chooses and submits the next move for s.
type Decider interface {
	Decide(ctx context.Context, s *engine.Snapshot) error
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(ctx context.Context, s *engine.Snapshot) error

func (f DeciderFunc) Decide(ctx context.Context, s *engine.Snapshot) error { return f(ctx, s) }

// Config controls the scheduling.
type Config struct {
	// Debounce is the quiet period before a decision. Default: 1s.
	Debounce time.Duration
	// Log receives scheduling events. Default: discard.
	Log logrus.FieldLogger
}

func (c *Config) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = time.Second
	}
	if c.Log == nil {
		c.Log = logging.Discard()
	}
}

// Planner schedules debounced decisions. Observe and Close may be called
// from any goroutine. Only the latest observation is kept, so Observe
// never waits on a decision.
type Planner struct {
	cfg    Config
	decide Decider

	mu     sync.Mutex
	latest *engine.Snapshot
	fresh  bool
	closed bool

	notify chan struct{}
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once

	observed  atomic.Int64
	decisions atomic.Int64
}

// New starts a Planner that calls d. ctx is passed to every decision;
// cancelling it stops the planner without draining.
func New(ctx context.Context, cfg Config, d Decider) *Planner {
	cfg.defaults()
	p := &Planner{
		cfg:    cfg,
		decide: d,
		notify: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// Observe records s as the latest state and reschedules the decision.
func (p *Planner) Observe(s *engine.Snapshot) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.latest, p.fresh = s, true
	p.mu.Unlock()
	p.observed.Add(1)

	select {
	case p.notify <- struct{}{}:
	default:
	}
	return nil
}

// Close stops accepting observations, runs the pending decision if one is
// scheduled, and waits for the planner goroutine to exit.
func (p *Planner) Close() error {
	p.once.Do(func() {
		p.shut()
		close(p.stop)
	})
	<-p.done
	return nil
}

// Stats returns how many observations were accepted and how many
// decisions ran.
func (p *Planner) Stats() (observed, decisions int64) {
	return p.observed.Load(), p.decisions.Load()
}

func (p *Planner) shut() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// take returns the latest observation if no decision has seen it yet.
func (p *Planner) take() (*engine.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.latest, p.fresh
	p.fresh = false
	return s, ok
}

func (p *Planner) run(ctx context.Context) {
	defer close(p.done)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerCh = nil, nil
		}
	}
	fire := func() {
		stopTimer()
		if s, ok := p.take(); ok {
			p.decideOn(ctx, s)
		}
	}

	for {
		select {
		case <-p.notify:
			stopTimer()
			timer = time.NewTimer(p.cfg.Debounce)
			timerCh = timer.C
		case <-timerCh:
			fire()
		case <-p.stop:
			fire()
			return
		case <-ctx.Done():
			p.shut()
			stopTimer()
			return
		}
	}
}

func (p *Planner) decideOn(ctx context.Context, s *engine.Snapshot) {
	log := p.cfg.Log
	if s != nil {
		log = log.WithFields(logrus.Fields{"turn": s.TurnCount, "phase": s.Phase})
	}
	p.decisions.Add(1)
	start := time.Now()
	if err := p.decide.Decide(ctx, s); err != nil {
		log.WithError(err).Warn("decision failed")
		return
	}
	log.WithField("took", time.Since(start)).Debug("decision made")
}
