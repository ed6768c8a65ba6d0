// cmd/rollout/main.go

// Command rollout plays concurrent episodes with a seeded random policy
// over the legal actions. It is a smoke test for the training surface: every
// episode runs its own Driver and, in session mode, its own session id.
//
//	rollout [-episodes N] [-parallel P] [-steps MAX] [-mode linear|session]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pippijn/sint/engine"
	"github.com/pippijn/sint/engine/agent"
	"github.com/pippijn/sint/engine/sim"
	"github.com/pippijn/sint/service/internal/config"
	"github.com/pippijn/sint/service/internal/env"
	"github.com/pippijn/sint/service/internal/logging"
	"github.com/pippijn/sint/service/internal/replay"
	"github.com/pippijn/sint/service/internal/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type outcome struct {
	id     string
	seed   uint64
	steps  int
	reward float64
	final  *engine.Snapshot
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rollout: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		episodes int
		parallel int
		maxSteps int
		mode     string
	)
	flag.IntVar(&episodes, "episodes", 8, "number of episodes")
	flag.IntVar(&parallel, "parallel", 4, "episodes run at once")
	flag.IntVar(&maxSteps, "steps", 500, "step ceiling per episode")
	flag.StringVar(&mode, "mode", "", "linear or session (default SINT_ENV_MODE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if mode != "" {
		cfg.EnvMode = mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng := sim.New(sim.WithWeights(cfg.Weights))
	if err := agent.CheckSchema(eng.Schema()); err != nil {
		return err
	}

	var cache *session.Cache
	if cfg.Mode() == env.ModeSession {
		store, closeStore, err := cfg.OpenSessions(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		cache = session.NewCache(store, replay.NewVerifier(eng, cfg.ReplayOptions(log)...), session.WithLogger(log))
	}

	results := make([]outcome, episodes)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range results {
		seed := cfg.Seed + uint64(i)
		g.Go(func() error {
			id := uuid.NewString()
			opts := []env.Option{
				env.WithLogger(log.WithField("episode", id)),
				env.WithStabilizeLimit(cfg.StabilizeLimit),
			}
			if cache != nil {
				opts = append(opts, env.WithSession(cache, id))
			}
			d, err := env.New(eng, cfg.Roster(), opts...)
			if err != nil {
				return err
			}
			out, err := play(ctx, d, seed, maxSteps)
			if err != nil {
				return fmt.Errorf("episode %s seed %d: %w", id, seed, err)
			}
			out.id = id
			results[i] = out
			if cache != nil {
				return cache.Forget(ctx, id)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	report(results, log)
	return nil
}

// play runs one episode until the game ends or maxSteps is reached.
func play(ctx context.Context, d *env.Driver, seed uint64, maxSteps int) (outcome, error) {
	out := outcome{seed: seed}
	if _, err := d.Reset(ctx, seed); err != nil {
		return out, err
	}
	rng := seed | 1
	for out.steps < maxSteps {
		mask := d.ActionMask()
		var legal []int
		for i, ok := range mask {
			if ok {
				legal = append(legal, i)
			}
		}
		if len(legal) == 0 {
			break
		}
		rng ^= rng << 13
		rng ^= rng >> 7
		rng ^= rng << 17
		_, reward, done, err := d.Step(ctx, legal[rng%uint64(len(legal))])
		if err != nil {
			return out, err
		}
		out.steps++
		out.reward += reward
		if done {
			break
		}
	}
	out.final = d.Snapshot()
	return out, nil
}

func report(results []outcome, log logrus.FieldLogger) {
	sort.Slice(results, func(i, j int) bool { return results[i].seed < results[j].seed })
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTEPS\tTURN\tPHASE\tHULL\tREWARD\tEPISODE")
	wins := 0
	for _, r := range results {
		if r.final.Phase == engine.PhaseVictory {
			wins++
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%d\t%.2f\t%s\n",
			r.seed, r.steps, r.final.TurnCount, r.final.Phase, r.final.HullIntegrity, r.reward, r.id)
	}
	w.Flush()
	log.WithFields(logrus.Fields{"episodes": len(results), "wins": wins}).Info("rollout finished")
}
