// cmd/verify/main.go

// Command verify replays a solution file against the reference engine and
// prints the outcome, the failure summary and optionally the trajectory.
//
//	verify -file solution.txt [-session ID] [-seed N] [-trajectory]
//
// Configuration comes from SINT_* environment variables and .env.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pippijn/sint/engine/sim"
	"github.com/pippijn/sint/service/internal/audit"
	"github.com/pippijn/sint/service/internal/config"
	"github.com/pippijn/sint/service/internal/logging"
	"github.com/pippijn/sint/service/internal/replay"
	"github.com/pippijn/sint/service/internal/session"
)

// errRejected exits with status 2 so scripts can tell a rejected solution
// from a broken invocation.
var errRejected = errors.New("solution rejected")

func main() {
	err := run()
	switch {
	case err == nil:
	case errors.Is(err, errRejected):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "verify: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		file       string
		sessionID  string
		seed       uint64
		trajectory bool
	)
	flag.StringVar(&file, "file", "-", "solution file, - for stdin")
	flag.StringVar(&sessionID, "session", "", "verify through the session cache under this id")
	flag.Uint64Var(&seed, "seed", 0, "seed, overriding the solution's SEED line")
	flag.BoolVar(&trajectory, "trajectory", false, "print the per-round trajectory")
	flag.Parse()
	seedSet := false
	flag.Visit(func(f *flag.Flag) { seedSet = seedSet || f.Name == "seed" })

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sol, err := readSolution(file)
	if err != nil {
		return err
	}
	switch {
	case seedSet:
	case sol.Seed != nil:
		seed = *sol.Seed
	default:
		seed = cfg.Seed
	}
	roster := sol.Roster()
	if len(roster) == 0 {
		roster = cfg.Roster()
	}

	eng := sim.New(sim.WithWeights(cfg.Weights))
	v := replay.NewVerifier(eng, cfg.ReplayOptions(log)...)

	rec, err := audit.Open(ctx, cfg.AuditBackend, cfg.AuditDSN)
	if err != nil {
		return err
	}
	defer rec.Close()

	var res *replay.Result
	if sessionID != "" {
		store, closeStore, err := cfg.OpenSessions(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		cache := session.NewCache(store, v, session.WithLogger(log), session.WithRecorder(rec))
		if res, err = cache.VerifyWithSession(ctx, sessionID, roster, seed, sol.Rounds); err != nil {
			return err
		}
	} else {
		if res, err = v.Verify(ctx, replay.Request{Roster: roster, Seed: seed, Rounds: sol.Rounds}); err != nil {
			return err
		}
		err := rec.Record(ctx, audit.Record{
			Rounds:      len(sol.Rounds),
			Consumed:    res.Consumed,
			Success:     res.Success,
			Incomplete:  res.Incomplete,
			Score:       res.Score,
			Fingerprint: res.Final.Fingerprint(),
			Summary:     res.Summary(),
		})
		if err != nil {
			log.WithError(err).Warn("audit record failed")
		}
	}

	fmt.Printf("Success: %v\n", res.Success)
	fmt.Printf("Score: %.2f\n", res.Score)
	fmt.Printf("Rounds: %d/%d consumed\n", res.Consumed, len(sol.Rounds))
	fmt.Printf("Final: turn %d, %s, hull %d\n", res.Final.TurnCount, res.Final.Phase, res.Final.HullIntegrity)
	if res.Incomplete {
		fmt.Printf("Round %d is not finished: some players still have AP.\n", res.IncompleteRound)
	}
	if res.Ignored > 0 {
		fmt.Printf("Ignored %d actions after the game ended.\n", res.Ignored)
	}
	if res.Failed != nil {
		fmt.Print(res.Failed.Summary())
	}

	if trajectory {
		initial, err := eng.NewGame(roster, seed)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(replay.FormatTrajectory(eng, initial, res.History), "\n"))
	}

	if !res.Success {
		return errRejected
	}
	return nil
}

func readSolution(path string) (*replay.Solution, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	sol, err := replay.ParseSolution(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sol, nil
}
