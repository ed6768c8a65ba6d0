// internal/replay/solution.go
package replay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pippijn/sint/engine"
)

// Solution is a parsed solution file.
//
//	# comment
//	SEED 12345
//	PLAYERS 4
//	P1: Move 0
//	P2: PickUp Peppernut
//	ROUND
//	P1: Throw P2 0
//
// ROUND closes the current block. A file without ROUND lines is one block;
// the verifier handles blocks that span several turns.
type Solution struct {
	Seed    *uint64
	Players int
	Rounds  []engine.RoundBlock
}

// Records returns every record of every block in order.
func (s *Solution) Records() []engine.Record {
	var out []engine.Record
	for _, b := range s.Rounds {
		out = append(out, b...)
	}
	return out
}

// Roster returns the actor ids named in the file in order of first
// appearance, padded to Players with P<n> ids.
func (s *Solution) Roster() []engine.PlayerID {
	var roster []engine.PlayerID
	seen := make(map[engine.PlayerID]bool)
	for _, rec := range s.Records() {
		if !seen[rec.Actor] {
			seen[rec.Actor] = true
			roster = append(roster, rec.Actor)
		}
	}
	for n := 1; len(roster) < s.Players; n++ {
		id := engine.PlayerID("P" + strconv.Itoa(n))
		if !seen[id] {
			seen[id] = true
			roster = append(roster, id)
		}
	}
	return roster
}

// ParseSolution reads a solution file. Unknown commands are errors.
func ParseSolution(r io.Reader) (*Solution, error) {
	sol := &Solution{}
	var block engine.RoundBlock
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "SEED":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: SEED takes one value", n)
			}
			v, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: seed: %w", n, err)
			}
			sol.Seed = &v
			continue
		case "PLAYERS":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: PLAYERS takes one value", n)
			}
			v, err := strconv.Atoi(fields[1])
			if err != nil || v < 1 || v > engine.MaxPlayers {
				return nil, fmt.Errorf("line %d: bad player count %q", n, fields[1])
			}
			sol.Players = v
			continue
		case "ROUND":
			if len(block) > 0 {
				sol.Rounds = append(sol.Rounds, block)
				block = nil
			}
			continue
		}

		actor, cmd, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: expected \"actor: command\", got %q", n, line)
		}
		actor = strings.TrimSpace(actor)
		if actor == "" {
			return nil, fmt.Errorf("line %d: missing actor", n)
		}
		a, err := ParseCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		block = append(block, engine.Record{Actor: actor, Action: a})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(block) > 0 {
		sol.Rounds = append(sol.Rounds, block)
	}
	return sol, nil
}

// ParseCommand parses the command half of a solution line, the same text
// engine.Action.String produces for well-formed single-line actions.
func ParseCommand(cmd string) (engine.Action, error) {
	cmd = strings.TrimSpace(cmd)
	name, rest, _ := strings.Cut(cmd, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s takes %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}
	atoi := func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s: bad number %q", name, s)
		}
		return v, nil
	}

	switch engine.ActionType(name) {
	case engine.ActBake, engine.ActShoot, engine.ActExtinguish, engine.ActRepair,
		engine.ActRaiseShields, engine.ActEvasiveManeuvers, engine.ActLookout, engine.ActInteract:
		if err := want(0); err != nil {
			return engine.Action{}, err
		}
		return engine.Simple(engine.ActionType(name)), nil
	case engine.ActPass:
		if err := want(0); err != nil {
			return engine.Action{}, err
		}
		return engine.Pass(), nil
	case engine.ActMove:
		if err := want(1); err != nil {
			return engine.Action{}, err
		}
		to, err := atoi(args[0])
		if err != nil {
			return engine.Action{}, err
		}
		return engine.Move(to), nil
	case engine.ActDrop:
		if err := want(1); err != nil {
			return engine.Action{}, err
		}
		idx, err := atoi(args[0])
		if err != nil {
			return engine.Action{}, err
		}
		return engine.Drop(idx), nil
	case engine.ActThrow:
		if err := want(2); err != nil {
			return engine.Action{}, err
		}
		idx, err := atoi(args[1])
		if err != nil {
			return engine.Action{}, err
		}
		return engine.Throw(args[0], idx), nil
	case engine.ActPickUp:
		if len(args) == 0 {
			return engine.PickUp(engine.ItemPeppernut), nil
		}
		if err := want(1); err != nil {
			return engine.Action{}, err
		}
		it, err := engine.ParseItemType(args[0])
		if err != nil {
			return engine.Action{}, err
		}
		return engine.PickUp(it), nil
	case engine.ActRevive:
		if err := want(1); err != nil {
			return engine.Action{}, err
		}
		return engine.Revive(args[0]), nil
	case engine.ActFirstAid:
		if err := want(1); err != nil {
			return engine.Action{}, err
		}
		return engine.FirstAid(args[0]), nil
	case engine.ActChat:
		return engine.Chat(rest), nil
	}
	switch name {
	case "Ready":
		return engine.VoteReady(true), nil
	case "Unready":
		return engine.VoteReady(false), nil
	}
	return engine.Action{}, fmt.Errorf("unknown command %q", cmd)
}

// FormatSolution writes blocks in the format ParseSolution reads.
func FormatSolution(w io.Writer, seed uint64, players int, rounds []engine.RoundBlock) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "SEED %d\nPLAYERS %d\n", seed, players)
	for i, block := range rounds {
		if i > 0 {
			bw.WriteString("ROUND\n")
		}
		for _, rec := range block {
			fmt.Fprintln(bw, rec)
		}
	}
	return bw.Flush()
}
