package ai

import (
	"fmt"

	"github.com/freeeve/gridfire/api/pkg/engine"
)

// MaxFreeActions caps how many free actions the AI may chain in one turn.
// This is a hard stop: without it a policy that keeps ranking a free action
// highest would never yield the turn.
const MaxFreeActions = 2

// TurnOutcome summarizes one AI turn.
type TurnOutcome struct {
	Actions []engine.Action
	Ended   bool
}

// RunTurn plays one full turn for the given side: enumerate candidates,
// score with the policy, pick by argmax with epsilon-greedy exploration,
// resolve, and repeat until a turn-consuming action lands or the game ends.
// rand drives only the exploration coin and pick, so tests can inject a
// seeded source and replay decisions exactly.
func RunTurn(m *engine.Match, side string, pol *Policy, cat engine.Catalog, rand func() float64) (*TurnOutcome, error) {
	out := &TurnOutcome{}
	freeTaken := 0

	for {
		cands := Enumerate(m, side, cat)
		if freeTaken >= MaxFreeActions {
			cands = filterConsuming(cands)
		}
		chosen := selectCandidate(cands, pol, rand)

		res, err := engine.Resolve(m, side, chosen.Action, cat)
		if err != nil {
			return nil, fmt.Errorf("ai resolve %s: %w", chosen.Action.Type, err)
		}
		m.ActionHistory = append(m.ActionHistory, engine.ActionRecord{Actor: side, Action: chosen.Action.Type})
		out.Actions = append(out.Actions, chosen.Action)

		if res.Ended {
			out.Ended = true
			return out, nil
		}
		if res.ConsumeTurn {
			return out, nil
		}
		freeTaken++
	}
}

// selectCandidate scores all candidates, takes the argmax, then with
// probability epsilon swaps in a uniform pick among the rest. SKIP_TURN is
// the fallback when nothing else is available.
func selectCandidate(cands []Candidate, pol *Policy, rand func() float64) Candidate {
	if len(cands) == 0 {
		return Candidate{Action: engine.Action{Type: engine.ActionSkipTurn}}
	}
	best := 0
	for i := range cands {
		cands[i].Score = pol.Score(cands[i].Action.Type, cands[i].Features)
		if cands[i].Score > cands[best].Score {
			best = i
		}
	}
	if len(cands) == 1 {
		return cands[0]
	}
	if rand() < pol.Epsilon {
		idx := int(rand() * float64(len(cands)-1))
		if idx >= len(cands)-1 {
			idx = len(cands) - 2
		}
		if idx >= best {
			idx++
		}
		return cands[idx]
	}
	return cands[best]
}

func filterConsuming(cands []Candidate) []Candidate {
	out := cands[:0]
	for _, c := range cands {
		if engine.ConsumesTurn(c.Action.Type) {
			out = append(out, c)
		}
	}
	return out
}

// ActionTypesTaken collects the distinct action types a side used, for the
// post-match learning update.
func ActionTypesTaken(history []engine.ActionRecord, side string) map[string]bool {
	types := make(map[string]bool)
	for _, rec := range history {
		if rec.Actor == side {
			types[rec.Action] = true
		}
	}
	return types
}
