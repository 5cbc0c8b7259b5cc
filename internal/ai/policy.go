// Package ai implements the opponent: candidate enumeration over the match
// snapshot, linear scoring against learned per-player weights, epsilon-greedy
// exploration, and a bounded multi-action turn loop.
package ai

import (
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// Policy scopes.
const (
	ScopeGlobal = "global"
	ScopePlayer = "player"
)

// Learning parameters: the first weight of every action the AI used shifts
// by LearnRate toward (win) or away from (loss) that action, clamped so a
// streak can never freeze an action out entirely.
const (
	LearnRate = 0.05
	MinWeight = 0.1
	MaxWeight = 5.0
)

// Weights is the per-action-type weight vector. Positions beyond the
// feature vector length are stored but ignored during scoring.
type Weights struct {
	W []float64 `json:"w"`
}

// Policy holds the learned scoring weights for one player (or the global
// default).
type Policy struct {
	Scope       string             `json:"scope"`
	PlayerID    string             `json:"playerId,omitempty"`
	Epsilon     float64            `json:"epsilon"`
	Actions     map[string]Weights `json:"actions"`
	GamesPlayed int                `json:"gamesPlayed"`
	Wins        int                `json:"wins"`
}

// DefaultPolicy returns the embedded global policy used when a player has
// no learned weights yet.
func DefaultPolicy() *Policy {
	return &Policy{
		Scope:   ScopeGlobal,
		Epsilon: 0.1,
		Actions: map[string]Weights{
			engine.ActionMove:      {W: []float64{1.0, 0.6, 0.8, 0.7, 1.2}},
			engine.ActionShoot:     {W: []float64{1.0, 0.2, 3.0, 0.5}},
			engine.ActionCraftWall: {W: []float64{1.0, 0.5, 0.0}},
		},
	}
}

// ForPlayer clones the policy into a player-scoped copy.
func (p *Policy) ForPlayer(playerID string) *Policy {
	cp := p.Clone()
	cp.Scope = ScopePlayer
	cp.PlayerID = playerID
	return cp
}

// Clone returns a deep copy.
func (p *Policy) Clone() *Policy {
	cp := *p
	cp.Actions = make(map[string]Weights, len(p.Actions))
	for k, v := range p.Actions {
		cp.Actions[k] = Weights{W: append([]float64(nil), v.W...)}
	}
	return &cp
}

// Score computes the dot product of an action's weights with a feature
// vector. Missing weights score zero; extra weight positions are ignored.
func (p *Policy) Score(actionType string, features []float64) float64 {
	w, ok := p.Actions[actionType]
	if !ok {
		return 0
	}
	n := len(features)
	if len(w.W) < n {
		n = len(w.W)
	}
	score := 0.0
	for i := 0; i < n; i++ {
		score += w.W[i] * features[i]
	}
	return score
}

// RecordOutcome applies the post-match learning update: bump the lead
// weight of every action type the AI used, up on a win and down on a loss.
func (p *Policy) RecordOutcome(won bool, actionTypes map[string]bool) {
	p.GamesPlayed++
	delta := -LearnRate
	if won {
		p.Wins++
		delta = LearnRate
	}
	for at := range actionTypes {
		w, ok := p.Actions[at]
		if !ok || len(w.W) == 0 {
			continue
		}
		w.W[0] = clampWeight(w.W[0] + delta)
		p.Actions[at] = w
	}
}

func clampWeight(v float64) float64 {
	if v < MinWeight {
		return MinWeight
	}
	if v > MaxWeight {
		return MaxWeight
	}
	return v
}
