package ai

import (
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// Candidate is one possible action with its extracted feature vector.
type Candidate struct {
	Action   engine.Action
	Features []float64
	Score    float64
}

// Enumeration thresholds.
const (
	healHPThreshold   = 70
	threatDistance    = 6
	gatherStopAt      = 3
	retreatHPHighElo  = 70
	retreatHPLowElo   = 60
	retreatEloCutoff  = 1500
	shootDistanceNorm = 16.0
)

// healValueOrder lists consumable heal items from strongest to weakest.
var healValueOrder = []string{"heal.major", "heal.large", "heal.medium", "heal.small"}

// Enumerate lists every action the side could take right now, with feature
// vectors filled in for the scored action types.
func Enumerate(m *engine.Match, side string, cat engine.Catalog) []Candidate {
	me := m.Actor(side)
	opp := m.Opponent(side)
	if me == nil || opp == nil {
		return nil
	}
	var cands []Candidate

	cands = append(cands, shootCandidates(m, me, opp, cat)...)
	cands = append(cands, moveCandidates(m, side, me, opp)...)
	if c := healCandidate(me); c != nil {
		cands = append(cands, *c)
	}
	if c := craftWallCandidate(m, me, opp, cat); c != nil {
		cands = append(cands, *c)
	}
	if c := craftWeaponCandidate(me, cat); c != nil {
		cands = append(cands, *c)
	}
	cands = append(cands, interactCandidates(m, me)...)
	return cands
}

func shootCandidates(m *engine.Match, me, opp *engine.Entity, cat engine.Catalog) []Candidate {
	var cands []Candidate
	dist := engine.Manhattan(me.Pos, opp.Pos)
	los := m.HasStraightLOS(me.Pos, opp.Pos)

	for _, key := range me.Weapons {
		recipe := cat.Get(key)
		if recipe == nil || recipe.Output.Weapon == nil {
			continue
		}
		weapon := recipe.Output.Weapon
		if !trajectoryValid(m, me.Pos, opp.Pos, weapon) {
			continue
		}
		canKill := 0.0
		if weapon.Damage >= opp.HP {
			canKill = 1
		}
		hasLOS := 0.0
		if los {
			hasLOS = 1
		}
		cands = append(cands, Candidate{
			Action: engine.Action{Type: engine.ActionShoot, Params: engine.ActionParams{
				WeaponKey: key, Target: &engine.Cell{X: opp.Pos.X, Y: opp.Pos.Y},
			}},
			Features: []float64{float64(weapon.Damage), float64(dist) / shootDistanceNorm, canKill, hasLOS},
		})
	}
	return cands
}

// trajectoryValid mirrors the SHOOT resolver's checks without mutating.
func trajectoryValid(m *engine.Match, from, to engine.Cell, w *engine.WeaponSpec) bool {
	dist := engine.Manhattan(from, to)
	if dist < 1 || dist > w.Range {
		return false
	}
	switch w.WeaponClass {
	case engine.ClassStraight:
		if !engine.StraightLine(from, to) {
			return false
		}
		if engine.WallBlocksLine(m.Entities.Walls, from, to) && !w.ShootsOverWalls {
			return false
		}
	case engine.ClassDiag:
		if !engine.DiagonalLine(from, to) {
			return false
		}
	case engine.ClassArc:
		if dist < 2 {
			return false
		}
	case engine.ClassMelee:
		if dist != 1 {
			return false
		}
	}
	return true
}

func moveCandidates(m *engine.Match, side string, me, opp *engine.Entity) []Candidate {
	optimal := engine.OptimalPath(m, side)
	var nextStep *engine.Cell
	if len(optimal) > 1 {
		nextStep = &optimal[1]
	}

	retreatHP := retreatHPLowElo
	if m.Elo > retreatEloCutoff {
		retreatHP = retreatHPHighElo
	}
	oldDist := engine.Manhattan(me.Pos, opp.Pos)

	var cands []Candidate
	for _, off := range [4]engine.Cell{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}} {
		to := engine.Cell{X: me.Pos.X + off.X, Y: me.Pos.Y + off.Y}
		if !engine.InBounds(to, m.GridSize.W, m.GridSize.H) {
			continue
		}
		if m.CellOccupied(to, false, false) {
			continue
		}
		newDist := engine.Manhattan(to, opp.Pos)

		approach := float64(oldDist - newDist)
		cover := 0.0
		for _, wl := range m.Entities.Walls {
			if engine.Manhattan(wl.Pos, to) == 1 {
				cover = 1
				break
			}
		}
		retreat := 0.0
		if me.HP <= retreatHP && newDist > oldDist {
			retreat = 1
		}
		pickup := 0.0
		if m.LootAt(to) >= 0 || resourceAt(m, to) {
			pickup = 1
		}
		onPath := 0.0
		if nextStep != nil && to == *nextStep {
			onPath = 1
		}

		cands = append(cands, Candidate{
			Action:   engine.Action{Type: engine.ActionMove, Params: engine.ActionParams{To: &to}},
			Features: []float64{approach, cover, retreat, pickup, onPath},
		})
	}
	return cands
}

func resourceAt(m *engine.Match, c engine.Cell) bool {
	for _, lists := range [][]engine.Cell{m.Resources.Trees, m.Resources.Stones, m.Resources.Hay} {
		for _, rc := range lists {
			if rc == c {
				return true
			}
		}
	}
	return false
}

func healCandidate(me *engine.Entity) *Candidate {
	if me.HP > healHPThreshold {
		return nil
	}
	for _, key := range healValueOrder {
		if me.Inventory[key] > 0 {
			return &Candidate{
				Action: engine.Action{Type: engine.ActionHeal, Params: engine.ActionParams{Key: key}},
			}
		}
	}
	return nil
}

func craftWallCandidate(m *engine.Match, me, opp *engine.Entity, cat engine.Catalog) *Candidate {
	recipe := cat.Get("wall.wood")
	if recipe == nil || recipe.Output.Wall == nil {
		return nil
	}
	underThreat := m.HasStraightLOS(opp.Pos, me.Pos) && engine.Manhattan(me.Pos, opp.Pos) <= threatDistance
	if !underThreat {
		return nil
	}
	if me.Inventory["wood"] < recipe.Costs.Wood || me.Inventory["stone"] < recipe.Costs.Stone {
		return nil
	}
	pos := engine.Cell{X: me.Pos.X + step(opp.Pos.X-me.Pos.X), Y: me.Pos.Y + step(opp.Pos.Y-me.Pos.Y)}
	if !engine.InBounds(pos, m.GridSize.W, m.GridSize.H) || m.CellOccupied(pos, false, false) {
		return nil
	}
	return &Candidate{
		Action: engine.Action{Type: engine.ActionCraftWall, Params: engine.ActionParams{
			Key: "wall.wood", Pos: &pos,
		}},
		Features: []float64{1, 1, 0},
	}
}

func craftWeaponCandidate(me *engine.Entity, cat engine.Catalog) *Candidate {
	for _, key := range me.Weapons {
		if r := cat.Get(key); r != nil && r.Output.Weapon != nil && r.Output.Weapon.WeaponClass != engine.ClassMelee {
			return nil // already has a ranged weapon
		}
	}
	recipe := cat.Get(engine.WeaponKey(engine.ClassStraight, 1))
	if recipe == nil {
		return nil
	}
	if me.Inventory["wood"] < recipe.Costs.Wood || me.Inventory["stone"] < recipe.Costs.Stone || me.Inventory["food"] < recipe.Costs.Food {
		return nil
	}
	return &Candidate{
		Action: engine.Action{Type: engine.ActionCraftWeapon, Params: engine.ActionParams{Key: recipe.Key}},
	}
}

func interactCandidates(m *engine.Match, me *engine.Entity) []Candidate {
	if me.Inventory["wood"]+me.Inventory["stone"] >= gatherStopAt {
		return nil
	}
	var cands []Candidate
	for _, off := range [4]engine.Cell{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}} {
		pos := engine.Cell{X: me.Pos.X + off.X, Y: me.Pos.Y + off.Y}
		kind := resourceKindAt(m, pos)
		if kind == "" {
			continue
		}
		cands = append(cands, Candidate{
			Action: engine.Action{Type: engine.ActionInteract, Params: engine.ActionParams{
				ResourceType: kind, Pos: &pos,
			}},
		})
	}
	return cands
}

func resourceKindAt(m *engine.Match, c engine.Cell) string {
	for _, rc := range m.Resources.Trees {
		if rc == c {
			return "tree"
		}
	}
	for _, rc := range m.Resources.Stones {
		if rc == c {
			return "stone"
		}
	}
	for _, rc := range m.Resources.Hay {
		if rc == c {
			return "hay"
		}
	}
	return ""
}

func step(delta int) int {
	switch {
	case delta > 0:
		return 1
	case delta < 0:
		return -1
	}
	return 0
}
