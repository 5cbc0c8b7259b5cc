package engine

import "fmt"

// Resolve validates and applies one action to the snapshot for the given
// side. The snapshot is mutated in place; callers pass a clone and persist
// only on success. The catalog supplies recipe definitions for SHOOT and the
// crafting actions.
func Resolve(m *Match, side string, a Action, cat Catalog) (*Result, error) {
	actor := m.Actor(side)
	if actor == nil {
		return nil, ErrUnknownSide
	}

	switch a.Type {
	case ActionMove:
		return resolveMove(m, side, a.Params)
	case ActionShoot:
		return resolveShoot(m, side, a.Params, cat)
	case ActionCraftWeapon:
		return resolveCraftWeapon(m, side, a.Params, cat)
	case ActionCraftWall:
		return resolveCraftWall(m, side, a.Params, cat)
	case ActionHeal:
		return resolveHeal(m, side, a.Params, cat)
	case ActionInteract:
		return resolveInteract(m, side, a.Params)
	case ActionSkipTurn:
		return &Result{ConsumeTurn: true}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, a.Type)
}

func resolveMove(m *Match, side string, p ActionParams) (*Result, error) {
	actor := m.Actor(side)

	target := Cell{actor.Pos.X + p.DX, actor.Pos.Y + p.DY}
	if p.To != nil {
		target = *p.To
	}
	if !InBounds(target, m.GridSize.W, m.GridSize.H) {
		return nil, ErrOutOfBounds
	}
	reach := 1
	if actor.Effects.Move2 {
		reach = 2
	}
	if Manhattan(actor.Pos, target) > reach {
		return nil, ErrMoveTooFar
	}
	if m.CellOccupied(target, side == SidePlayer, side == SideAI) {
		return nil, ErrCellOccupied
	}

	actor.Pos = target
	meta := map[string]any{"to": target}

	if picked := pickupResources(m, actor, target); len(picked) > 0 {
		meta["resources"] = picked
	}
	if i := m.LootAt(target); i >= 0 {
		key := m.Loot[i].Key
		m.Loot = append(m.Loot[:i], m.Loot[i+1:]...)
		if isWeaponKey(key) {
			addWeapon(actor, key)
		} else {
			bumpInventory(actor, key, 1)
		}
		meta["loot"] = key
	}
	return &Result{ConsumeTurn: true, Meta: meta}, nil
}

// pickupResources removes any co-located resource cells (at most one per
// kind) and converts them into inventory.
func pickupResources(m *Match, actor *Entity, at Cell) []string {
	var picked []string
	take := func(cells *[]Cell, item string) {
		for i, c := range *cells {
			if c == at {
				*cells = append((*cells)[:i], (*cells)[i+1:]...)
				bumpInventory(actor, item, 1)
				picked = append(picked, item)
				return
			}
		}
	}
	take(&m.Resources.Trees, "wood")
	take(&m.Resources.Stones, "stone")
	take(&m.Resources.Hay, "food")
	return picked
}

func resolveShoot(m *Match, side string, p ActionParams, cat Catalog) (*Result, error) {
	actor := m.Actor(side)
	opp := m.Opponent(side)

	if !actor.HasWeapon(p.WeaponKey) {
		return nil, ErrWeaponNotEquipped
	}
	recipe := cat.Get(p.WeaponKey)
	if recipe == nil || recipe.Output.Weapon == nil {
		return nil, ErrUnknownRecipe
	}
	weapon := recipe.Output.Weapon

	if p.Target == nil {
		return nil, ErrBadParams
	}
	target := *p.Target
	if !InBounds(target, m.GridSize.W, m.GridSize.H) {
		return nil, ErrOutOfBounds
	}
	dist := Manhattan(actor.Pos, target)
	if dist < 1 || dist > weapon.Range {
		return nil, ErrNoTrajectory
	}

	switch weapon.WeaponClass {
	case ClassStraight:
		if !StraightLine(actor.Pos, target) {
			return nil, ErrNoTrajectory
		}
		if WallBlocksLine(m.Entities.Walls, actor.Pos, target) && !weapon.ShootsOverWalls {
			return nil, ErrNoTrajectory
		}
	case ClassDiag:
		if !DiagonalLine(actor.Pos, target) {
			return nil, ErrNoTrajectory
		}
	case ClassLob:
		// Any cell in range; arcs over walls.
	case ClassArc:
		if dist < 2 {
			return nil, ErrNoTrajectory
		}
	case ClassMelee:
		if dist != 1 {
			return nil, ErrNoTrajectory
		}
	default:
		return nil, ErrUnknownRecipe
	}

	meta := map[string]any{"target": target, "hit": false}
	if target == opp.Pos {
		opp.HP = clampHP(opp.HP - weapon.Damage)
		meta["hit"] = true
		meta["damage"] = weapon.Damage
		if opp.HP <= 0 {
			m.Status = StatusEnded
			m.Winner = side
			m.Reason = "ko"
			return &Result{ConsumeTurn: true, Ended: true, Meta: meta}, nil
		}
	}
	return &Result{ConsumeTurn: true, Meta: meta}, nil
}

func resolveCraftWeapon(m *Match, side string, p ActionParams, cat Catalog) (*Result, error) {
	actor := m.Actor(side)
	recipe := cat.Get(p.Key)
	if recipe == nil || !recipe.Enabled || recipe.Kind != KindWeapon {
		return nil, ErrUnknownRecipe
	}
	if err := payCosts(actor, recipe.Costs); err != nil {
		return nil, err
	}
	addWeapon(actor, recipe.Key)
	return &Result{ConsumeTurn: false, Meta: map[string]any{"crafted": recipe.Key}}, nil
}

func resolveCraftWall(m *Match, side string, p ActionParams, cat Catalog) (*Result, error) {
	actor := m.Actor(side)
	recipe := cat.Get(p.Key)
	if recipe == nil || !recipe.Enabled || recipe.Kind != KindWall || recipe.Output.Wall == nil {
		return nil, ErrUnknownRecipe
	}
	if p.Pos == nil {
		return nil, ErrBadParams
	}
	pos := *p.Pos
	if !InBounds(pos, m.GridSize.W, m.GridSize.H) {
		return nil, ErrOutOfBounds
	}
	if Manhattan(actor.Pos, pos) > recipe.Output.Wall.MaxPlaceDistance {
		return nil, ErrMoveTooFar
	}
	if m.CellOccupied(pos, false, false) {
		return nil, ErrCellOccupied
	}
	if err := payCosts(actor, recipe.Costs); err != nil {
		return nil, err
	}
	m.Entities.Walls = append(m.Entities.Walls, Wall{Pos: pos, HP: recipe.Output.Wall.HP})
	return &Result{ConsumeTurn: true, Meta: map[string]any{"wall": pos}}, nil
}

func resolveHeal(m *Match, side string, p ActionParams, cat Catalog) (*Result, error) {
	actor := m.Actor(side)

	// Mode 1: consume a held heal item.
	if amount, ok := HealAmounts[p.Key]; ok {
		if actor.Inventory[p.Key] <= 0 {
			return nil, ErrUnknownHealItem
		}
		bumpInventory(actor, p.Key, -1)
		before := actor.HP
		actor.HP = clampHP(actor.HP + amount)
		return &Result{Meta: map[string]any{"healed": actor.HP - before, "item": p.Key}}, nil
	}

	// Mode 2: craft-and-apply a healing recipe.
	recipe := cat.Get(p.Key)
	if recipe == nil || !recipe.Enabled || recipe.Kind != KindHealing {
		return nil, ErrUnknownHealItem
	}
	if err := payCosts(actor, recipe.Costs); err != nil {
		return nil, err
	}
	before := actor.HP
	actor.HP = clampHP(actor.HP + recipe.Output.Heal)
	return &Result{Meta: map[string]any{"healed": actor.HP - before, "recipe": recipe.Key}}, nil
}

func resolveInteract(m *Match, side string, p ActionParams) (*Result, error) {
	actor := m.Actor(side)
	if p.Pos == nil {
		return nil, ErrBadParams
	}
	pos := *p.Pos
	if Manhattan(actor.Pos, pos) > 1 {
		return nil, ErrInteractTooFar
	}

	var cells *[]Cell
	var item string
	switch p.ResourceType {
	case "tree":
		cells, item = &m.Resources.Trees, "wood"
	case "stone":
		cells, item = &m.Resources.Stones, "stone"
	case "hay":
		cells, item = &m.Resources.Hay, "food"
	default:
		return nil, ErrBadParams
	}

	for i, c := range *cells {
		if c == pos {
			*cells = append((*cells)[:i], (*cells)[i+1:]...)
			bumpInventory(actor, item, 1)
			return &Result{ConsumeTurn: true, Meta: map[string]any{"gathered": item}}, nil
		}
	}
	return nil, ErrNoResource
}

// payCosts verifies the full price before decrementing anything, so a
// failed craft leaves the inventory untouched.
func payCosts(actor *Entity, c Costs) error {
	if actor.Inventory["wood"] < c.Wood ||
		actor.Inventory["stone"] < c.Stone ||
		actor.Inventory["food"] < c.Food {
		return ErrInsufficientResources
	}
	bumpInventory(actor, "wood", -c.Wood)
	bumpInventory(actor, "stone", -c.Stone)
	bumpInventory(actor, "food", -c.Food)
	return nil
}

func addWeapon(actor *Entity, key string) {
	if actor.HasWeapon(key) {
		return
	}
	actor.Weapons = append(actor.Weapons, key)
}

func bumpInventory(actor *Entity, key string, delta int) {
	if actor.Inventory == nil {
		actor.Inventory = make(map[string]int)
	}
	actor.Inventory[key] += delta
	if actor.Inventory[key] == 0 && delta < 0 {
		delete(actor.Inventory, key)
	}
}

func clampHP(hp int) int {
	if hp < 0 {
		return 0
	}
	if hp > MaxHP {
		return MaxHP
	}
	return hp
}

func isWeaponKey(key string) bool {
	return len(key) > 7 && key[:7] == "weapon."
}
