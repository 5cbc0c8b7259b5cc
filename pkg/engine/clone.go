package engine

// Clone returns a deep copy of the match. Resolvers mutate only clones so a
// rejected action never leaves a partial change behind.
func (m *Match) Clone() *Match {
	cp := *m
	cp.Resources = Resources{
		Trees:  append([]Cell(nil), m.Resources.Trees...),
		Stones: append([]Cell(nil), m.Resources.Stones...),
		Hay:    append([]Cell(nil), m.Resources.Hay...),
	}
	cp.Loot = append([]Loot(nil), m.Loot...)
	cp.Entities.Walls = append([]Wall(nil), m.Entities.Walls...)
	cp.Entities.Player = cloneEntity(m.Entities.Player)
	cp.Entities.AI = cloneEntity(m.Entities.AI)
	cp.ActionHistory = append([]ActionRecord(nil), m.ActionHistory...)
	cp.Players = append([]Member(nil), m.Players...)
	return &cp
}

func cloneEntity(e Entity) Entity {
	cp := e
	cp.Inventory = make(map[string]int, len(e.Inventory))
	for k, v := range e.Inventory {
		cp.Inventory[k] = v
	}
	cp.Weapons = append([]string(nil), e.Weapons...)
	return cp
}
