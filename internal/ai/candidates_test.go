package ai

import (
	"testing"

	"github.com/freeeve/gridfire/api/pkg/engine"
)

func testMatch() *engine.Match {
	return &engine.Match{
		ID:           "m-test",
		GridSize:     engine.GridSize{W: 16, H: 16},
		Elo:          1200,
		Status:       engine.StatusActive,
		CurrentActor: engine.SideAI,
		Entities: engine.Entities{
			Player: engine.Entity{Pos: engine.Cell{X: 2, Y: 5}, HP: 100, Inventory: map[string]int{}},
			AI:     engine.Entity{Pos: engine.Cell{X: 10, Y: 5}, HP: 100, Inventory: map[string]int{}},
		},
	}
}

func findCandidate(cands []Candidate, actionType string) *Candidate {
	for i := range cands {
		if cands[i].Action.Type == actionType {
			return &cands[i]
		}
	}
	return nil
}

func TestEnumerateOpenGrid(t *testing.T) {
	m := testMatch()
	cat := engine.DefaultCatalog()
	cands := Enumerate(m, engine.SideAI, cat)

	moves := 0
	for _, c := range cands {
		if c.Action.Type == engine.ActionMove {
			moves++
		}
	}
	if moves != 4 {
		t.Errorf("move candidates = %d, want 4 on an open interior cell", moves)
	}
	if c := findCandidate(cands, engine.ActionShoot); c != nil {
		t.Error("no weapons held, should not offer SHOOT")
	}
	if c := findCandidate(cands, engine.ActionHeal); c != nil {
		t.Error("full HP, should not offer HEAL")
	}
}

func TestMoveFeatures(t *testing.T) {
	m := testMatch()
	cat := engine.DefaultCatalog()
	cands := Enumerate(m, engine.SideAI, cat)

	// Moving from (10,5) to (9,5) closes on the player at (2,5) and lies on
	// the optimal path.
	for _, c := range cands {
		if c.Action.Type != engine.ActionMove {
			continue
		}
		to := *c.Action.Params.To
		approach, onPath := c.Features[0], c.Features[4]
		switch to {
		case engine.Cell{X: 9, Y: 5}:
			if approach != 1 || onPath != 1 {
				t.Errorf("toward move features = %v, want approach 1 onPath 1", c.Features)
			}
		case engine.Cell{X: 11, Y: 5}:
			if approach != -1 || onPath != 0 {
				t.Errorf("away move features = %v, want approach -1 onPath 0", c.Features)
			}
		}
		if c.Features[2] != 0 {
			t.Errorf("retreat flag set at full HP: %v", c.Features)
		}
	}
}

func TestShootFeatures(t *testing.T) {
	m := testMatch()
	m.Entities.AI.Pos = engine.Cell{X: 6, Y: 5}
	m.Entities.AI.Weapons = []string{"weapon.straight.t2"}
	cat := engine.DefaultCatalog()

	cands := Enumerate(m, engine.SideAI, cat)
	c := findCandidate(cands, engine.ActionShoot)
	if c == nil {
		t.Fatal("in-range straight shot should be offered")
	}
	// straight t2: damage 20, range 5; distance 4, clear LOS, no kill.
	want := []float64{20, 4 / shootDistanceNorm, 0, 1}
	for i := range want {
		if c.Features[i] != want[i] {
			t.Errorf("shoot features = %v, want %v", c.Features, want)
			break
		}
	}
	if c.Action.Params.Target == nil || *c.Action.Params.Target != m.Entities.Player.Pos {
		t.Errorf("shoot targets %v, want player pos", c.Action.Params.Target)
	}

	m.Entities.Player.HP = 15
	cands = Enumerate(m, engine.SideAI, cat)
	c = findCandidate(cands, engine.ActionShoot)
	if c == nil || c.Features[2] != 1 {
		t.Errorf("canKill flag = %v, want 1 when damage >= opponent HP", c)
	}
}

func TestShootSkippedWhenBlocked(t *testing.T) {
	m := testMatch()
	m.Entities.AI.Pos = engine.Cell{X: 6, Y: 5}
	m.Entities.AI.Weapons = []string{"weapon.straight.t2"}
	m.Entities.Walls = []engine.Wall{{Pos: engine.Cell{X: 4, Y: 5}, HP: 40}}
	cat := engine.DefaultCatalog()

	if c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionShoot); c != nil {
		t.Error("wall blocks a low-grade straight shot, should not be offered")
	}

	// Grade 4 straight shoots over walls.
	m.Entities.AI.Weapons = []string{"weapon.straight.t4"}
	if c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionShoot); c == nil {
		t.Error("over-wall weapon should still be offered")
	}
}

func TestHealCandidatePrefersStrongest(t *testing.T) {
	m := testMatch()
	m.Entities.AI.HP = 60
	m.Entities.AI.Inventory = map[string]int{"heal.small": 1, "heal.medium": 2}
	cat := engine.DefaultCatalog()

	c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionHeal)
	if c == nil {
		t.Fatal("low HP with heal items should offer HEAL")
	}
	if c.Action.Params.Key != "heal.medium" {
		t.Errorf("heal key = %s, want heal.medium", c.Action.Params.Key)
	}
}

func TestCraftWallUnderThreat(t *testing.T) {
	m := testMatch()
	m.Entities.AI.Pos = engine.Cell{X: 6, Y: 5}
	m.Entities.AI.Inventory = map[string]int{"wood": 2}
	cat := engine.DefaultCatalog()

	c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionCraftWall)
	if c == nil {
		t.Fatal("LOS threat within range should offer CRAFT_WALL")
	}
	if c.Action.Params.Pos == nil || *c.Action.Params.Pos != (engine.Cell{X: 5, Y: 5}) {
		t.Errorf("wall pos = %v, want the cell toward the player", c.Action.Params.Pos)
	}

	// Out of threat range: no wall candidate.
	m.Entities.AI.Pos = engine.Cell{X: 12, Y: 5}
	if c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionCraftWall); c != nil {
		t.Error("distant opponent should not trigger CRAFT_WALL")
	}

	// Broke: no wall candidate.
	m.Entities.AI.Pos = engine.Cell{X: 6, Y: 5}
	m.Entities.AI.Inventory = map[string]int{"wood": 1}
	if c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionCraftWall); c != nil {
		t.Error("unaffordable wall should not be offered")
	}
}

func TestCraftWeaponWhenUnarmed(t *testing.T) {
	m := testMatch()
	m.Entities.AI.Inventory = map[string]int{"wood": 4, "stone": 1}
	cat := engine.DefaultCatalog()

	c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionCraftWeapon)
	if c == nil {
		t.Fatal("unarmed with materials should offer CRAFT_WEAPON")
	}
	if c.Action.Params.Key != "weapon.straight.t1" {
		t.Errorf("craft key = %s, want weapon.straight.t1", c.Action.Params.Key)
	}

	// Already holding a ranged weapon: no craft candidate.
	m.Entities.AI.Weapons = []string{"weapon.arc.t1"}
	if c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionCraftWeapon); c != nil {
		t.Error("armed AI should not craft another starter weapon")
	}
}

func TestInteractWhenGathering(t *testing.T) {
	m := testMatch()
	m.Resources.Trees = []engine.Cell{{X: 10, Y: 4}}
	m.Resources.Stones = []engine.Cell{{X: 11, Y: 5}}
	cat := engine.DefaultCatalog()

	cands := Enumerate(m, engine.SideAI, cat)
	interacts := 0
	for _, c := range cands {
		if c.Action.Type == engine.ActionInteract {
			interacts++
		}
	}
	if interacts != 2 {
		t.Errorf("interact candidates = %d, want 2 adjacent resources", interacts)
	}

	// Stocked up: gathering stops.
	m.Entities.AI.Inventory = map[string]int{"wood": 2, "stone": 1}
	if c := findCandidate(Enumerate(m, engine.SideAI, cat), engine.ActionInteract); c != nil {
		t.Error("stocked inventory should stop gathering")
	}
}
