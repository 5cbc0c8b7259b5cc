package engine

import "time"

// Actor sides. Every match is exactly one human-controlled side versus one
// AI-controlled side.
const (
	SidePlayer = "player"
	SideAI     = "ai"
)

// Match statuses.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Action types.
const (
	ActionMove        = "MOVE"
	ActionShoot       = "SHOOT"
	ActionCraftWeapon = "CRAFT_WEAPON"
	ActionCraftWall   = "CRAFT_WALL"
	ActionHeal        = "HEAL"
	ActionInteract    = "INTERACT"
	ActionSkipTurn    = "SKIP_TURN"
)

// MaxHP is the entity health ceiling; HP is always clamped to [0, MaxHP].
const MaxHP = 100

// ConsumesTurn reports whether an action type ends the actor's turn.
// CRAFT_WEAPON and HEAL are free actions.
func ConsumesTurn(actionType string) bool {
	switch actionType {
	case ActionCraftWeapon, ActionHeal:
		return false
	}
	return true
}

// Effects holds status modifiers on an entity. The fields exist in the
// snapshot schema but nothing sets them yet; resolvers only read Move2.
type Effects struct {
	Move2       bool `json:"move2"`
	ExtraAction bool `json:"extraAction"`
	RangeBonus  int  `json:"rangeBonus"`
}

// Entity is a combatant: the human player or the AI.
type Entity struct {
	Pos       Cell           `json:"pos"`
	HP        int            `json:"hp"`
	Inventory map[string]int `json:"inventory"`
	Weapons   []string       `json:"weapons"`
	Effects   Effects        `json:"effects"`
	UserID    string         `json:"userId,omitempty"`
	Handle    string         `json:"handle,omitempty"`
}

// HasWeapon reports whether the entity owns the given weapon key.
func (e *Entity) HasWeapon(key string) bool {
	for _, w := range e.Weapons {
		if w == key {
			return true
		}
	}
	return false
}

// Wall is a placed obstacle.
type Wall struct {
	Pos Cell `json:"pos"`
	HP  int  `json:"hp"`
}

// Loot is an item lying on the map, identified by its recipe or heal key.
type Loot struct {
	Pos Cell   `json:"pos"`
	Key string `json:"key"`
}

// Resources holds the harvestable cells by kind.
type Resources struct {
	Trees  []Cell `json:"trees"`
	Stones []Cell `json:"stones"`
	Hay    []Cell `json:"hay"`
}

// Entities groups the two combatants and all walls.
type Entities struct {
	Player Entity `json:"player"`
	AI     Entity `json:"ai"`
	Walls  []Wall `json:"walls"`
}

// Spawn records the generated starting cells.
type Spawn struct {
	Player Cell `json:"player"`
	AI     Cell `json:"ai"`
}

// GridSize is the map dimensions.
type GridSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Constraints records whether generation satisfied its geometric rules or
// had to fall back. Tests assert this is honest.
type Constraints struct {
	ColumnSeparationOK bool `json:"columnSeparationOK"`
}

// Member is a match membership entry; exactly two per match.
type Member struct {
	Slot   string `json:"slot"`
	Role   string `json:"role"`
	UserID string `json:"userId,omitempty"`
	Handle string `json:"handle,omitempty"`
}

// ActionRecord is one audit entry in the match history.
type ActionRecord struct {
	Actor  string `json:"actor"`
	Action string `json:"action"`
}

// Match is the authoritative per-game snapshot. The orchestrator clones it,
// resolves actions on the clone, and persists with an optimistic version
// check; Version increases by exactly one per committed update.
type Match struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`

	Seed           string      `json:"seed"`
	SeedKey        string      `json:"seedKey"`
	SeedingVersion string      `json:"seedingVersion"`
	GridSize       GridSize    `json:"gridSize"`
	Elo            int         `json:"elo"`
	Constraints    Constraints `json:"constraints"`
	Spawn          Spawn       `json:"spawn"`

	Resources Resources `json:"resources"`
	Loot      []Loot    `json:"loot"`
	Entities  Entities  `json:"entities"`

	TurnIndex    int    `json:"turnIndex"`
	CurrentActor string `json:"currentActor"`
	Status       string `json:"status"`
	Winner       string `json:"winner,omitempty"`
	Reason       string `json:"reason,omitempty"`

	ActionHistory []ActionRecord `json:"actionHistory"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Players []Member `json:"players"`
}

// Actor returns the entity for a side, or nil for an unknown side.
func (m *Match) Actor(side string) *Entity {
	switch side {
	case SidePlayer:
		return &m.Entities.Player
	case SideAI:
		return &m.Entities.AI
	}
	return nil
}

// Opponent returns the entity opposing the given side.
func (m *Match) Opponent(side string) *Entity {
	switch side {
	case SidePlayer:
		return &m.Entities.AI
	case SideAI:
		return &m.Entities.Player
	}
	return nil
}

// OppositeSide maps player to ai and vice versa.
func OppositeSide(side string) string {
	if side == SidePlayer {
		return SideAI
	}
	return SidePlayer
}

// CellOccupied reports whether a cell is blocked by a non-ignored entity or
// a wall. Resources and loot never block.
func (m *Match) CellOccupied(c Cell, ignorePlayer, ignoreAI bool) bool {
	if !ignorePlayer && m.Entities.Player.Pos == c {
		return true
	}
	if !ignoreAI && m.Entities.AI.Pos == c {
		return true
	}
	for _, w := range m.Entities.Walls {
		if w.Pos == c {
			return true
		}
	}
	return false
}

// WallAt returns the wall occupying a cell, or nil.
func (m *Match) WallAt(c Cell) *Wall {
	for i := range m.Entities.Walls {
		if m.Entities.Walls[i].Pos == c {
			return &m.Entities.Walls[i]
		}
	}
	return nil
}

// LootAt returns the index of the loot at a cell, or -1.
func (m *Match) LootAt(c Cell) int {
	for i := range m.Loot {
		if m.Loot[i].Pos == c {
			return i
		}
	}
	return -1
}

// Action is a submitted player or AI action.
type Action struct {
	Type   string       `json:"type"`
	Params ActionParams `json:"params"`
}

// ActionParams carries the per-type parameters; unused fields stay zero.
type ActionParams struct {
	To           *Cell  `json:"to,omitempty"`
	DX           int    `json:"dx,omitempty"`
	DY           int    `json:"dy,omitempty"`
	WeaponKey    string `json:"weaponKey,omitempty"`
	Target       *Cell  `json:"target,omitempty"`
	Key          string `json:"key,omitempty"`
	Pos          *Cell  `json:"pos,omitempty"`
	ResourceType string `json:"type,omitempty"`
}

// Result reports what a resolver did.
type Result struct {
	ConsumeTurn bool           `json:"consumeTurn"`
	Ended       bool           `json:"ended"`
	Meta        map[string]any `json:"meta,omitempty"`
}
