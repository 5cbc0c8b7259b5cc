package engine

import (
	"fmt"
	"math"
	"sort"
)

// World generation configuration.
const (
	MinGridDim    = 5
	DefaultGridW  = 16
	DefaultGridH  = 16
	DefaultElo    = 1200
	TotalLoot     = 4
	MaxLootWeapon = 2

	treeFraction  = 0.18
	stoneFraction = 0.14
	hayFraction   = 0.08

	spawnColumnSeparation = 10
)

// ELO buckets used by spawn placement and loot tables.
const (
	eloLowMax  = 800
	eloHighMin = 1800
)

// Loot target modes.
const (
	lootModePlayer  = "player-biased"
	lootModeAI      = "ai-biased"
	lootModeNeutral = "neutral"
)

// WorldInit is the immutable output of world generation, copied into a new
// match snapshot.
type WorldInit struct {
	SeedKey     string
	Constraints Constraints
	Spawn       Spawn
	Resources   Resources
	Loot        []Loot
	LootMode    string
}

// SeedKeyFor builds the canonical seed key for the generation inputs. It is
// the durable identity of a generated world.
func SeedKeyFor(seed string, w, h int) string {
	return fmt.Sprintf("S:%s|W:%d|H:%d|V:%s", seed, w, h, SeedingVersion)
}

// Generate builds a world deterministically from seed, grid size, and ELO.
// Identical inputs yield identical output on every run; tests enforce this
// bit-for-bit.
func Generate(seed string, w, h, elo int) (*WorldInit, error) {
	if w < MinGridDim || h < MinGridDim {
		return nil, fmt.Errorf("%w: grid must be at least %dx%d", ErrBadParams, MinGridDim, MinGridDim)
	}
	init := &WorldInit{SeedKey: SeedKeyFor(seed, w, h)}

	placeSpawns(init, w, h, elo)
	placeResources(init, w, h)
	placeLoot(init, w, h, elo)
	return init, nil
}

// centrality is higher for cells nearer the middle of the grid.
func centrality(c Cell, w, h int) int {
	return min(c.X, w-1-c.X) + min(c.Y, h-1-c.Y)
}

// placeSpawns picks the player cell from the most central candidates and the
// AI cell from candidates far enough away in x and on a different row.
func placeSpawns(init *WorldInit, w, h, elo int) {
	rng := SubStream(init.SeedKey, "spawn")

	var candidates []Cell
	for y := 1; y <= h-2; y++ {
		for x := 1; x <= w-2; x++ {
			candidates = append(candidates, Cell{x, y})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return centrality(candidates[i], w, h) > centrality(candidates[j], w, h)
	})

	topPercent := 30
	if elo <= eloLowMax {
		topPercent = 10
	}
	topN := len(candidates) * topPercent / 100
	if topN < 1 {
		topN = 1
	}
	player := Choice(rng, candidates[:topN])

	var far []Cell
	for _, c := range candidates {
		if abs(c.X-player.X) >= spawnColumnSeparation && c.Y != player.Y {
			far = append(far, c)
		}
	}
	init.Constraints.ColumnSeparationOK = len(far) > 0
	if len(far) == 0 {
		for _, c := range candidates {
			if c != player {
				far = append(far, c)
			}
		}
	}
	ai := Choice(rng, far)

	init.Spawn = Spawn{Player: player, AI: ai}
}

// placeResources scatters trees, stones, and hay with greedy blue-noise
// rejection: a candidate is dropped when it is occupied or closer than the
// kind's minimum separation to any already-placed resource.
func placeResources(init *WorldInit, w, h int) {
	rng := SubStream(init.SeedKey, "resources")

	kinds := []struct {
		fraction float64
		minSep   int
		dest     *[]Cell
	}{
		{treeFraction, 1, &init.Resources.Trees},
		{stoneFraction, 2, &init.Resources.Stones},
		{hayFraction, 1, &init.Resources.Hay},
	}

	occupied := map[Cell]bool{init.Spawn.Player: true, init.Spawn.AI: true}
	var placed []Cell

	for _, kind := range kinds {
		count := int(math.Round(kind.fraction * float64(w*h)))
		if count < 1 {
			count = 1
		}

		cells := allCells(w, h)
		ShuffleInPlace(rng, cells)

		for _, c := range cells {
			if len(*kind.dest) >= count {
				break
			}
			if occupied[c] {
				continue
			}
			tooClose := false
			for _, p := range placed {
				if Manhattan(c, p) < kind.minSep {
					tooClose = true
					break
				}
			}
			if tooClose {
				continue
			}
			*kind.dest = append(*kind.dest, c)
			placed = append(placed, c)
			occupied[c] = true
		}
	}
}

// lootTables returns the ELO-bucketed weight tables for the nested
// type -> class -> grade draw.
func lootTables(elo int) (typeW []Weighted[string], classW []Weighted[string], gradeW []Weighted[int]) {
	switch {
	case elo <= eloLowMax:
		typeW = []Weighted[string]{{KindWeapon, 0.6}, {KindHealing, 0.4}}
		classW = []Weighted[string]{
			{ClassStraight, 0.23}, {ClassDiag, 0.18}, {ClassArc, 0.22}, {ClassLob, 0.27}, {ClassMelee, 0.10},
		}
		gradeW = []Weighted[int]{{1, 0.40}, {2, 0.45}, {3, 0.15}}
	case elo >= eloHighMin:
		typeW = []Weighted[string]{{KindWeapon, 0.75}, {KindHealing, 0.25}}
		classW = []Weighted[string]{
			{ClassStraight, 0.33}, {ClassDiag, 0.23}, {ClassArc, 0.19}, {ClassLob, 0.19}, {ClassMelee, 0.06},
		}
		gradeW = []Weighted[int]{{1, 0.60}, {2, 0.30}, {3, 0.10}}
	default:
		typeW = []Weighted[string]{{KindWeapon, 0.7}, {KindHealing, 0.3}}
		classW = []Weighted[string]{
			{ClassStraight, 0.28}, {ClassDiag, 0.18}, {ClassArc, 0.22}, {ClassLob, 0.22}, {ClassMelee, 0.10},
		}
		gradeW = []Weighted[int]{{1, 0.55}, {2, 0.35}, {3, 0.10}}
	}
	if elo == DefaultElo {
		// The 1200 baseline forces grade 1 so fresh accounts never find a
		// tiered weapon on the ground.
		gradeW = []Weighted[int]{{1, 1.0}}
	}
	return typeW, classW, gradeW
}

var healingWeights = []Weighted[string]{
	{"heal.small", 1}, {"heal.medium", 1}, {"heal.large", 1}, {"heal.major", 0.6},
}

// placeLoot drops TotalLoot items around an ELO-derived target cell,
// preferring rings of increasing Manhattan distance and falling back to any
// free cell when the rings are exhausted.
func placeLoot(init *WorldInit, w, h, elo int) {
	rng := SubStream(init.SeedKey, "loot")

	target := Cell{w / 2, h / 2}
	ringMin, ringMax := 4, 6
	init.LootMode = lootModeNeutral
	switch {
	case elo <= eloLowMax:
		init.LootMode, target, ringMin, ringMax = lootModePlayer, init.Spawn.Player, 2, 4
	case elo >= eloHighMin:
		init.LootMode, target, ringMin, ringMax = lootModeAI, init.Spawn.AI, 2, 4
	}

	occupied := map[Cell]bool{init.Spawn.Player: true, init.Spawn.AI: true}
	for _, c := range init.Resources.Trees {
		occupied[c] = true
	}
	for _, c := range init.Resources.Stones {
		occupied[c] = true
	}
	for _, c := range init.Resources.Hay {
		occupied[c] = true
	}

	typeW, classW, gradeW := lootTables(elo)
	weapons := 0
	healed := false

	free := func(c Cell, spacing int) bool {
		if occupied[c] {
			return false
		}
		for _, l := range init.Loot {
			if spacing > 0 && Manhattan(c, l.Pos) < spacing {
				return false
			}
		}
		return true
	}

	pickCell := func() (Cell, bool) {
		for dist := ringMin; dist <= ringMax; dist++ {
			ring := Ring(target, dist, w, h)
			ShuffleInPlace(rng, ring)
			for _, c := range ring {
				if free(c, 2) {
					return c, true
				}
			}
		}
		cells := allCells(w, h)
		ShuffleInPlace(rng, cells)
		for _, c := range cells {
			if free(c, 0) {
				return c, true
			}
		}
		return Cell{}, false
	}

	for slot := 0; slot < TotalLoot; slot++ {
		pos, ok := pickCell()
		if !ok {
			break
		}

		var key string
		if WeightedChoice(rng, typeW) == KindWeapon {
			if weapons >= MaxLootWeapon {
				key = "heal.small"
				healed = true
			} else {
				class := WeightedChoice(rng, classW)
				grade := WeightedChoice(rng, gradeW)
				key = WeaponKey(class, grade)
				weapons++
			}
		} else {
			key = WeightedChoice(rng, healingWeights)
			healed = true
		}

		init.Loot = append(init.Loot, Loot{Pos: pos, Key: key})
		occupied[pos] = true
	}

	// Pity rule: a world without any healing item is unwinnable for a
	// cornered player, so append one small heal at any free cell.
	if !healed {
		cells := allCells(w, h)
		ShuffleInPlace(rng, cells)
		for _, c := range cells {
			if free(c, 0) {
				init.Loot = append(init.Loot, Loot{Pos: c, Key: "heal.small"})
				break
			}
		}
	}
}

func allCells(w, h int) []Cell {
	cells := make([]Cell, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cells = append(cells, Cell{x, y})
		}
	}
	return cells
}
