package engine

import "fmt"

// Recipe kinds.
const (
	KindWeapon  = "weapon"
	KindWall    = "wall"
	KindHealing = "healing"
)

// Weapon classes. The class determines the trajectory rule applied during
// SHOOT resolution.
const (
	ClassStraight = "straight"
	ClassDiag     = "diag"
	ClassArc      = "arc"
	ClassLob      = "lob"
	ClassMelee    = "melee"
)

// WeaponClasses lists all classes in catalog order.
var WeaponClasses = []string{ClassStraight, ClassDiag, ClassArc, ClassLob, ClassMelee}

// HealAmounts maps consumable heal item keys to their fixed restore amount.
var HealAmounts = map[string]int{
	"heal.small":  10,
	"heal.medium": 20,
	"heal.large":  30,
	"heal.major":  50,
}

// WeaponSpec describes a weapon recipe's output.
type WeaponSpec struct {
	WeaponClass     string `json:"weaponClass"`
	Grade           int    `json:"grade"`
	Damage          int    `json:"damage"`
	Range           int    `json:"range"`
	ShootsOverWalls bool   `json:"shootsOverWalls"`
}

// WallSpec describes a wall recipe's output.
type WallSpec struct {
	HP               int `json:"hp"`
	MaxPlaceDistance int `json:"maxPlaceDistance"`
}

// RecipeOutput is the union of possible recipe products; exactly one branch
// is set depending on Kind.
type RecipeOutput struct {
	Weapon *WeaponSpec `json:"weapon,omitempty"`
	Wall   *WallSpec   `json:"wall,omitempty"`
	Heal   int         `json:"heal,omitempty"`
}

// Costs is the resource price of crafting a recipe.
type Costs struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
	Food  int `json:"food"`
}

// Recipe is a read-only crafting definition.
type Recipe struct {
	Key           string       `json:"key"`
	Kind          string       `json:"kind"`
	Enabled       bool         `json:"enabled"`
	Output        RecipeOutput `json:"output"`
	Costs         Costs        `json:"costs"`
	Prerequisites []string     `json:"prerequisites,omitempty"`
}

// Catalog is an in-memory recipe lookup keyed by recipe key.
type Catalog map[string]*Recipe

// Get returns the recipe for a key, or nil.
func (c Catalog) Get(key string) *Recipe {
	return c[key]
}

// WeaponKey builds the canonical key for a weapon class and grade.
func WeaponKey(class string, grade int) string {
	return fmt.Sprintf("weapon.%s.t%d", class, grade)
}

// weaponSpec derives damage, range, and cost tables per class and grade.
// Tier 5 straight is the benchmark: range 8, damage 50.
func weaponSpec(class string, grade int) (WeaponSpec, Costs) {
	spec := WeaponSpec{WeaponClass: class, Grade: grade}
	var costs Costs
	switch class {
	case ClassStraight:
		spec.Damage = 10 * grade
		spec.Range = 3 + grade
		spec.ShootsOverWalls = grade >= 4
		costs = Costs{Wood: 2 + 2*grade, Stone: grade}
	case ClassDiag:
		spec.Damage = 9 * grade
		spec.Range = 3 + grade
		costs = Costs{Wood: grade, Stone: 2 + 2*grade}
	case ClassArc:
		spec.Damage = 12 * grade
		spec.Range = 2 + grade
		spec.ShootsOverWalls = true
		costs = Costs{Wood: 1 + grade, Stone: 1 + 2*grade}
	case ClassLob:
		spec.Damage = 7 * grade
		spec.Range = 4 + grade
		spec.ShootsOverWalls = true
		costs = Costs{Wood: 2 + 2*grade, Food: grade}
	case ClassMelee:
		spec.Damage = 15 * grade
		spec.Range = 1
		costs = Costs{Wood: grade, Stone: grade}
	}
	return spec, costs
}

// DefaultCatalog builds the built-in recipe set: every weapon class at
// grades 1 through 5, the wooden wall, and the craftable salve. The
// persistent recipe table is seeded from this catalog.
func DefaultCatalog() Catalog {
	cat := make(Catalog)
	for _, class := range WeaponClasses {
		for grade := 1; grade <= 5; grade++ {
			spec, costs := weaponSpec(class, grade)
			key := WeaponKey(class, grade)
			cat[key] = &Recipe{
				Key:     key,
				Kind:    KindWeapon,
				Enabled: true,
				Output:  RecipeOutput{Weapon: &spec},
				Costs:   costs,
			}
		}
	}
	cat["wall.wood"] = &Recipe{
		Key:     "wall.wood",
		Kind:    KindWall,
		Enabled: true,
		Output:  RecipeOutput{Wall: &WallSpec{HP: 40, MaxPlaceDistance: 2}},
		Costs:   Costs{Wood: 2},
	}
	cat["heal.salve"] = &Recipe{
		Key:     "heal.salve",
		Kind:    KindHealing,
		Enabled: true,
		Output:  RecipeOutput{Heal: 25},
		Costs:   Costs{Food: 2},
	}
	return cat
}
