package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/freeeve/gridfire/api/internal/repository"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// ErrRecipeNotFound is returned when a recipe key is unknown or disabled.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeService serves the crafting catalog. The catalog is read-mostly,
// so it is loaded from the repository once and cached for the process
// lifetime; without a repository it falls back to the built-in catalog.
type RecipeService struct {
	repo repository.RecipeRepository

	mu      sync.Mutex
	catalog engine.Catalog
}

// NewRecipeService creates a RecipeService backed by the repository.
// A nil repository serves the built-in catalog directly.
func NewRecipeService(repo repository.RecipeRepository) *RecipeService {
	return &RecipeService{repo: repo}
}

// Seed ensures the persistent catalog contains the built-in recipes.
func (s *RecipeService) Seed(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.EnsureSeeded(ctx, engine.DefaultCatalog())
}

// Catalog returns the full enabled catalog, cached after the first load.
func (s *RecipeService) Catalog(ctx context.Context) (engine.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.catalog != nil {
		return s.catalog, nil
	}
	if s.repo == nil {
		s.catalog = engine.DefaultCatalog()
		return s.catalog, nil
	}
	recipes, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	cat := make(engine.Catalog, len(recipes))
	for _, r := range recipes {
		cat[r.Key] = r
	}
	s.catalog = cat
	return cat, nil
}

// Get returns one enabled recipe.
func (s *RecipeService) Get(ctx context.Context, key string) (*engine.Recipe, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	r := cat.Get(key)
	if r == nil || !r.Enabled {
		return nil, ErrRecipeNotFound
	}
	return r, nil
}

// RecipeFilter narrows a catalog listing. Zero values mean no constraint;
// the class and grade filters only apply to weapon recipes. A nil Enabled
// keeps the default of listing enabled recipes only.
type RecipeFilter struct {
	Kind        string
	WeaponClass string
	MinGrade    int
	MaxGrade    int
	Enabled     *bool
}

func (f RecipeFilter) matches(r *engine.Recipe) bool {
	if f.Enabled == nil {
		if !r.Enabled {
			return false
		}
	} else if r.Enabled != *f.Enabled {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.WeaponClass != "" || f.MinGrade > 0 || f.MaxGrade > 0 {
		w := r.Output.Weapon
		if w == nil {
			return false
		}
		if f.WeaponClass != "" && w.WeaponClass != f.WeaponClass {
			return false
		}
		if f.MinGrade > 0 && w.Grade < f.MinGrade {
			return false
		}
		if f.MaxGrade > 0 && w.Grade > f.MaxGrade {
			return false
		}
	}
	return true
}

// List returns enabled recipes, optionally filtered by kind, in key order.
func (s *RecipeService) List(ctx context.Context, kind string) ([]*engine.Recipe, error) {
	return s.ListFiltered(ctx, RecipeFilter{Kind: kind})
}

// ListFiltered returns recipes matching the filter, in key order.
func (s *RecipeService) ListFiltered(ctx context.Context, f RecipeFilter) ([]*engine.Recipe, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(cat))
	for key, r := range cat {
		if !f.matches(r) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]*engine.Recipe, 0, len(keys))
	for _, key := range keys {
		out = append(out, cat[key])
	}
	return out, nil
}
