package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/freeeve/gridfire/api/internal/repository"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// RecipeRepo handles the persisted crafting catalog.
type RecipeRepo struct {
	db *sql.DB
}

// NewRecipeRepo creates a RecipeRepo.
func NewRecipeRepo(db *sql.DB) *RecipeRepo {
	return &RecipeRepo{db: db}
}

// FindByKey returns one recipe.
func (r *RecipeRepo) FindByKey(ctx context.Context, key string) (*engine.Recipe, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT definition FROM recipes WHERE key = $1 AND enabled`, key,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	var recipe engine.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("unmarshal recipe: %w", err)
	}
	return &recipe, nil
}

// List returns enabled recipes, optionally filtered by kind, in key order.
func (r *RecipeRepo) List(ctx context.Context, kind string) ([]*engine.Recipe, error) {
	query := `SELECT definition FROM recipes WHERE enabled ORDER BY key`
	args := []any{}
	if kind != "" {
		query = `SELECT definition FROM recipes WHERE enabled AND kind = $1 ORDER BY key`
		args = append(args, kind)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var out []*engine.Recipe
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		var recipe engine.Recipe
		if err := json.Unmarshal(data, &recipe); err != nil {
			return nil, fmt.Errorf("unmarshal recipe: %w", err)
		}
		out = append(out, &recipe)
	}
	return out, rows.Err()
}

// EnsureSeeded inserts any catalog recipes missing from the table. Existing
// rows are left alone so hand-tuned definitions survive restarts.
func (r *RecipeRepo) EnsureSeeded(ctx context.Context, cat engine.Catalog) error {
	keys := make([]string, 0, len(cat))
	for key := range cat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		recipe := cat[key]
		data, err := json.Marshal(recipe)
		if err != nil {
			return fmt.Errorf("marshal recipe %s: %w", key, err)
		}
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO recipes (key, kind, enabled, definition)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (key) DO NOTHING`,
			recipe.Key, recipe.Kind, recipe.Enabled, data)
		if err != nil {
			return fmt.Errorf("seed recipe %s: %w", key, err)
		}
	}
	return nil
}
