package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/gridfire/api/internal/ai"
	"github.com/freeeve/gridfire/api/internal/repository"
)

// PolicyRepo persists learned AI scoring policies per player.
type PolicyRepo struct {
	db *sql.DB
}

// NewPolicyRepo creates a PolicyRepo.
func NewPolicyRepo(db *sql.DB) *PolicyRepo {
	return &PolicyRepo{db: db}
}

// FindForPlayer loads a player's learned policy.
func (r *PolicyRepo) FindForPlayer(ctx context.Context, playerID string) (*ai.Policy, error) {
	var data []byte
	var p ai.Policy
	err := r.db.QueryRowContext(ctx,
		`SELECT scope, player_id, epsilon, actions, games_played, wins
		 FROM ai_policies WHERE player_id = $1`,
		playerID,
	).Scan(&p.Scope, &p.PlayerID, &p.Epsilon, &data, &p.GamesPlayed, &p.Wins)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find policy: %w", err)
	}
	if err := json.Unmarshal(data, &p.Actions); err != nil {
		return nil, fmt.Errorf("unmarshal policy actions: %w", err)
	}
	return &p, nil
}

// Upsert writes the policy, replacing any previous row for the player.
func (r *PolicyRepo) Upsert(ctx context.Context, p *ai.Policy) error {
	data, err := json.Marshal(p.Actions)
	if err != nil {
		return fmt.Errorf("marshal policy actions: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO ai_policies (scope, player_id, epsilon, actions, games_played, wins)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (player_id)
		 DO UPDATE SET epsilon = EXCLUDED.epsilon, actions = EXCLUDED.actions,
		               games_played = EXCLUDED.games_played, wins = EXCLUDED.wins,
		               updated_at = now()`,
		p.Scope, p.PlayerID, p.Epsilon, data, p.GamesPlayed, p.Wins)
	if err != nil {
		return fmt.Errorf("upsert policy: %w", err)
	}
	return nil
}
