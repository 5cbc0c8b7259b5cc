package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/gridfire/api/internal/model"
	"github.com/freeeve/gridfire/api/internal/repository"
)

// HistoryRepo handles archived match database operations.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a HistoryRepo.
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Insert archives a finished match. The players column is JSONB so the
// per-side summaries stay schemaless.
func (r *HistoryRepo) Insert(ctx context.Context, h *model.HistoricalMatch) error {
	players, err := json.Marshal(h.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO historical_matches
		   (match_key, seed, seed_key, seeding_version, grid_w, grid_h, elo,
		    players, winner, outcome, started_at, ended_at, duration_turns)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (match_key) DO NOTHING
		 RETURNING id`,
		h.MatchKey, h.Seed, h.SeedKey, h.SeedingVersion, h.GridW, h.GridH, h.Elo,
		players, nullString(h.Winner), h.Outcome, h.StartedAt, h.EndedAt, h.DurationTurns,
	).Scan(&h.ID)
	if err == sql.ErrNoRows {
		// Already archived; idempotent.
		existing, ferr := r.FindByMatchKey(ctx, h.MatchKey)
		if ferr != nil {
			return ferr
		}
		h.ID = existing.ID
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert historical match: %w", err)
	}
	return nil
}

// FindByMatchKey looks up an archived match by its live match ID.
func (r *HistoryRepo) FindByMatchKey(ctx context.Context, matchKey string) (*model.HistoricalMatch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, match_key, seed, seed_key, seeding_version, grid_w, grid_h, elo,
		        players, winner, outcome, started_at, ended_at, duration_turns
		 FROM historical_matches WHERE match_key = $1`, matchKey)
	return scanHistorical(row)
}

// ListByUser pages through a user's archived matches, most recent first,
// and reports the user's total archived count.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID string, skip, limit int) ([]model.HistoricalMatch, int, error) {
	if limit <= 0 {
		limit = 50
	}
	member := fmt.Sprintf(`[{"user_id":%q}]`, userID)

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM historical_matches WHERE players @> $1::jsonb`,
		member).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count historical matches: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_key, seed, seed_key, seeding_version, grid_w, grid_h, elo,
		        players, winner, outcome, started_at, ended_at, duration_turns
		 FROM historical_matches
		 WHERE players @> $1::jsonb
		 ORDER BY ended_at DESC LIMIT $2 OFFSET $3`,
		member, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list historical matches: %w", err)
	}
	defer rows.Close()

	var out []model.HistoricalMatch
	for rows.Next() {
		h, err := scanHistorical(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *h)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistorical(row rowScanner) (*model.HistoricalMatch, error) {
	var h model.HistoricalMatch
	var players []byte
	var winner sql.NullString
	err := row.Scan(&h.ID, &h.MatchKey, &h.Seed, &h.SeedKey, &h.SeedingVersion,
		&h.GridW, &h.GridH, &h.Elo, &players, &winner, &h.Outcome,
		&h.StartedAt, &h.EndedAt, &h.DurationTurns)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan historical match: %w", err)
	}
	h.Winner = winner.String
	if err := json.Unmarshal(players, &h.Players); err != nil {
		return nil, fmt.Errorf("unmarshal players: %w", err)
	}
	return &h, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
