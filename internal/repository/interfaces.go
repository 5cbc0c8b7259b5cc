package repository

import (
	"context"
	"errors"

	"github.com/freeeve/gridfire/api/internal/ai"
	"github.com/freeeve/gridfire/api/internal/model"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// ErrVersionConflict is returned by MatchStore.UpdateCAS when the stored
// snapshot's version no longer matches the expected one.
var ErrVersionConflict = errors.New("match version conflict")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository defines user account operations.
type UserRepository interface {
	Create(ctx context.Context, handle, passwordHash string) (*model.User, error)
	FindByHandle(ctx context.Context, handle string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	AdjustElo(ctx context.Context, id string, delta int) (int, error)
}

// MatchStore defines live match snapshot operations (Redis). UpdateCAS is
// the only mutation path for active matches: it succeeds only when the
// stored version equals expectedVersion, and writes the snapshot with its
// Version already incremented by the caller. ListByUser returns the page
// plus the total count for the user.
type MatchStore interface {
	Insert(ctx context.Context, m *engine.Match) error
	Find(ctx context.Context, id string) (*engine.Match, error)
	UpdateCAS(ctx context.Context, m *engine.Match, expectedVersion int64) error
	Delete(ctx context.Context, m *engine.Match) error
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]*engine.Match, int, error)
}

// HistoryRepository defines archived match operations.
type HistoryRepository interface {
	Insert(ctx context.Context, h *model.HistoricalMatch) error
	FindByMatchKey(ctx context.Context, matchKey string) (*model.HistoricalMatch, error)
	ListByUser(ctx context.Context, userID string, skip, limit int) ([]model.HistoricalMatch, int, error)
}

// RecipeRepository defines the persisted recipe catalog.
type RecipeRepository interface {
	FindByKey(ctx context.Context, key string) (*engine.Recipe, error)
	List(ctx context.Context, kind string) ([]*engine.Recipe, error)
	EnsureSeeded(ctx context.Context, cat engine.Catalog) error
}

// PolicyRepository defines AI policy persistence. FindForPlayer returns
// ErrNotFound when the player has no learned policy yet.
type PolicyRepository interface {
	FindForPlayer(ctx context.Context, playerID string) (*ai.Policy, error)
	Upsert(ctx context.Context, p *ai.Policy) error
}
