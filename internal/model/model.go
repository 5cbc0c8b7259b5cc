package model

import (
	"time"
)

// Outcome reasons for an archived match.
const (
	OutcomeKO     = "ko"
	OutcomeResign = "resign"
	OutcomeAdmin  = "admin"
)

// User represents a registered player account.
type User struct {
	ID           string    `json:"id"`
	Handle       string    `json:"handle"`
	PasswordHash string    `json:"-"`
	Elo          int       `json:"elo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HistoricalMatch is the immutable archive record written when a match ends.
// The live snapshot itself is dropped from the active store after archival.
type HistoricalMatch struct {
	ID             string             `json:"id"`
	MatchKey       string             `json:"match_key"`
	Seed           string             `json:"seed"`
	SeedKey        string             `json:"seed_key"`
	SeedingVersion string             `json:"seeding_version"`
	GridW          int                `json:"grid_w"`
	GridH          int                `json:"grid_h"`
	Elo            int                `json:"elo"`
	Players        []HistoricalPlayer `json:"players"`
	Winner         string             `json:"winner,omitempty"`
	Outcome        string             `json:"outcome"`
	StartedAt      time.Time          `json:"started_at"`
	EndedAt        time.Time          `json:"ended_at"`
	DurationTurns  int                `json:"duration_turns"`
}

// HistoricalPlayer is one side's archived summary.
type HistoricalPlayer struct {
	Slot             string         `json:"slot"`
	Role             string         `json:"role"`
	UserID           string         `json:"user_id,omitempty"`
	Handle           string         `json:"handle,omitempty"`
	FinalHP          int            `json:"final_hp"`
	ActionsHistogram map[string]int `json:"actions_histogram,omitempty"`
}
