package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/gridfire/api/internal/ai"
	"github.com/freeeve/gridfire/api/internal/model"
	"github.com/freeeve/gridfire/api/internal/repository"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrVersionConflict = errors.New("match version conflict")
	ErrWrongTurn       = errors.New("not your turn")
	ErrMatchEnded      = errors.New("match already ended")
	ErrNotParticipant  = errors.New("you are not in this match")
)

// EloDelta is the flat rating adjustment applied to the human player on
// match end: up on a win, down on a loss.
const EloDelta = 10

// MatchService orchestrates match lifecycle: world generation, the
// player/AI turn pipeline with optimistic concurrency, and end-of-match
// archival.
type MatchService struct {
	matches  repository.MatchStore
	users    repository.UserRepository
	history  repository.HistoryRepository
	policies repository.PolicyRepository
	recipes  *RecipeService
	bcast    Broadcaster

	aiRand func() float64
}

// NewMatchService creates a MatchService.
func NewMatchService(matches repository.MatchStore, users repository.UserRepository, history repository.HistoryRepository, policies repository.PolicyRepository, recipes *RecipeService, bcast Broadcaster) *MatchService {
	if bcast == nil {
		bcast = NoopBroadcaster{}
	}
	return &MatchService{
		matches:  matches,
		users:    users,
		history:  history,
		policies: policies,
		recipes:  recipes,
		bcast:    bcast,
		aiRand:   rand.Float64,
	}
}

// SetAIRand replaces the AI exploration source, for deterministic tests.
func (s *MatchService) SetAIRand(fn func() float64) {
	s.aiRand = fn
}

// InitiateParams are the match creation inputs. Zero values take defaults.
type InitiateParams struct {
	Seed       string
	GridW      int
	GridH      int
	Elo        int
	FirstActor string
}

// Initiate generates a world from the seed and stores a fresh match at
// version 1. When FirstActor is "ai", the AI's opening turn runs before
// the snapshot is stored, so the returned match is already at the human's
// turn. Anonymous callers (empty userID) get a match with no account
// attached.
func (s *MatchService) Initiate(ctx context.Context, userID, handle string, p InitiateParams) (*engine.Match, error) {
	if p.Seed == "" {
		p.Seed = uuid.NewString()
	}
	if p.FirstActor == "" {
		p.FirstActor = engine.SidePlayer
	}
	if p.FirstActor != engine.SidePlayer && p.FirstActor != engine.SideAI {
		return nil, fmt.Errorf("%w: firstActor must be %q or %q", engine.ErrBadParams, engine.SidePlayer, engine.SideAI)
	}
	if p.GridW == 0 {
		p.GridW = engine.DefaultGridW
	}
	if p.GridH == 0 {
		p.GridH = engine.DefaultGridH
	}
	if p.Elo == 0 {
		p.Elo = engine.DefaultElo
		if userID != "" {
			if u, err := s.users.FindByID(ctx, userID); err == nil {
				p.Elo = u.Elo
			}
		}
	}

	init, err := engine.Generate(p.Seed, p.GridW, p.GridH, p.Elo)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &engine.Match{
		ID:             uuid.NewString(),
		Version:        1,
		Seed:           p.Seed,
		SeedKey:        init.SeedKey,
		SeedingVersion: engine.SeedingVersion,
		GridSize:       engine.GridSize{W: p.GridW, H: p.GridH},
		Elo:            p.Elo,
		Constraints:    init.Constraints,
		Spawn:          init.Spawn,
		Resources:      init.Resources,
		Loot:           init.Loot,
		Entities: engine.Entities{
			Player: engine.Entity{Pos: init.Spawn.Player, HP: engine.MaxHP, Inventory: map[string]int{}, UserID: userID, Handle: handle},
			AI:     engine.Entity{Pos: init.Spawn.AI, HP: engine.MaxHP, Inventory: map[string]int{}},
		},
		TurnIndex:    0,
		CurrentActor: p.FirstActor,
		Status:       engine.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		Players: []engine.Member{
			{Slot: "p1", Role: engine.SidePlayer, UserID: userID, Handle: handle},
			{Slot: "p2", Role: engine.SideAI},
		},
	}

	if p.FirstActor == engine.SideAI {
		cat, err := s.recipes.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		pol := s.loadPolicy(ctx, userID)
		aiOut, err := ai.RunTurn(m, engine.SideAI, pol, cat, s.aiRand)
		if err != nil {
			return nil, fmt.Errorf("ai opening turn: %w", err)
		}
		if !aiOut.Ended {
			m.TurnIndex = 1
			m.CurrentActor = engine.SidePlayer
		}
	}

	if err := s.matches.Insert(ctx, m); err != nil {
		return nil, fmt.Errorf("store match: %w", err)
	}
	log.Info().Str("matchId", m.ID).Str("seed", m.Seed).Int("elo", m.Elo).Msg("Match initiated")

	if m.Status == engine.StatusEnded {
		s.finalize(ctx, m, model.OutcomeKO)
	}
	return m, nil
}

// Find returns an active match by ID.
func (s *MatchService) Find(ctx context.Context, matchID string) (*engine.Match, error) {
	m, err := s.matches.Find(ctx, matchID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMatchNotFound
	}
	return m, err
}

// Update applies one player action, then runs the AI turn if the player's
// action consumed their turn. When expectedVersion is non-nil the stored
// snapshot must be at exactly that version. All mutation happens on a
// clone; the stored snapshot changes only through the version-checked
// write, and its version increases by exactly one per committed update.
func (s *MatchService) Update(ctx context.Context, matchID, userID string, expectedVersion *int64, action engine.Action) (*engine.Match, *engine.Result, error) {
	stored, err := s.Find(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		// Archived matches read as not-found in the live store; report
		// them as ended instead.
		if _, herr := s.history.FindByMatchKey(ctx, matchID); herr == nil {
			return nil, nil, ErrMatchEnded
		}
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, err
	}
	if stored.Status == engine.StatusEnded {
		return nil, nil, ErrMatchEnded
	}
	if err := checkParticipant(stored, userID); err != nil {
		return nil, nil, err
	}
	if expectedVersion != nil && stored.Version != *expectedVersion {
		return nil, nil, ErrVersionConflict
	}
	// Free actions stay legal off-turn; only turn-consuming ones wait.
	if engine.ConsumesTurn(action.Type) && stored.CurrentActor != engine.SidePlayer {
		return nil, nil, ErrWrongTurn
	}

	cat, err := s.recipes.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}

	m := stored.Clone()
	res, err := engine.Resolve(m, engine.SidePlayer, action, cat)
	if err != nil {
		return nil, nil, err
	}
	m.ActionHistory = append(m.ActionHistory, engine.ActionRecord{Actor: engine.SidePlayer, Action: action.Type})

	if res.ConsumeTurn && !res.Ended {
		m.TurnIndex++
		m.CurrentActor = engine.SideAI

		pol := s.loadPolicy(ctx, userID)
		aiOut, aiErr := ai.RunTurn(m, engine.SideAI, pol, cat, s.aiRand)
		if aiErr != nil {
			return nil, nil, fmt.Errorf("ai turn: %w", aiErr)
		}
		if aiOut.Ended {
			res.Ended = true
		} else {
			m.TurnIndex++
			m.CurrentActor = engine.SidePlayer
		}
	}

	m.Version = stored.Version + 1
	m.UpdatedAt = time.Now().UTC()

	if err := s.matches.UpdateCAS(ctx, m, stored.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, nil, ErrVersionConflict
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrMatchNotFound
		}
		return nil, nil, err
	}

	if m.Status == engine.StatusEnded {
		s.finalize(ctx, m, model.OutcomeKO)
	} else {
		s.bcast.BroadcastMatchEvent(m.ID, "match_updated", m)
	}
	return m, res, nil
}

// Resign concedes the match for the given side; the opposite side wins.
// An empty side means the human player resigns. Resigning an already-
// archived match is idempotent and returns the archived outcome.
func (s *MatchService) Resign(ctx context.Context, matchID, userID, side string) (*model.HistoricalMatch, error) {
	if side == "" {
		side = engine.SidePlayer
	}
	if side != engine.SidePlayer && side != engine.SideAI {
		return nil, fmt.Errorf("%w: side must be %q or %q", engine.ErrBadParams, engine.SidePlayer, engine.SideAI)
	}
	winner := engine.SideAI
	if side == engine.SideAI {
		winner = engine.SidePlayer
	}

	m, err := s.Find(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		h, herr := s.history.FindByMatchKey(ctx, matchID)
		if herr != nil {
			return nil, ErrMatchNotFound
		}
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(m, userID); err != nil {
		return nil, err
	}

	ended := m.Clone()
	ended.Status = engine.StatusEnded
	ended.Winner = winner
	ended.Reason = model.OutcomeResign
	ended.Version = m.Version + 1
	ended.UpdatedAt = time.Now().UTC()
	if err := s.matches.UpdateCAS(ctx, ended, m.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	s.finalize(ctx, ended, model.OutcomeResign)
	return s.history.FindByMatchKey(ctx, matchID)
}

// EndGame force-ends a match. Winner is optional ("" archives the match
// drawn); reason defaults to an administrative stop. Used by admin tooling
// and client-driven aborts.
func (s *MatchService) EndGame(ctx context.Context, matchID, userID, winner, reason string) (*model.HistoricalMatch, error) {
	if winner != "" && winner != engine.SidePlayer && winner != engine.SideAI {
		return nil, fmt.Errorf("%w: winner must be %q or %q", engine.ErrBadParams, engine.SidePlayer, engine.SideAI)
	}
	if reason == "" {
		reason = model.OutcomeAdmin
	}

	m, err := s.Find(ctx, matchID)
	if errors.Is(err, ErrMatchNotFound) {
		h, herr := s.history.FindByMatchKey(ctx, matchID)
		if herr != nil {
			return nil, ErrMatchNotFound
		}
		return h, nil
	}
	if err != nil {
		return nil, err
	}
	if err := checkParticipant(m, userID); err != nil {
		return nil, err
	}

	ended := m.Clone()
	ended.Status = engine.StatusEnded
	ended.Winner = winner
	ended.Reason = reason
	ended.Version = m.Version + 1
	ended.UpdatedAt = time.Now().UTC()
	if err := s.matches.UpdateCAS(ctx, ended, m.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	s.finalize(ctx, ended, reason)
	return s.history.FindByMatchKey(ctx, matchID)
}

// ActiveMatches pages through a user's live matches.
func (s *MatchService) ActiveMatches(ctx context.Context, userID string, skip, limit int) ([]*engine.Match, int, error) {
	return s.matches.ListByUser(ctx, userID, skip, limit)
}

// HistoricMatches pages through a user's archived matches.
func (s *MatchService) HistoricMatches(ctx context.Context, userID string, skip, limit int) ([]model.HistoricalMatch, int, error) {
	return s.history.ListByUser(ctx, userID, skip, limit)
}

// checkParticipant rejects callers who are not the match's human player.
// Matches created anonymously stay open to anonymous callers.
func checkParticipant(m *engine.Match, userID string) error {
	owner := m.Entities.Player.UserID
	if owner == "" {
		return nil
	}
	if owner != userID {
		return ErrNotParticipant
	}
	return nil
}

// loadPolicy returns the player-scoped policy when one has been learned,
// falling back to the embedded default.
func (s *MatchService) loadPolicy(ctx context.Context, userID string) *ai.Policy {
	if userID == "" || s.policies == nil {
		return ai.DefaultPolicy()
	}
	pol, err := s.policies.FindForPlayer(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn().Err(err).Str("userId", userID).Msg("Policy load failed, using default")
		}
		return ai.DefaultPolicy()
	}
	return pol
}

// finalize runs the end-of-match pipeline on an ended snapshot: rating
// adjustment, policy learning, archival, and active-store cleanup. Rating
// and learning failures are logged and swallowed so a flaky Postgres never
// blocks the match from ending; archival gets one retry because losing the
// record entirely is worse.
func (s *MatchService) finalize(ctx context.Context, m *engine.Match, outcome string) {
	userID := m.Entities.Player.UserID

	if userID != "" {
		delta := -EloDelta
		if m.Winner == engine.SidePlayer {
			delta = EloDelta
		}
		if _, err := s.users.AdjustElo(ctx, userID, delta); err != nil {
			log.Error().Err(err).Str("matchId", m.ID).Str("userId", userID).Msg("Elo adjustment failed")
		}

		pol := s.loadPolicy(ctx, userID)
		if pol.Scope != ai.ScopePlayer {
			pol = pol.ForPlayer(userID)
		}
		pol.RecordOutcome(m.Winner == engine.SideAI, ai.ActionTypesTaken(m.ActionHistory, engine.SideAI))
		if err := s.policies.Upsert(ctx, pol); err != nil {
			log.Error().Err(err).Str("matchId", m.ID).Msg("Policy update failed")
		}
	}

	h := buildHistory(m, outcome)
	if err := s.history.Insert(ctx, h); err != nil {
		log.Warn().Err(err).Str("matchId", m.ID).Msg("Archive insert failed, retrying")
		if err := s.history.Insert(ctx, h); err != nil {
			log.Error().Err(err).Str("matchId", m.ID).Msg("Archive insert failed twice, keeping live snapshot")
			s.bcast.BroadcastMatchEvent(m.ID, "match_ended", m)
			return
		}
	}

	if err := s.matches.Delete(ctx, m); err != nil {
		log.Error().Err(err).Str("matchId", m.ID).Msg("Active match cleanup failed")
	}
	s.bcast.BroadcastMatchEvent(m.ID, "match_ended", m)
	log.Info().Str("matchId", m.ID).Str("winner", m.Winner).Str("outcome", outcome).Int("turns", m.TurnIndex).Msg("Match archived")
}

// buildHistory condenses an ended snapshot into its archive record.
func buildHistory(m *engine.Match, outcome string) *model.HistoricalMatch {
	players := make([]model.HistoricalPlayer, 0, len(m.Players))
	for _, p := range m.Players {
		ent := m.Actor(p.Role)
		hp := 0
		if ent != nil {
			hp = ent.HP
		}
		players = append(players, model.HistoricalPlayer{
			Slot:             p.Slot,
			Role:             p.Role,
			UserID:           p.UserID,
			Handle:           p.Handle,
			FinalHP:          hp,
			ActionsHistogram: actionsHistogram(m.ActionHistory, p.Role),
		})
	}
	return &model.HistoricalMatch{
		MatchKey:       m.ID,
		Seed:           m.Seed,
		SeedKey:        m.SeedKey,
		SeedingVersion: m.SeedingVersion,
		GridW:          m.GridSize.W,
		GridH:          m.GridSize.H,
		Elo:            m.Elo,
		Players:        players,
		Winner:         m.Winner,
		Outcome:        outcome,
		StartedAt:      m.CreatedAt,
		EndedAt:        m.UpdatedAt,
		DurationTurns:  m.TurnIndex,
	}
}

func actionsHistogram(history []engine.ActionRecord, side string) map[string]int {
	hist := make(map[string]int)
	for _, rec := range history {
		if rec.Actor == side {
			hist[rec.Action]++
		}
	}
	if len(hist) == 0 {
		return nil
	}
	return hist
}
