package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freeeve/gridfire/api/internal/ai"
	"github.com/freeeve/gridfire/api/internal/model"
	"github.com/freeeve/gridfire/api/internal/repository"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// mockMatchStore keeps snapshots serialized, like Redis, so version checks
// run against the stored copy rather than shared pointers.
type mockMatchStore struct {
	data map[string][]byte
}

func newMockMatchStore() *mockMatchStore {
	return &mockMatchStore{data: make(map[string][]byte)}
}

func (s *mockMatchStore) Insert(_ context.Context, m *engine.Match) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.data[m.ID] = b
	return nil
}

func (s *mockMatchStore) Find(_ context.Context, id string) (*engine.Match, error) {
	b, ok := s.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var m engine.Match
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *mockMatchStore) UpdateCAS(ctx context.Context, m *engine.Match, expectedVersion int64) error {
	stored, err := s.Find(ctx, m.ID)
	if err != nil {
		return err
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	return s.Insert(ctx, m)
}

func (s *mockMatchStore) Delete(_ context.Context, m *engine.Match) error {
	delete(s.data, m.ID)
	return nil
}

func (s *mockMatchStore) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*engine.Match, int, error) {
	var out []*engine.Match
	for id := range s.data {
		m, err := s.Find(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		for _, p := range m.Players {
			if p.UserID == userID {
				out = append(out, m)
				break
			}
		}
	}
	return out, len(out), nil
}

type mockUserRepo struct {
	users   map[string]*model.User
	eloErrs int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (r *mockUserRepo) Create(_ context.Context, handle, passwordHash string) (*model.User, error) {
	u := &model.User{
		ID:           fmt.Sprintf("user-%d", len(r.users)+1),
		Handle:       handle,
		PasswordHash: passwordHash,
		Elo:          1200,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *mockUserRepo) FindByHandle(_ context.Context, handle string) (*model.User, error) {
	for _, u := range r.users {
		if u.Handle == handle {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *mockUserRepo) AdjustElo(_ context.Context, id string, delta int) (int, error) {
	if r.eloErrs > 0 {
		r.eloErrs--
		return 0, fmt.Errorf("simulated elo failure")
	}
	u, ok := r.users[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	u.Elo += delta
	if u.Elo < 0 {
		u.Elo = 0
	}
	return u.Elo, nil
}

type mockHistoryRepo struct {
	byKey    map[string]*model.HistoricalMatch
	failures int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{byKey: make(map[string]*model.HistoricalMatch)}
}

func (r *mockHistoryRepo) Insert(_ context.Context, h *model.HistoricalMatch) error {
	if r.failures > 0 {
		r.failures--
		return fmt.Errorf("simulated archive failure")
	}
	if existing, ok := r.byKey[h.MatchKey]; ok {
		h.ID = existing.ID
		return nil
	}
	h.ID = fmt.Sprintf("hist-%d", len(r.byKey)+1)
	cp := *h
	r.byKey[h.MatchKey] = &cp
	return nil
}

func (r *mockHistoryRepo) FindByMatchKey(_ context.Context, matchKey string) (*model.HistoricalMatch, error) {
	h, ok := r.byKey[matchKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return h, nil
}

func (r *mockHistoryRepo) ListByUser(_ context.Context, userID string, skip, limit int) ([]model.HistoricalMatch, int, error) {
	var out []model.HistoricalMatch
	for _, h := range r.byKey {
		for _, p := range h.Players {
			if p.UserID == userID {
				out = append(out, *h)
				break
			}
		}
	}
	return out, len(out), nil
}

type mockPolicyRepo struct {
	byPlayer map[string]*ai.Policy
}

func newMockPolicyRepo() *mockPolicyRepo {
	return &mockPolicyRepo{byPlayer: make(map[string]*ai.Policy)}
}

func (r *mockPolicyRepo) FindForPlayer(_ context.Context, playerID string) (*ai.Policy, error) {
	p, ok := r.byPlayer[playerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *mockPolicyRepo) Upsert(_ context.Context, p *ai.Policy) error {
	r.byPlayer[p.PlayerID] = p.Clone()
	return nil
}

// recordingBroadcaster captures events for assertions.
type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) BroadcastMatchEvent(matchID, eventType string, _ any) {
	b.events = append(b.events, eventType)
}
