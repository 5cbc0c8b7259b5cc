package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/gridfire/api/internal/repository"
	"github.com/freeeve/gridfire/api/pkg/engine"
)

// Key patterns for live match state.
func matchKey(id string) string           { return "match:" + id }
func userMatchesKey(userID string) string { return "user:" + userID + ":active" }

// Insert stores a fresh match snapshot and indexes it per registered player.
func (c *Client) Insert(ctx context.Context, m *engine.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, matchKey(m.ID), data, 0)
	for _, p := range m.Players {
		if p.UserID != "" {
			pipe.SAdd(ctx, userMatchesKey(p.UserID), m.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// Find loads a match snapshot by ID.
func (c *Client) Find(ctx context.Context, id string) (*engine.Match, error) {
	data, err := c.rdb.Get(ctx, matchKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	var m engine.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal match: %w", err)
	}
	return &m, nil
}

// UpdateCAS writes the snapshot only if the stored version still equals
// expectedVersion. WATCH aborts the transaction when the key changes between
// the read and the write, which surfaces as ErrVersionConflict.
func (c *Client) UpdateCAS(ctx context.Context, m *engine.Match, expectedVersion int64) error {
	key := matchKey(m.ID)
	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get match: %w", err)
		}
		var stored engine.Match
		if err := json.Unmarshal(data, &stored); err != nil {
			return fmt.Errorf("unmarshal match: %w", err)
		}
		if stored.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		out, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal match: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}
	err := c.rdb.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		return repository.ErrVersionConflict
	}
	return err
}

// Delete removes the snapshot and its per-user index entries.
func (c *Client) Delete(ctx context.Context, m *engine.Match) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, matchKey(m.ID))
	for _, p := range m.Players {
		if p.UserID != "" {
			pipe.SRem(ctx, userMatchesKey(p.UserID), m.ID)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// ListByUser pages through a user's active matches and reports the total
// indexed count. Matches indexed but already deleted are skipped.
func (c *Client) ListByUser(ctx context.Context, userID string, skip, limit int) ([]*engine.Match, int, error) {
	ids, err := c.rdb.SMembers(ctx, userMatchesKey(userID)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("list user matches: %w", err)
	}
	sort.Strings(ids)
	total := len(ids)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if limit <= 0 || end > total {
		end = total
	}
	var out []*engine.Match
	for _, id := range ids[skip:end] {
		m, err := c.Find(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, nil
}
