package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	flashPrefix = "flash:"
	flashTTL    = 5 * time.Minute
)

type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashWarning FlashLevel = "warning"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// FlashStore keeps pending flashes per user in a redis list.
type FlashStore struct{ rdb *redis.Client }

func NewFlashStore(rdb *redis.Client) *FlashStore { return &FlashStore{rdb: rdb} }

func (s *FlashStore) Put(ctx context.Context, owner string, f Flash) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	key := flashPrefix + owner
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.Expire(ctx, key, flashTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// Pop returns and clears all pending flashes for owner.
func (s *FlashStore) Pop(ctx context.Context, owner string) ([]Flash, error) {
	key := flashPrefix + owner
	pipe := s.rdb.TxPipeline()
	lr := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	raw := lr.Val()
	out := make([]Flash, 0, len(raw))
	for _, v := range raw {
		var f Flash
		if err := json.Unmarshal([]byte(v), &f); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
