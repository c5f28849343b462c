package compendium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

const packsKey = "compendium:packs"

type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds configuration for the Redis compendium
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedis creates a Redis-backed compendium
func NewRedis(cfg *RedisRepoConfig) (Repository, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, dnderr.InvalidArgument("redis client is required")
	}
	return &redisRepo{client: cfg.Client}, nil
}

func itemKey(pack, id string) string {
	return fmt.Sprintf("compendium:%s:%s", pack, id)
}

func indexKey(pack string) string {
	return fmt.Sprintf("compendium:%s:index", pack)
}

// Put stores the item, indexes it in its pack, and registers the pack
func (r *redisRepo) Put(ctx context.Context, pack string, item *document.ItemSource) error {
	stored, err := prepareItem(pack, item)
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, itemKey(pack, item.ID), string(jsonData), 0)
	pipe.SAdd(ctx, indexKey(pack), item.ID)
	pipe.SAdd(ctx, packsKey, pack)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to put compendium item")
	}
	return nil
}

// Get retrieves a pack item
func (r *redisRepo) Get(ctx context.Context, pack, id string) (*document.ItemSource, error) {
	raw, err := r.client.Get(ctx, itemKey(pack, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, dnderr.NotFoundf("item '%s' not found in pack '%s'", id, pack).
			WithMeta("pack", pack).
			WithMeta("item_id", id)
	}
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get compendium item")
	}

	var item document.ItemSource
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", id, err)
	}
	return &item, nil
}

// List loads every item in the pack concurrently
func (r *redisRepo) List(ctx context.Context, pack string) ([]*document.ItemSource, error) {
	ids, err := r.client.SMembers(ctx, indexKey(pack)).Result()
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to list compendium pack")
	}
	sort.Strings(ids)

	out := make([]*document.ItemSource, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			item, err := r.Get(ctx, pack, id)
			if err != nil {
				return fmt.Errorf("failed to get item %s: %w", id, err)
			}
			out[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Packs returns the registered pack names
func (r *redisRepo) Packs(ctx context.Context) ([]string, error) {
	packs, err := r.client.SMembers(ctx, packsKey).Result()
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to list packs")
	}
	sort.Strings(packs)
	return packs, nil
}

// FromUUID resolves a compendium item UUID
func (r *redisRepo) FromUUID(ctx context.Context, uuid string) (*document.ItemSource, error) {
	pack, id, ok := lookup(uuid)
	if !ok {
		return nil, nil
	}
	item, err := r.Get(ctx, pack, id)
	if dnderr.IsNotFound(err) {
		return nil, nil
	}
	return item, err
}

// Query searches the stored packs
func (r *redisRepo) Query(ctx context.Context, q document.ItemQuery) ([]*document.ItemSource, error) {
	return query(ctx, r, q)
}
