package actors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/rule-elements/internal/domain/document"
	dnderr "github.com/KirkDiggler/rule-elements/internal/errors"
)

const indexKey = "actors:index"

// Data is the stored form of an actor
type Data struct {
	Actor     *document.ActorSource `json:"actor"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type redisRepo struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
}

// NewRedis creates a Redis-backed actor repository
func NewRedis(cfg *RedisRepoConfig) (Repository, error) {
	if cfg == nil || cfg.Client == nil {
		return nil, dnderr.InvalidArgument("redis client is required")
	}
	tp := cfg.TimeProvider
	if tp == nil {
		tp = systemTime{}
	}
	return &redisRepo{client: cfg.Client, timeProvider: tp}, nil
}

func key(id string) string {
	return fmt.Sprintf("actor:%s", id)
}

// Get retrieves an actor by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*document.ActorSource, error) {
	if id == "" {
		return nil, dnderr.InvalidArgument("actor ID is required")
	}

	raw, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, dnderr.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to get actor")
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actor %s: %w", id, err)
	}
	if data.Actor == nil {
		return nil, dnderr.Internalf("actor record '%s' is empty", id)
	}
	return data.Actor, nil
}

// Put stores the actor and indexes it
func (r *redisRepo) Put(ctx context.Context, actor *document.ActorSource) error {
	if err := validate(actor); err != nil {
		return err
	}

	jsonData, err := json.Marshal(Data{Actor: actor, UpdatedAt: r.timeProvider.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal actor: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, key(actor.ID), string(jsonData), 0)
	pipe.SAdd(ctx, indexKey, actor.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to put actor")
	}
	return nil
}

// Delete removes the actor and its index entry
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dnderr.InvalidArgument("actor ID is required")
	}

	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, key(id))
	pipe.SRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to delete actor")
	}
	if del.Val() == 0 {
		return dnderr.NotFoundf("actor with ID '%s' not found", id).
			WithMeta("actor_id", id)
	}
	return nil
}

// List loads every indexed actor concurrently
func (r *redisRepo) List(ctx context.Context) ([]*document.ActorSource, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeUnavailable, "failed to list actors")
	}
	sort.Strings(ids)

	out := make([]*document.ActorSource, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			actor, err := r.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get actor %s: %w", id, err)
			}
			out[i] = actor
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
