package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"backoffice/internal/domain/model"
	"backoffice/internal/repository"
)

const keyPrefix = "order_wizard:"

type WizardRedisRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewWizardRedisRepository(rdb *redis.Client, ttl time.Duration) repository.WizardSessionRepository {
	return &WizardRedisRepository{rdb: rdb, ttl: ttl}
}

// REDIS_URL から接続してPingまで確認する
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func key(id string) string {
	return keyPrefix + id
}

func (r *WizardRedisRepository) Create(ctx context.Context, w *model.OrderWizard) error {
	w.Version = 1
	b, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard: %w", err)
	}

	ok, err := r.rdb.SetNX(ctx, key(w.ID), b, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrWizardConflict
	}
	return nil
}

func (r *WizardRedisRepository) Find(ctx context.Context, id string) (*model.OrderWizard, error) {
	val, err := r.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrWizardNotFound
		}
		return nil, err
	}
	return decode(val)
}

// WATCHで読み込み時のVersionと比べてから書く
func (r *WizardRedisRepository) Save(ctx context.Context, w *model.OrderWizard) error {
	k := key(w.ID)
	expected := w.Version

	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return repository.ErrWizardNotFound
			}
			return err
		}
		stored, err := decode(val)
		if err != nil {
			return err
		}
		if stored.Version != expected {
			return repository.ErrWizardConflict
		}

		next := *w
		next.Version = expected + 1
		b, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("failed to marshal wizard: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, b, r.ttl)
			return nil
		})
		return err
	}

	err := r.rdb.Watch(ctx, txf, k)
	if errors.Is(err, redis.TxFailedErr) {
		return repository.ErrWizardConflict
	}
	if err != nil {
		return err
	}
	w.Version = expected + 1
	return nil
}

func (r *WizardRedisRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, key(id)).Err()
}

func decode(val []byte) (*model.OrderWizard, error) {
	var w model.OrderWizard
	if err := json.Unmarshal(val, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard: %w", err)
	}
	return &w, nil
}
