package otps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/otpauth/internal/common"
	"github.com/dmitrijs2005/otpauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// consumeScript deletes the hash only when code and created_at still match.
var consumeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code') == ARGV[1]
   and redis.call('HGET', KEYS[1], 'created_at') == ARGV[2] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisRepository keeps each record in a hash "otp:<email>" that Redis
// expires after the retention period.
type RedisRepository struct {
	rdb       redis.UniversalClient
	retention time.Duration
}

func NewRedisRepository(rdb redis.UniversalClient, retention time.Duration) *RedisRepository {
	return &RedisRepository{rdb: rdb, retention: retention}
}

func key(email string) string {
	return keyPrefix + email
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (r *RedisRepository) Upsert(ctx context.Context, rec *models.OtpRecord) error {
	k := key(rec.Email)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k, "code", strconv.Itoa(rec.Code), "created_at", formatTime(rec.CreatedAt))
		if r.retention > 0 {
			pipe.Expire(ctx, k, r.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, email string) (*models.OtpRecord, error) {
	vals, err := r.rdb.HGetAll(ctx, key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(vals) == 0 {
		return nil, common.ErrorNotFound
	}

	code, err := strconv.Atoi(vals["code"])
	if err != nil {
		return nil, fmt.Errorf("redis error: bad code field: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("redis error: bad created_at field: %w", err)
	}

	return &models.OtpRecord{Email: email, Code: code, CreatedAt: createdAt}, nil
}

func (r *RedisRepository) Consume(ctx context.Context, rec *models.OtpRecord) (bool, error) {
	n, err := consumeScript.Run(ctx, r.rdb,
		[]string{key(rec.Email)},
		strconv.Itoa(rec.Code), formatTime(rec.CreatedAt),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}
