package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps entries as plain strings with SET EX and tracks tag membership
// in Redis sets. Every Set refreshes the tag set's TTL, so with a uniform
// entry TTL the set outlives its members.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "catalog"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	bs, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bs, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration, tags ...string) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetEx(ctx, key, val, ttl)
		for _, tag := range tags {
			tk := tagKey(r.prefix, tag)
			p.SAdd(ctx, tk, key)
			p.Expire(ctx, tk, ttl)
		}
		return nil
	})
	return err
}

// invalidateScript reads and deletes a tag's members and the tag set in one
// step, so a concurrent Set is either deleted with the tag or tracked by a
// fresh set. DEL runs in batches to stay under Lua's unpack limit.
var invalidateScript = redis.NewScript(`
local keys = redis.call('SMEMBERS', KEYS[1])
for i = 1, #keys, 500 do
  redis.call('DEL', unpack(keys, i, math.min(i + 499, #keys)))
end
redis.call('DEL', KEYS[1])
return #keys
`)

func (r *Redis) InvalidateTag(ctx context.Context, tag string) error {
	return invalidateScript.Run(ctx, r.rdb, []string{tagKey(r.prefix, tag)}).Err()
}
