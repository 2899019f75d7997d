package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/deserthomes/goapi/base/ctx"
)

// Forever means the key is stored without an expire
const Forever = time.Duration(-1)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = redis.ErrNil

	// ErrNoTTL is returned by TTL when the key exists but has no expire
	ErrNoTTL = errors.New("no ttl on key")

	// ErrGapTime is returned when no pool is available
	ErrGapTime = errors.New("no available redis pool")
)

// Service is a thin wrapper over a redigo pool
type Service interface {
	Get(context ctx.Ctx, key string) (val []byte, err error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX sets the key only when it does not already exist
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	Incrby(context ctx.Ctx, key string, val int) (int64, error)
	// TTL returns remaining seconds. ErrNotFound when the key is missing,
	// ErrNoTTL when it has no expire.
	TTL(context ctx.Ctx, key string) (int, error)
}
