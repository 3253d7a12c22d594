package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/recordgraph/recordgraph/internal/modules/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cachedBridge is a read-through redis cache in front of another bridge.
// Id pairs never change once written, so hits are served without revalidation.
// Misses are not cached; a record created later must become visible at once.
type cachedBridge struct {
	next IdentifierBridge
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

// NewCachedBridge wraps next with redis. A nil client returns next unchanged.
func NewCachedBridge(next IdentifierBridge, rdb *redis.Client, ttl time.Duration, log *zap.Logger) IdentifierBridge {
	if rdb == nil {
		return next
	}
	return &cachedBridge{next: next, rdb: rdb, ttl: ttl, log: log}
}

func extKey(kind model.Kind, externalID string) string {
	return fmt.Sprintf("bridge:%s:ext:%s", kind, externalID)
}

func intKey(kind model.Kind, key uint) string {
	return fmt.Sprintf("bridge:%s:key:%d", kind, key)
}

func (c *cachedBridge) ResolveInternal(ctx context.Context, kind model.Kind, externalID string) (uint, error) {
	v, err := c.rdb.Get(ctx, extKey(kind, externalID)).Result()
	if err == nil {
		if n, perr := strconv.ParseUint(v, 10, 64); perr == nil {
			return uint(n), nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.warn("get", err)
	}

	key, err := c.next.ResolveInternal(ctx, kind, externalID)
	if err != nil {
		return 0, err
	}
	c.store(ctx, kind, map[string]uint{externalID: key})
	return key, nil
}

func (c *cachedBridge) ResolveExternal(ctx context.Context, kind model.Kind, key uint) (string, error) {
	v, err := c.rdb.Get(ctx, intKey(kind, key)).Result()
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.warn("get", err)
	}

	ext, err := c.next.ResolveExternal(ctx, kind, key)
	if err != nil {
		return "", err
	}
	c.store(ctx, kind, map[string]uint{ext: key})
	return ext, nil
}

func (c *cachedBridge) ResolveInternalMany(ctx context.Context, kind model.Kind, externalIDs []string) (map[string]uint, error) {
	out := make(map[string]uint, len(externalIDs))
	if len(externalIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(externalIDs))
	for i, id := range externalIDs {
		keys[i] = extKey(kind, id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.warn("mget", err)
		vals = nil
	}

	var missing []string
	for i, id := range externalIDs {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				if n, perr := strconv.ParseUint(s, 10, 64); perr == nil {
					out[id] = uint(n)
					continue
				}
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.next.ResolveInternalMany(ctx, kind, missing)
	if err != nil {
		return nil, err
	}
	for id, key := range found {
		out[id] = key
	}
	c.store(ctx, kind, found)
	return out, nil
}

func (c *cachedBridge) ResolveExternalMany(ctx context.Context, kind model.Kind, keys []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rkeys := make([]string, len(keys))
	for i, k := range keys {
		rkeys[i] = intKey(kind, k)
	}
	vals, err := c.rdb.MGet(ctx, rkeys...).Result()
	if err != nil {
		c.warn("mget", err)
		vals = nil
	}

	var missing []uint
	for i, k := range keys {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				out[k] = s
				continue
			}
		}
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := c.next.ResolveExternalMany(ctx, kind, missing)
	if err != nil {
		return nil, err
	}
	pairs := make(map[string]uint, len(found))
	for k, ext := range found {
		out[k] = ext
		pairs[ext] = k
	}
	c.store(ctx, kind, pairs)
	return out, nil
}

// store writes both directions of every pair.
func (c *cachedBridge) store(ctx context.Context, kind model.Kind, pairs map[string]uint) {
	if len(pairs) == 0 {
		return
	}
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for ext, key := range pairs {
			p.Set(ctx, extKey(kind, ext), strconv.FormatUint(uint64(key), 10), c.ttl)
			p.Set(ctx, intKey(kind, key), ext, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.warn("set", err)
	}
}

func (c *cachedBridge) warn(op string, err error) {
	c.log.Warn("bridge cache unavailable, using database", zap.String("op", op), zap.Error(err))
}
