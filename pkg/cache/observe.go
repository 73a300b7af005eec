package cache

import (
	"context"
	"time"

	"github.com/mmlkg/mizgra/pkg/observability"
)

type observed struct {
	Cache
	keyType string
}

// Observe reports every hit, miss and write on c to the registered cache
// hooks under keyType.
func Observe(c Cache, keyType string) Cache {
	return &observed{Cache: c, keyType: keyType}
}

func (o *observed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := o.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, o.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, o.keyType)
		}
	}
	return data, ok, err
}

func (o *observed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := o.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, o.keyType, len(data))
	}
	return err
}
