package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/anton-kapralov/fuel-economy-pulse/vehicle"
)

const recordsCacheKeyPrefix = "fleet:vehicles:"

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// cachedService keeps a copy of the raw record set in memcache so repeated
// requests do not hit the underlying loader. Aggregates are never cached.
// Writes are best effort: a failed Set is logged and the loaded records are
// still returned.
type cachedService struct {
	next   Service
	client memcacheClient
	key    string
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewCachedService caches the records of next under a key derived from
// source, so loaders of different sources never share an entry.
func NewCachedService(
	next Service,
	source string,
	client *memcache.Client,
	ttl time.Duration,
	logger *zap.SugaredLogger,
) Service {
	return newCachedService(next, source, client, ttl, logger)
}

func newCachedService(
	next Service,
	source string,
	client memcacheClient,
	ttl time.Duration,
	logger *zap.SugaredLogger,
) *cachedService {
	return &cachedService{
		next:   next,
		client: client,
		key:    recordsCacheKeyPrefix + source,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *cachedService) List(ctx context.Context) ([]vehicle.Record, error) {
	item, err := s.client.Get(s.key)
	switch {
	case err == nil:
		var records []vehicle.Record
		if err := json.Unmarshal(item.Value, &records); err == nil {
			return records, nil
		}
	case !errors.Is(err, memcache.ErrCacheMiss):
		return nil, fmt.Errorf("failed to read records from memcache: %s", err)
	}

	records, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	value, err := json.Marshal(records)
	if err != nil {
		s.logger.Warnw("failed to encode records for memcache", "key", s.key, "error", err)
		return records, nil
	}
	if err := s.client.Set(&memcache.Item{
		Key:        s.key,
		Value:      value,
		Expiration: int32(s.ttl.Seconds()),
	}); err != nil {
		s.logger.Warnw("failed to write records to memcache", "key", s.key, "error", err)
	}
	return records, nil
}
