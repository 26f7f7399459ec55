package services

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"time"

	"facet-search-service/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedEngine keeps responses of aggregation-only requests (size 0) for a
// short time. Hit searches and document lookups always reach the engine.
type CachedEngine struct {
	Engine
	cache *expirable.LRU[[32]byte, *models.EngineResponse]
}

func NewCachedEngine(engine Engine, size int, ttl time.Duration) *CachedEngine {
	return &CachedEngine{
		Engine: engine,
		cache:  expirable.NewLRU[[32]byte, *models.EngineResponse](size, nil, ttl),
	}
}

func (c *CachedEngine) Search(ctx context.Context, index string, body map[string]interface{}) (*models.EngineResponse, error) {
	if size, ok := body["size"].(int); !ok || size != 0 {
		return c.Engine.Search(ctx, index, body)
	}
	key, err := cacheKey(index, body)
	if err != nil {
		return c.Engine.Search(ctx, index, body)
	}
	if res, ok := c.cache.Get(key); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return res, nil
	}
	cacheLookups.WithLabelValues("miss").Inc()

	res, err := c.Engine.Search(ctx, index, body)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, res)
	return res, nil
}

// Purge drops every cached response, e.g. after a schema reload.
func (c *CachedEngine) Purge() {
	c.cache.Purge()
}

func (c *CachedEngine) Len() int {
	return c.cache.Len()
}

// cacheKey hashes the index with the body. Map keys are encoded sorted, so
// equal bodies give equal keys.
func cacheKey(index string, body map[string]interface{}) ([32]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(append([]byte(index+"\x00"), data...)), nil
}
