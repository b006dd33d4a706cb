package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reportGenKey = "ledger:reports:gen"

// ReportCache caches report payloads in Redis under a generation counter.
// Every successful posting bumps the generation, which orphans all cached
// reports at once. All methods are no-ops when Redis is unavailable, so the
// service degrades to uncached reads.
//
// The generation is read exactly once, in Get, and threaded through to Set.
// A posting that commits while a report is being computed bumps the counter
// past the captured value, so the Set lands under the old generation and is
// never served again.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) generation(ctx context.Context) string {
	gen, err := c.client.Get(ctx, reportGenKey).Result()
	if err != nil {
		return "0"
	}
	return gen
}

func (c *ReportCache) key(gen, name string, parts ...string) string {
	key := fmt.Sprintf("ledger:report:%s:%s", gen, name)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Get unmarshals a cached report into dest, reporting whether it was found.
// The returned generation must be passed back to Set on a miss.
func (c *ReportCache) Get(ctx context.Context, dest interface{}, name string, parts ...string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	gen := c.generation(ctx)
	raw, err := c.client.Get(ctx, c.key(gen, name, parts...)).Bytes()
	if err != nil {
		return gen, false
	}
	return gen, json.Unmarshal(raw, dest) == nil
}

// Set stores a report under the generation captured by the preceding Get.
func (c *ReportCache) Set(ctx context.Context, gen string, value interface{}, name string, parts ...string) {
	if c == nil || c.client == nil || gen == "" {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.key(gen, name, parts...), raw, c.ttl)
}

// Bump invalidates every cached report by advancing the generation.
func (c *ReportCache) Bump(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Incr(ctx, reportGenKey)
}
