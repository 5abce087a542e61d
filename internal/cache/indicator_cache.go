package cache

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"market-pulse/internal/domain"

	"github.com/redis/go-redis/v9"
)

const snapshotRedisKey = "indicators:snapshot"

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// snapshot is the at-rest shape of the backup file: per-symbol indicator
// maps plus the two list categories under indicator_data, and the
// per-category per-symbol DB-backed values under crypto_data.
type snapshot struct {
	IndicatorData map[string]any `json:"indicator_data"`
	CryptoData    map[string]any `json:"crypto_data"`
}

func emptySnapshot() snapshot {
	return snapshot{
		IndicatorData: map[string]any{},
		CryptoData:    map[string]any{},
	}
}

// IndicatorCache is the process-wide in-memory view of indicator data,
// mirrored to a JSON backup file. A single mutex guards every read, merge
// and flush so merges are atomic with respect to snapshotting.
type IndicatorCache struct {
	mu    sync.Mutex
	path  string
	redis RedisClient
	data  snapshot
}

func NewIndicatorCache(path string, redisClient RedisClient) *IndicatorCache {
	// A nil *redis.Client boxed into the interface is still "not nil";
	// normalize it so the mirror stays disabled without Redis.
	if rc, ok := redisClient.(*redis.Client); ok && rc == nil {
		redisClient = nil
	}
	c := &IndicatorCache{path: path, redis: redisClient, data: emptySnapshot()}
	if disk, ok := readSnapshot(path); ok {
		c.data = disk
	}
	return c
}

// MergeIndicators folds one symbol's alert fields into indicator_data.
// Existing fields with the same name are replaced, others retained.
func (c *IndicatorCache) MergeIndicators(symbol string, fields map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	incoming := make(map[string]any, len(fields))
	for k, v := range fields {
		incoming[k] = v
	}
	c.data.IndicatorData[symbol] = mergeValue(c.data.IndicatorData[symbol], incoming)
}

// MergeTopLevel merges a posted JSON object into indicator_data key by key.
func (c *IndicatorCache) MergeTopLevel(obj map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data.IndicatorData = mergeMaps(c.data.IndicatorData, obj)
}

// ReplaceList swaps out a list-valued category wholesale.
func (c *IndicatorCache) ReplaceList(category domain.Category, rows any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data.IndicatorData[string(category)] = rows
}

// MergeCategory folds a DB-backed value into crypto_data for one
// (category, symbol) pair.
func (c *IndicatorCache) MergeCategory(category domain.Category, symbol string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byCat, _ := c.data.CryptoData[string(category)].(map[string]any)
	if byCat == nil {
		byCat = map[string]any{}
	}
	byCat[symbol] = mergeValue(byCat[symbol], value)
	c.data.CryptoData[string(category)] = byCat
}

// CategoryValue reads a cached (category, symbol) value.
func (c *IndicatorCache) CategoryValue(category domain.Category, symbol string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byCat, _ := c.data.CryptoData[string(category)].(map[string]any)
	if byCat == nil {
		return nil, false
	}
	v, ok := byCat[symbol]
	return v, ok
}

// Indicators returns a copy of the indicator_data section.
func (c *IndicatorCache) Indicators() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return deepCopyMap(c.data.IndicatorData)
}

// FlushToDisk merges the in-memory state over whatever the backup file
// holds (in-memory wins per field) and rewrites the file wholesale. Absent
// or corrupt files count as empty. Safe to call on every request.
func (c *IndicatorCache) FlushToDisk(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	merged := emptySnapshot()
	if disk, ok := readSnapshot(c.path); ok {
		merged = disk
	}
	merged.IndicatorData = mergeMaps(merged.IndicatorData, c.data.IndicatorData)
	merged.CryptoData = mergeMaps(merged.CryptoData, c.data.CryptoData)
	c.data = merged

	payload, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, payload, 0o644); err != nil {
		return err
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, snapshotRedisKey, payload, 0).Err(); err != nil {
			log.Printf("redis snapshot mirror error: %v", err)
		}
	}
	return nil
}

func readSnapshot(path string) (snapshot, bool) {
	raw, err := os.ReadFile(path)
	if err != nil || len(raw) == 0 {
		return snapshot{}, false
	}
	var s snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return snapshot{}, false
	}
	if s.IndicatorData == nil {
		s.IndicatorData = map[string]any{}
	}
	if s.CryptoData == nil {
		s.CryptoData = map[string]any{}
	}
	return s, true
}

// mergeValue merges new over old: two maps merge field by field with the
// new value winning per field; anything else (scalars, lists) is replaced.
func mergeValue(old, incoming any) any {
	oldMap, oldOK := old.(map[string]any)
	newMap, newOK := incoming.(map[string]any)
	if oldOK && newOK {
		return mergeMaps(oldMap, newMap)
	}
	return incoming
}

func mergeMaps(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = mergeValue(out[k], v)
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
