package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
)

var _ inventory.ValuationCache = (*ValuationCache)(nil)

// ValuationCache guarda la valorización vigente por ítem bajo una clave versionada.
// Invalidate incrementa la versión del ítem: las entradas anteriores quedan huérfanas
// y expiran por TTL, así una lectura concurrente nunca publica un valor ya invalidado.
// Redis es best-effort: si falla, se recalcula desde el ledger y se registra el error.
type ValuationCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewValuationCache construye la caché.
func NewValuationCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *ValuationCache {
	return &ValuationCache{client: client, ttl: ttl, log: log}
}

func versionKey(itemID string) string {
	return "valuation:version:" + itemID
}

func valueKey(itemID string, ver int64) string {
	return fmt.Sprintf("valuation:%s:v%d", itemID, ver)
}

// version devuelve la versión vigente del ítem (0 si nunca se invalidó).
func (c *ValuationCache) version(ctx context.Context, itemID string) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(itemID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// Fetch implementa inventory.ValuationCache.
func (c *ValuationCache) Fetch(ctx context.Context, itemID string, load inventory.ValuationLoader) (entity.Valuation, error) {
	ver, err := c.version(ctx, itemID)
	if err != nil {
		c.log.Error().Err(err).Str("item_id", itemID).Msg("cache: leer versión")
		return load(ctx)
	}
	key := valueKey(itemID, ver)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var v entity.Valuation
		if err := json.Unmarshal(payload, &v); err == nil {
			return v, nil
		}
		c.log.Warn().Str("key", key).Msg("cache: entrada corrupta, se recalcula")
	} else if !errors.Is(err, redis.Nil) {
		c.log.Error().Err(err).Str("key", key).Msg("cache: leer valorización")
		return load(ctx)
	}

	v, err := load(ctx)
	if err != nil {
		return entity.Valuation{}, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache: guardar valorización")
	}
	return v, nil
}

// Invalidate implementa inventory.ValuationCache.
func (c *ValuationCache) Invalidate(ctx context.Context, itemIDs ...string) {
	seen := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		if err := c.client.Incr(ctx, versionKey(id)).Err(); err != nil {
			c.log.Error().Err(err).Str("item_id", id).Msg("cache: invalidar valorización")
		}
	}
}
