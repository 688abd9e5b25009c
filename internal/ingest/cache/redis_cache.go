package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bichoplay/settlement-engine/internal/matching"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// RedisCache guarda o lote mais recente de cada extração no Redis, para
// leitura direta pelos painéis.
// Client: cliente Redis
// TTL: tempo de expiração dos registros
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache cria uma instância de cache Redis com TTL configurável
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// key gera a chave Redis do sorteio corrente de uma extração
func key(lottery, slot string) string {
	norm, err := matching.NormalizeTimeSlot(slot)
	if err != nil {
		norm = slot
	}
	return "draw:current:" + matching.NormalizeLottery(lottery) + ":" + norm
}

// SetCurrent armazena o lote mais recente de uma extração com TTL definido
func (r *RedisCache) SetCurrent(ctx context.Context, b events.DrawResultBatch) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(b.Lottery, b.TimeSlot), raw, r.TTL).Err()
}
