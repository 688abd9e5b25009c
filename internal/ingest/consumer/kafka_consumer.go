package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/ingest/cache"
	"github.com/bichoplay/settlement-engine/internal/results/repo"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// Processor consome lotes de resultado do Kafka, persiste no banco e faz
// cache do lote corrente. Callbacks de métricas podem ser usadas para
// monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repo.BatchRepo
	Cache  *cache.RedisCache
	DLQ    *kafka.Writer // opcional: lotes inválidos

	OnConsumed func()       // métricas (counter++)
	OnPersist  func()       // métricas
	OnCached   func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e persistência dos lotes
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var batch events.DrawResultBatch
		if err := json.Unmarshal(m.Value, &batch); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m.Key, m.Value)
			continue
		}
		if batch.ObservedAt.IsZero() {
			batch.ObservedAt = m.Time
		}

		// Persiste o lote; posições inconsistentes vão para a DLQ
		if _, err := p.Repo.InsertBatch(ctx, batch); err != nil {
			p.Log.Warn("batch insert failed",
				zap.String("lottery", batch.Lottery),
				zap.String("time_slot", batch.TimeSlot),
				zap.Error(err),
			)
			if p.OnError != nil {
				p.OnError("db_insert")
			}
			p.toDLQ(ctx, m.Key, m.Value)
			continue
		}
		if p.OnPersist != nil {
			p.OnPersist()
		}

		// Atualiza o cache com o lote corrente da extração
		if err := p.Cache.SetCurrent(ctx, batch); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// cache é acessório, o lote já está persistido
		} else if p.OnCached != nil {
			p.OnCached()
		}
	}
}

func (p *Processor) toDLQ(ctx context.Context, key, value []byte) {
	if p.DLQ == nil {
		return
	}
	msg := kafka.Message{Key: key, Value: value, Time: time.Now()}
	if err := p.DLQ.WriteMessages(ctx, msg); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
	}
}
