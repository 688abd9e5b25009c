package intake

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/settlement"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// WagerCreator é o que o intake precisa do repositório de apostas.
type WagerCreator interface {
	CreatePending(ctx context.Context, w *settlement.Wager) (string, error)
	GetByExternalID(ctx context.Context, externalID string) (string, error)
}

// MessageWriter é o destino de eventos rejeitados. *kafka.Writer satisfaz.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Processor consome eventos wager_placed, valida e insere apostas pendentes.
// Eventos malformados vão para a DLQ em vez de travar o consumo.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   WagerCreator
	DLQ    MessageWriter // opcional

	OnConsumed  func()
	OnCreated   func()
	OnDuplicate func()
	OnError     func(string)
}

// Run inicia o loop principal de consumo
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
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

		var ev events.WagerPlaced
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.toDLQ(ctx, m.Key, m.Value)
			continue
		}

		if err := p.processOne(ctx, ev, m); err != nil {
			p.Log.Error("process wager",
				zap.String("external_id", ev.ExternalID),
				zap.Error(err),
			)
			if p.OnError != nil {
				p.OnError("persist")
			}
			// Erro de banco: backoff simples para evitar flood
			time.Sleep(500 * time.Millisecond)
		}
	}
}

func (p *Processor) processOne(ctx context.Context, ev events.WagerPlaced, m kafka.Message) error {
	w, err := BuildWager(ev)
	if err != nil {
		// Dado malformado não é retentável: registra e manda para a DLQ
		p.Log.Warn("rejected wager event",
			zap.String("external_id", ev.ExternalID),
			zap.Error(err),
		)
		if p.OnError != nil {
			p.OnError("validate")
		}
		p.toDLQ(ctx, m.Key, m.Value)
		return nil
	}

	// Idempotência por external_id: reentrega do mesmo evento é no-op
	if w.ExternalID != "" {
		existing, err := p.Repo.GetByExternalID(ctx, w.ExternalID)
		if err != nil {
			return err
		}
		if existing != "" {
			p.Log.Info("duplicate wager event",
				zap.String("external_id", w.ExternalID),
				zap.String("wager_id", existing),
			)
			if p.OnDuplicate != nil {
				p.OnDuplicate()
			}
			return nil
		}
	}

	id, err := p.Repo.CreatePending(ctx, &w)
	if err != nil {
		return err
	}

	p.Log.Info("wager accepted",
		zap.String("wager_id", id),
		zap.String("lottery", w.Lottery),
		zap.String("time_slot", w.TimeSlot),
		zap.String("modality", w.Modality),
		zap.Int64("stake_cents", w.StakeCents),
	)
	if p.OnCreated != nil {
		p.OnCreated()
	}
	return nil
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
