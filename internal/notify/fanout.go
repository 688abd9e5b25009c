package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/bicho"
	"github.com/bichoplay/settlement-engine/internal/ingest/pubsub"
	"github.com/bichoplay/settlement-engine/internal/settlement"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// Fanout propaga liquidações concluídas: evento Kafka para os sistemas
// upstream, broadcast Redis para dashboards e, opcionalmente, Telegram para
// o chat de operação. Tudo melhor esforço; a aposta já é terminal quando o
// fanout roda, então falha aqui nunca desfaz nada.
type Fanout struct {
	Log       *zap.Logger
	Settled   *kafkago.Writer          // tópico wager_settled, opcional
	Broadcast *pubsub.RedisBroadcaster // opcional
	Channel   string                   // canal do broadcast; vazio usa o padrão
	Telegram  *Telegram                // opcional
}

func (f *Fanout) NotifySettled(ctx context.Context, w settlement.Wager, s settlement.Settlement) {
	ev := events.WagerSettled{
		WagerID:     w.ID,
		ExternalID:  w.ExternalID,
		UserID:      w.UserID,
		Outcome:     string(s.Outcome),
		Hits:        s.Hits,
		PayoutCents: s.PayoutCents,
		Lottery:     w.Lottery,
		TimeSlot:    w.TimeSlot,
		Ts:          s.CreatedAt,
	}
	payload, _ := json.Marshal(ev)

	if f.Settled != nil {
		msg := kafkago.Message{Key: []byte(w.ID), Value: payload, Time: time.Now()}
		if err := f.Settled.WriteMessages(ctx, msg); err != nil {
			f.Log.Warn("settled event publish failed",
				zap.String("wager_id", w.ID), zap.Error(err))
		}
	}

	if f.Broadcast != nil {
		channel := f.Channel
		if channel == "" {
			channel = pubsub.ChannelSettledBroadcast
		}
		bctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		if err := f.Broadcast.Publish(bctx, channel, payload); err != nil {
			f.Log.Warn("settled broadcast failed",
				zap.String("wager_id", w.ID), zap.Error(err))
		}
		cancel()
	}

	if f.Telegram != nil {
		f.Telegram.Send(settledMessage(w, s))
	}
}

func settledMessage(w settlement.Wager, s settlement.Settlement) string {
	detail := w.Number
	if len(w.Groups) > 0 {
		detail = ""
		for i, g := range w.Groups {
			if i > 0 {
				detail += "-"
			}
			detail += fmt.Sprintf("%d (%s)", g, bicho.AnimalName(g))
		}
	}
	if s.Outcome == settlement.StatusWon {
		return fmt.Sprintf("✅ Aposta %s GANHOU: %s %s | %s %s | R$ %.2f",
			w.ID, w.Modality, detail, w.Lottery, w.TimeSlot, float64(s.PayoutCents)/100)
	}
	return fmt.Sprintf("❌ Aposta %s perdeu: %s %s | %s %s",
		w.ID, w.Modality, detail, w.Lottery, w.TimeSlot)
}
