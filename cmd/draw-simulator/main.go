package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/shared/config"
	"github.com/bichoplay/settlement-engine/internal/shared/kafka"
	"github.com/bichoplay/settlement-engine/internal/shared/logger"
	"github.com/bichoplay/settlement-engine/internal/shared/metrics"
	"github.com/bichoplay/settlement-engine/pkg/contracts/events"
)

// Catálogo fixo de bancas e horários simulados para geração de extrações
var drawCatalog = []struct {
	lottery  string
	timeSlot string
}{
	{"PT RIO", "11:00"},
	{"PT RIO", "14:00"},
	{"PT RIO", "18:00"},
	{"LOTECE", "11:00"},
	{"LOTECE", "14:00"},
	{"LOOK", "09:00"},
	{"PT SP (Band)", "13:00"},
}

var (
	drawsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_draws_published_total",
		Help: "Total de extrações simuladas publicadas",
	})
	publishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_publish_errors_total",
		Help: "Falhas ao publicar no Kafka",
	})
)

// Gera um lote completo de sete prêmios com milhares aleatórias
func randomBatch(rng *rand.Rand, lottery, timeSlot string) events.DrawResultBatch {
	entries := make([]events.DrawEntry, 0, 7)
	for pos := 1; pos <= 7; pos++ {
		entries = append(entries, events.DrawEntry{
			Position: pos,
			Number:   fmt.Sprintf("%04d", rng.Intn(10000)),
		})
	}
	return events.DrawResultBatch{
		Lottery:    lottery,
		TimeSlot:   timeSlot,
		Entries:    entries,
		ObservedAt: time.Now(),
		Source:     "draw-simulator",
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDrawResults)
	defer writer.Close()

	prometheus.MustRegister(drawsPublished, publishErrors)
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	interval := cfg.SimulatorInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	log.Info("draw-simulator started",
		zap.Duration("interval", interval),
		zap.Int("lotteries", len(drawCatalog)),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("draw-simulator stopped")
			return
		case <-ticker.C:
			entry := drawCatalog[rng.Intn(len(drawCatalog))]
			batch := randomBatch(rng, entry.lottery, entry.timeSlot)

			payload, err := json.Marshal(batch)
			if err != nil {
				log.Error("marshal batch", zap.Error(err))
				continue
			}
			key := batch.Lottery + ":" + batch.TimeSlot
			if err := kafka.WriteJSON(ctx, writer, key, payload); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn("publish failed", zap.String("key", key), zap.Error(err))
				publishErrors.Inc()
				continue
			}
			drawsPublished.Inc()
			log.Info("draw published",
				zap.String("lottery", batch.Lottery),
				zap.String("time_slot", batch.TimeSlot),
				zap.String("first_prize", batch.Entries[0].Number),
			)
		}
	}
}
