package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/intake"
	setrepo "github.com/bichoplay/settlement-engine/internal/settlement/repo"
	"github.com/bichoplay/settlement-engine/internal/shared/config"
	"github.com/bichoplay/settlement-engine/internal/shared/db"
	"github.com/bichoplay/settlement-engine/internal/shared/kafka"
	"github.com/bichoplay/settlement-engine/internal/shared/logger"
	"github.com/bichoplay/settlement-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicWagerPlaced, "wager-intake")
	defer reader.Close()

	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerPlacedDLQ)
	defer dlq.Close()

	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_events_consumed_total", Help: "eventos wager_placed consumidos",
	})
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_wagers_created_total", Help: "apostas pendentes criadas",
	})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_duplicates_total", Help: "reentregas ignoradas por external_id",
	})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_errors_total", Help: "erros por fase",
	}, []string{"stage"})
	prometheus.MustRegister(consumed, created, duplicates, errorsBy)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	proc := &intake.Processor{
		Log:    log,
		Reader: reader,
		Repo:   setrepo.NewWagerRepo(pg),
		DLQ:    dlq,

		OnConsumed:  func() { consumed.Inc() },
		OnCreated:   func() { created.Inc() },
		OnDuplicate: func() { duplicates.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	log.Info("wager-intake-worker started",
		zap.String("topic", cfg.TopicWagerPlaced),
		zap.String("metrics_port", cfg.MetricsPort),
	)

	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped", zap.Error(err))
	}
	log.Info("wager-intake-worker stopped")
}
