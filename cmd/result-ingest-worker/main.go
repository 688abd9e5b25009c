package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	ingestcache "github.com/bichoplay/settlement-engine/internal/ingest/cache"
	"github.com/bichoplay/settlement-engine/internal/ingest/consumer"
	"github.com/bichoplay/settlement-engine/internal/results/repo"
	sharedcache "github.com/bichoplay/settlement-engine/internal/shared/cache"
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

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicDrawResults, "result-ingest")
	defer reader.Close()

	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDrawResultsDLQ)
	defer dlq.Close()

	consumed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batches_consumed_total", Help: "lotes de resultado consumidos do Kafka",
	})
	persisted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batches_persisted_total", Help: "lotes persistidos no Postgres",
	})
	cached := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_batches_cached_total", Help: "lotes gravados no cache Redis",
	})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_errors_total", Help: "erros por fase",
	}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, cached, errorsBy)

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	proc := &consumer.Processor{
		Log:    log,
		Reader: reader,
		Repo:   repo.NewBatchRepo(pg),
		Cache:  ingestcache.NewRedisCache(redisClient, cfg.BatchCacheTTL),
		DLQ:    dlq,

		OnConsumed: func() { consumed.Inc() },
		OnPersist:  func() { persisted.Inc() },
		OnCached:   func() { cached.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	log.Info("result-ingest-worker started",
		zap.String("topic", cfg.TopicDrawResults),
		zap.String("metrics_port", cfg.MetricsPort),
	)

	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped", zap.Error(err))
	}
	log.Info("result-ingest-worker stopped")
}
