package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bichoplay/settlement-engine/internal/ingest/pubsub"
	"github.com/bichoplay/settlement-engine/internal/matching"
	"github.com/bichoplay/settlement-engine/internal/notify"
	"github.com/bichoplay/settlement-engine/internal/results/repo"
	"github.com/bichoplay/settlement-engine/internal/rules"
	"github.com/bichoplay/settlement-engine/internal/settlement"
	setrepo "github.com/bichoplay/settlement-engine/internal/settlement/repo"
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

	// Conexões: Postgres para apostas/resultados/liquidações, Redis para broadcast
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

	// Tabela de odds: arquivo YAML da banca, ou a tabela padrão
	odds := rules.DefaultOddsTable()
	if cfg.OddsTablePath != "" {
		odds, err = rules.LoadOddsTable(cfg.OddsTablePath)
		if err != nil {
			log.Fatal("load odds table", zap.String("path", cfg.OddsTablePath), zap.Error(err))
		}
		log.Info("odds table loaded", zap.String("path", cfg.OddsTablePath))
	}

	// Producer Kafka para eventos wager_settled
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWagerSettled)
	defer settledWriter.Close()

	fanout := &notify.Fanout{
		Log:       log,
		Settled:   settledWriter,
		Broadcast: pubsub.NewRedisBroadcaster(redisClient),
		Channel:   cfg.RedisPubSubChannel,
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			fanout.Telegram = tg
			log.Info("telegram notifier enabled")
		}
	}

	// Métricas Prometheus do ciclo de liquidação
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_wagers_settled_total", Help: "apostas liquidadas por desfecho",
	}, []string{"outcome"})
	pending := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_wagers_pending_total", Help: "apostas sem resultado no ciclo",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_wagers_skipped_total", Help: "apostas já liquidadas (idempotência)",
	})
	flagged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "settlement_wagers_flagged_total", Help: "apostas enviadas para revisão manual",
	})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_errors_total", Help: "erros por estágio",
	}, []string{"stage"})
	prometheus.MustRegister(settled, pending, skipped, flagged, errorsBy)

	matchCfg := matching.Config{
		SlotToleranceMinutes: cfg.SlotToleranceMin,
		ResultGrace:          cfg.ResultGrace,
		FallbackLookback:     cfg.FallbackLookback,
		FallbackGrace:        cfg.FallbackGrace,
	}

	eng := &settlement.Engine{
		Log:           log,
		Wagers:        setrepo.NewWagerRepo(pg),
		Batches:       repo.NewBatchRepo(pg),
		Settlements:   setrepo.NewSettlementRepo(pg),
		Notifier:      fanout,
		Odds:          odds,
		Match:         matchCfg,
		BatchLookback: cfg.BatchLookback,

		OnSettled: func(outcome string) { settled.WithLabelValues(outcome).Inc() },
		OnPending: func() { pending.Inc() },
		OnSkipped: func() { skipped.Inc() },
		OnFlagged: func() { flagged.Inc() },
		OnError:   func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas Prometheus e healthcheck
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Ciclo periódico de liquidação
	c := cron.New()
	_, err = c.AddFunc(cfg.SettleCron, func() {
		if err := eng.RunCycle(ctx); err != nil && ctx.Err() == nil {
			log.Error("settlement cycle failed", zap.Error(err))
			errorsBy.WithLabelValues("cycle").Inc()
		}
	})
	if err != nil {
		log.Fatal("bad cron spec", zap.String("spec", cfg.SettleCron), zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	log.Info("settlement-worker started",
		zap.String("schedule", cfg.SettleCron),
		zap.String("metrics_port", cfg.MetricsPort),
	)

	<-ctx.Done()
	log.Info("settlement-worker stopped")
}
