package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schoolhealth/consult-api/internal/config"
	"github.com/schoolhealth/consult-api/internal/email"
	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository/postgres"
	"github.com/schoolhealth/consult-api/pkg/logger"
	"github.com/schoolhealth/consult-api/pkg/messaging"
	redisbroker "github.com/schoolhealth/consult-api/pkg/messaging/redis"
	"github.com/schoolhealth/consult-api/pkg/metrics"
	"github.com/schoolhealth/consult-api/pkg/worker"
)

const (
	cleanupInterval = time.Hour
	digestInterval  = 15 * time.Minute
	metricsAddr     = ":9091"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("consult", "worker")
	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
	}, log, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go processor.Start(ctx)

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		retention := time.Duration(cfg.Outbox.RetentionDays) * 24 * time.Hour
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				processor.CleanupProcessed(ctx, retention)
			}
		}
	}()

	if cfg.Outbox.DigestRecipient != "" {
		mailer := email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		go runDigest(ctx, log, broker, mailer, cfg.Outbox.DigestRecipient)
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.Error(err, "metrics server stopped")
		}
	}()

	log.Info("worker started")
	<-ctx.Done()
	log.Info("worker stopped")
}

// runDigest batches published notices and mails them to the coordinator
// on a slow cadence, so operators see what students were told.
func runDigest(ctx context.Context, log *logger.Logger, broker messaging.Broker, mailer email.Service, recipient string) {
	messages, err := broker.Subscribe(ctx, messaging.TopicNotices)
	if err != nil {
		log.Error(err, "failed to subscribe for digest")
		return
	}

	ticker := time.NewTicker(digestInterval)
	defer ticker.Stop()

	var pending []*model.Notice
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-messages:
			if !ok {
				return
			}
			var msg struct {
				Payload *model.Notice `json:"payload"`
			}
			if err := json.Unmarshal(raw, &msg); err != nil || msg.Payload == nil {
				log.Warn("skipping undecodable notice message")
				continue
			}
			pending = append(pending, msg.Payload)
		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			if err := mailer.SendNoticeDigest(ctx, recipient, pending); err != nil {
				log.Error(err, "failed to send notice digest")
				continue
			}
			pending = nil
		}
	}
}
