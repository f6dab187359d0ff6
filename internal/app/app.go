package app

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"bloomshop/internal/config"
	"bloomshop/internal/entity"
	"bloomshop/internal/gateway"
	"bloomshop/internal/notify"
	"bloomshop/internal/repository"
	"bloomshop/internal/service"
	httpt "bloomshop/internal/transport/http"
	kafkat "bloomshop/internal/transport/kafka"
	"bloomshop/pkg/cache"
	"bloomshop/pkg/kafka"
	"bloomshop/pkg/kafka/dlq"
	"bloomshop/pkg/logger"
	"bloomshop/pkg/metric"
	"bloomshop/pkg/storage/postgres"
	"bloomshop/pkg/storage/postgres/transaction"
	"bloomshop/pkg/telegram"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	eg, ctx := errgroup.WithContext(ctx)

	metrics := initMetrics(eg, &cfg.Metrics, log)

	db, dbErr := initDatabase(&cfg.Postgres, log)
	if dbErr != nil {
		return dbErr
	}
	defer closeDB(db)

	txManager, txErr := initTransactionManager(
		db,
		log,
		metrics,
	)
	if txErr != nil {
		return txErr
	}

	orderCache, cacheErr := initCache(&cfg.Cache, log, metrics)
	if cacheErr != nil {
		return cacheErr
	}
	defer stopCache(orderCache)

	sender, senderErr := initTelegramClient(&cfg.Telegram)
	if senderErr != nil {
		return senderErr
	}

	deadLetterQueue, dlqErr := initDeadLetterQueue(&cfg.DLQ, log, metrics)
	if dlqErr != nil {
		return dlqErr
	}
	defer closeDLQ(deadLetterQueue, log)

	notifier := notify.NewNotifier(
		sender,
		deadLetterQueue,
		metrics.Notify(),
		log.With("component", "notifier"),
	)

	orderService := initOrderService(
		cfg,
		db,
		txManager,
		orderCache,
		notifier,
		metrics,
		log,
	)

	if serverErr := initHTTPServer(ctx, eg, cfg, orderService, log, metrics); serverErr != nil {
		return serverErr
	}

	if kafkaErr := initRedeliveryConsumer(
		ctx, eg, cfg, deadLetterQueue, sender, log, metrics,
	); kafkaErr != nil {
		return kafkaErr
	}

	return waitForShutdown(eg)
}

func initMetrics(
	eg *errgroup.Group,
	cfg *config.Metrics,
	log logger.Logger,
) metric.Factory {
	metrics := metric.NewFactory()

	hostPort := net.JoinHostPort(cfg.Host, cfg.Port)
	metricsServer := &http.Server{
		Addr:              hostPort,
		Handler:           metrics.Handler(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	eg.Go(func() error {
		log.Infow("starting metrics server", "port", cfg.Port)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("app.initMetrics: %w", err)
		}
		return nil
	})

	return metrics
}

func initDatabase(cfg *config.Postgres, log logger.Logger) (*postgres.Postgres, error) {
	db, err := postgres.NewPostgres(
		cfg,
		log.With("component", "database"),
		postgres.MaxPoolSize(cfg.PoolMax),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDatabase: %w", err)
	}
	return db, nil
}

func closeDB(db *postgres.Postgres) {
	if db != nil {
		db.Close()
	}
}

func initTransactionManager(
	db *postgres.Postgres,
	log logger.Logger,
	metrics metric.Factory,
) (transaction.Manager, error) {
	txManager, err := transaction.NewManager(
		db,
		log.With("component", "transaction manager"),
		metrics.Transaction(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initTransactionManager: %w", err)
	}
	return txManager, nil
}

func initCache(
	cfg *config.Cache,
	log logger.Logger,
	metrics metric.Factory,
) (cache.Cache[uuid.UUID, *entity.Order], error) {
	orderCache, err := cache.NewLRUCache[uuid.UUID, *entity.Order](
		cfg.Capacity,
		log.With("component", "cache"),
		metrics.Cache(),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initCache: %w", err)
	}
	orderCache.StartCleanup(cfg.CleanupInterval)
	return orderCache, nil
}

func stopCache(orderCache cache.Cache[uuid.UUID, *entity.Order]) {
	if orderCache != nil {
		orderCache.StopCleanup()
	}
}

func initTelegramClient(cfg *config.Telegram) (*telegram.Client, error) {
	client, err := telegram.NewClient(
		cfg.Token,
		cfg.ChatID,
		telegram.APIBaseURL(cfg.APIBaseURL),
		telegram.ThreadID(cfg.ThreadID),
		telegram.RequestTimeout(cfg.RequestTimeout),
		telegram.RetryDelay(cfg.RetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initTelegramClient: %w", err)
	}
	return client, nil
}

func initDeadLetterQueue(
	cfg *config.DLQ,
	log logger.Logger,
	metrics metric.Factory,
) (*dlq.DLQ, error) {
	deadLetterQueue, err := dlq.NewDLQ(
		*cfg,
		log.With("component", "dlq"),
		metrics.DLQ(),
		dlq.MaxAttemptsCount(cfg.MaxRetryCount),
		dlq.BaseRetryDelay(cfg.RetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("app.initDeadLetterQueue: %w", err)
	}
	return deadLetterQueue, nil
}

func closeDLQ(deadLetterQueue *dlq.DLQ, log logger.Logger) {
	if deadLetterQueue == nil {
		return
	}
	if err := deadLetterQueue.Close(); err != nil {
		log.Errorw("failed to close dlq writer", "error", err)
	}
}

func initOrderService(
	cfg *config.Config,
	db *postgres.Postgres,
	txManager transaction.Manager,
	orderCache cache.Cache[uuid.UUID, *entity.Order],
	notifier *notify.Notifier,
	metrics metric.Factory,
	log logger.Logger,
) *service.OrderService {
	orderRepo := repository.NewOrderRepository(db)
	zoneRepo := repository.NewZoneRepository(db)

	paymentGateway := gateway.NewHTTPGateway(
		&cfg.Gateway,
		metrics.Gateway(),
		log.With("component", "payment gateway"),
	)

	orderService := service.NewOrderService(
		orderRepo,
		zoneRepo,
		paymentGateway,
		notifier,
		txManager,
		log.With("component", "order service"),
		orderCache,
		cfg.Cache.TTL,
		cfg.App.Currency,
	)

	return orderService
}

func initHTTPServer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	orderService *service.OrderService,
	log logger.Logger,
	metrics metric.Factory,
) error {
	httpServer, err := httpt.NewHTTPServer(
		httpt.NewOrderHandler(orderService, log, metrics.HTTP(), cfg.Gateway.Secret),
		&cfg.HTTP,
		log.With("component", "http server"),
	)
	if err != nil {
		return fmt.Errorf("app.initHTTPServer: %w", err)
	}

	eg.Go(func() error {
		return httpServer.Start(ctx)
	})
	return nil
}

func initRedeliveryConsumer(
	ctx context.Context,
	eg *errgroup.Group,
	cfg *config.Config,
	deadLetterQueue *dlq.DLQ,
	sender notify.MessageSender,
	log logger.Logger,
	metrics metric.Factory,
) error {
	kafkaReader, err := kafka.NewKafkaReader(cfg.Kafka, log.With("component", "kafka reader"))
	if err != nil {
		return fmt.Errorf("app.initRedeliveryConsumer: kafka reader creation: %w", err)
	}

	consumer := kafkat.NewRedeliveryConsumer(
		kafkaReader,
		deadLetterQueue,
		sender,
		metrics.Notify(),
		metrics.Kafka(),
		cfg.DLQ.MaxRetryCount,
		log.With("component", "redelivery consumer"),
	)
	eg.Go(func() error {
		return consumer.Start(ctx)
	})

	return nil
}

func waitForShutdown(eg *errgroup.Group) error {
	if err := eg.Wait(); err != nil && !isShutdownSignal(err) {
		return fmt.Errorf("app.waitForShutdown: application failed: %w", err)
	}
	return nil
}

func isShutdownSignal(err error) bool {
	return err != nil && err.Error() == "shutdown signal"
}
