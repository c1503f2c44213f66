package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitor-labes/category-scraper/internal/config"
	"github.com/vitor-labes/category-scraper/internal/domain"
	"github.com/vitor-labes/category-scraper/internal/metrics"
	"github.com/vitor-labes/category-scraper/internal/queue"
	"github.com/vitor-labes/category-scraper/internal/repository"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Metrics
	metricsAddr := os.Getenv("CONSUMER_METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":2113"
	}
	go func() {
		slog.Info("iniciando servidor de métricas", "addr", metricsAddr)
		if err := metrics.StartMetricsServer(metricsAddr); err != nil {
			log.Fatalf("erro ao iniciar servidor de métricas: %v", err)
		}
	}()

	slog.Info("iniciando consumer",
		"queue", cfg.QueueName,
	)

	repo, err := repository.NewProductRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("erro ao conectar no banco: %v", err)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("erro ao preparar banco: %v", err)
	}

	consumer, err := queue.NewConsumer(cfg.RabbitMQURL, cfg.QueueName, storeHandler(repo))
	if err != nil {
		log.Fatalf("erro ao criar consumer: %v", err)
	}
	defer consumer.Close()

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("erro no consumer: %v", err)
	}

	slog.Info("consumer encerrado com sucesso")
}

type creator interface {
	Create(ctx context.Context, product domain.Product) error
}

// storeHandler persists one queued product and records timing and outcome.
func storeHandler(repo creator) queue.MessageHandler {
	return func(ctx context.Context, product domain.Product) error {
		startTime := time.Now()

		err := repo.Create(ctx, product)

		metrics.MessageProcessingDuration.Observe(time.Since(startTime).Seconds())

		if err != nil {
			metrics.MessagesProcessed.WithLabelValues("error").Inc()
			metrics.DatabaseInserts.WithLabelValues("error").Inc()
			return err
		}

		metrics.MessagesProcessed.WithLabelValues("success").Inc()
		metrics.DatabaseInserts.WithLabelValues("success").Inc()
		return nil
	}
}
