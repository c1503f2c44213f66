package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vitor-labes/category-scraper/internal/browser"
	"github.com/vitor-labes/category-scraper/internal/config"
	"github.com/vitor-labes/category-scraper/internal/metrics"
	"github.com/vitor-labes/category-scraper/internal/queue"
	"github.com/vitor-labes/category-scraper/internal/repository"
	"github.com/vitor-labes/category-scraper/internal/scraper"
	"github.com/vitor-labes/category-scraper/internal/sink"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Metrics
	if cfg.MetricsAddr != "" {
		go func() {
			slog.Debug("iniciando servidor de métricas", "addr", cfg.MetricsAddr)
			if err := metrics.StartMetricsServer(cfg.MetricsAddr); err != nil {
				slog.Warn("servidor de métricas indisponível", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:     cfg,
		stdout:  os.Stdout,
		connect: connectSink,
		scraper: scraper.NewScrollCollector(cfg, func(ctx context.Context) (scraper.Session, error) {
			session, err := browser.New(ctx, cfg)
			if err != nil {
				return nil, err
			}
			return session, nil
		}),
	}

	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error scraping products: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// connectSink opens the backend a persisting sink needs. The returned closer
// is never nil.
func connectSink(ctx context.Context, cfg *config.Config, kind sink.Kind) (sink.Sink, func() error, error) {
	noop := func() error { return nil }

	switch kind {
	case sink.KindStore:
		repo, err := repository.NewProductRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, noop, err
		}
		return sink.NewStore(repo), repo.Close, nil

	case sink.KindQueue:
		publisher, err := queue.NewPublisher(cfg.RabbitMQURL, cfg.QueueName)
		if err != nil {
			return nil, noop, err
		}
		return sink.NewQueue(publisher), publisher.Close, nil

	case sink.KindCSV:
		return sink.NewCSV(cfg.ExportDir), noop, nil
	}

	return nil, noop, fmt.Errorf("saída desconhecida %q", kind)
}
