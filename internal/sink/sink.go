package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vitor-labes/category-scraper/internal/domain"
	"github.com/vitor-labes/category-scraper/internal/export"
	"github.com/vitor-labes/category-scraper/internal/metrics"
)

// Sink consumes the final product list exactly once.
type Sink interface {
	Emit(ctx context.Context, products []domain.Product) error
}

type Kind string

const (
	KindJSON  Kind = "json"
	KindStore Kind = "store"
	KindQueue Kind = "queue"
	KindCSV   Kind = "csv"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindJSON, KindStore, KindQueue, KindCSV:
		return k, nil
	}
	return "", fmt.Errorf("saída desconhecida %q (use json, store, queue ou csv)", s)
}

// JSON pretty-prints the list as an array. No other side effect.
type JSON struct {
	w io.Writer
}

func NewJSON(w io.Writer) *JSON {
	return &JSON{w: w}
}

func (s *JSON) Emit(ctx context.Context, products []domain.Product) error {
	if products == nil {
		products = []domain.Product{}
	}
	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return fmt.Errorf("erro ao serializar produtos: %w", err)
	}
	if _, err := fmt.Fprintln(s.w, string(data)); err != nil {
		return fmt.Errorf("erro ao escrever JSON: %w", err)
	}
	metrics.ProductsEmitted.WithLabelValues(string(KindJSON), "success").Add(float64(len(products)))
	return nil
}

type Creator interface {
	Create(ctx context.Context, product domain.Product) error
}

// Store inserts records one by one in order. There is no transaction, a
// failure leaves the earlier rows in place.
type Store struct {
	repo Creator
}

func NewStore(repo Creator) *Store {
	return &Store{repo: repo}
}

func (s *Store) Emit(ctx context.Context, products []domain.Product) error {
	for i, product := range products {
		if err := s.repo.Create(ctx, product); err != nil {
			metrics.DatabaseInserts.WithLabelValues("error").Inc()
			metrics.ProductsEmitted.WithLabelValues(string(KindStore), "error").Inc()
			return fmt.Errorf("produto %d de %d: %w", i+1, len(products), err)
		}
		metrics.DatabaseInserts.WithLabelValues("success").Inc()
		metrics.ProductsEmitted.WithLabelValues(string(KindStore), "success").Inc()
	}

	slog.Info("produtos armazenados com sucesso", "total", len(products))
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, product domain.Product) error
}

// Queue publishes each record for cmd/consumer to store later.
type Queue struct {
	publisher Publisher
}

func NewQueue(publisher Publisher) *Queue {
	return &Queue{publisher: publisher}
}

func (s *Queue) Emit(ctx context.Context, products []domain.Product) error {
	for i, product := range products {
		if err := s.publisher.Publish(ctx, product); err != nil {
			metrics.ProductsEmitted.WithLabelValues(string(KindQueue), "error").Inc()
			return fmt.Errorf("produto %d de %d: %w", i+1, len(products), err)
		}
		metrics.ProductsEmitted.WithLabelValues(string(KindQueue), "success").Inc()
	}

	slog.Info("publicação finalizada", "total_published", len(products))
	return nil
}

type CSV struct {
	dir string
	now func() time.Time
}

func NewCSV(dir string) *CSV {
	return &CSV{dir: dir, now: time.Now}
}

func (s *CSV) Emit(ctx context.Context, products []domain.Product) error {
	if _, err := export.ToCSV(s.dir, products, s.now()); err != nil {
		metrics.ProductsEmitted.WithLabelValues(string(KindCSV), "error").Add(float64(len(products)))
		return err
	}
	metrics.ProductsEmitted.WithLabelValues(string(KindCSV), "success").Add(float64(len(products)))
	return nil
}
