package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/vitor-labes/category-scraper/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS products (
		id          SERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		price       NUMERIC(12, 2) NOT NULL,
		image_url   TEXT NOT NULL,
		product_url TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(databaseURL string) (*ProductRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao conectar no banco: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	slog.Info("conectado ao PostgreSQL")

	return &ProductRepository{db: db}, nil
}

// EnsureSchema creates the products table when it does not exist yet.
func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("erro ao criar tabela products: %w", err)
	}
	return nil
}

// Create inserts one row. There is no uniqueness check against existing rows.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) error {
	query := `
		INSERT INTO products (title, price, image_url, product_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int
	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Title,
		product.Price,
		product.ImageURL,
		product.ProductURL,
	).Scan(&id)

	if err != nil {
		return fmt.Errorf("erro ao inserir produto: %w", err)
	}

	slog.Info("produto salvo no banco",
		"id", id,
		"title", product.Title,
		"price", product.Price,
	)

	return nil
}

func (r *ProductRepository) Close() error {
	return r.db.Close()
}
