package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitor-labes/category-scraper/internal/domain"
)

type Publisher struct {
	*channel
}

func NewPublisher(url, queueName string) (*Publisher, error) {
	c, err := dial(url, queueName)
	if err != nil {
		return nil, err
	}

	slog.Info("publisher conectado ao RabbitMQ",
		"queue", queueName,
	)

	return &Publisher{channel: c}, nil
}

func (p *Publisher) Publish(ctx context.Context, product domain.Product) error {
	msg, err := encode(product)
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		msg,
	)
	if err != nil {
		return fmt.Errorf("erro ao publicar mensagem: %w", err)
	}

	slog.Debug("produto publicado",
		"title", product.Title,
		"price", product.Price,
	)

	return nil
}
