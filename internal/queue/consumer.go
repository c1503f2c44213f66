package queue

import (
	"context"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vitor-labes/category-scraper/internal/domain"
)

type MessageHandler func(context.Context, domain.Product) error

type Consumer struct {
	*channel
	handler MessageHandler
}

func NewConsumer(url, queueName string, handler MessageHandler) (*Consumer, error) {
	c, err := dial(url, queueName)
	if err != nil {
		return nil, err
	}

	// Process once
	if err := c.ch.Qos(1, 0, false); err != nil {
		c.Close()
		return nil, fmt.Errorf("falha ao configurar QoS: %w", err)
	}

	slog.Info("consumer conectado ao RabbitMQ",
		"queue", queueName,
	)

	return &Consumer{channel: c, handler: handler}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.ch.Consume(
		c.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumer: %w", err)
	}

	slog.Info("aguardando mensagens...", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.Info("consumer encerrado pelo contexto")
			return ctx.Err()

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal de mensagens fechado")
			}
			c.deliver(ctx, msg)
		}
	}
}

// deliver acks handled messages, drops undecodable ones and requeues
// handler failures.
func (c *Consumer) deliver(ctx context.Context, msg amqp.Delivery) {
	product, err := decode(msg.Body)
	if err != nil {
		slog.Error("mensagem descartada", "error", err, "body", string(msg.Body))
		msg.Nack(false, false)
		return
	}

	slog.Info("processando produto",
		"title", product.Title,
		"price", product.Price,
	)

	if err := c.handler(ctx, product); err != nil {
		slog.Error("erro ao processar mensagem",
			"error", err,
			"title", product.Title,
		)
		// Requeue
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
