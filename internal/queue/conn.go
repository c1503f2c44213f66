package queue

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vitor-labes/category-scraper/internal/domain"
)

type channel struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
}

// dial opens a connection and declares a durable queue.
func dial(url, queueName string) (*channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("falha ao declarar fila: %w", err)
	}

	return &channel{conn: conn, ch: ch, queueName: queueName}, nil
}

func (c *channel) Close() error {
	if c.ch != nil {
		if err := c.ch.Close(); err != nil {
			return err
		}
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func encode(product domain.Product) (amqp.Publishing, error) {
	body, err := json.Marshal(product)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("erro ao serializar produto: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    time.Now(),
	}, nil
}

// decode rejects bodies that do not carry a valid product.
func decode(body []byte) (domain.Product, error) {
	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return domain.Product{}, fmt.Errorf("erro ao deserializar mensagem: %w", err)
	}
	if !product.Valid() {
		return domain.Product{}, fmt.Errorf("produto inválido na mensagem: %q", product.Title)
	}
	return product, nil
}
