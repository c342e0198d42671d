package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends ChatAnsweredEvents to a durable queue on the default
// exchange. Each call opens its own connection, so a broker outage only
// costs the event and never the chat answer.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{url: url, queue: queue}
}

// Publish declares the queue (idempotent) and publishes ev as a persistent
// JSON message. Errors are logged and returned.
func (p *Publisher) Publish(ctx context.Context, ev ChatAnsweredEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("events: dial failed: %v", err)
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("events: channel open failed: %v", err)
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		log.Printf("events: queue declare failed: %v", err)
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		log.Printf("events: publish failed: %v", err)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
