package queue

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to a durable queue on the default exchange.  It
// dials per publish, which keeps it free of reconnect state; publish
// volume is one message per purchase or decision.
type Publisher struct {
    url   string
    queue string
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url, queueName string) *Publisher {
    return &Publisher{url: url, queue: queueName}
}

// Publish marshals ev and publishes it as a persistent message.  Errors
// are logged and returned so callers can decide to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish %s failed: %v", ev.Type, err)
        return err
    }
    return nil
}
