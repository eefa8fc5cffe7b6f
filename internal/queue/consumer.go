package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// LedgerConsumer appends every event from the queue to a ledger file, one
// line per event.
type LedgerConsumer struct {
    URL     string
    Queue   string
    LogPath string
}

// Run connects to the broker and consumes until ctx is cancelled.  Broker
// failures trigger a reconnect with exponential backoff capped at 30s.
func (lc *LedgerConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(lc.URL)
        if err != nil {
            log.Printf("ledger-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = lc.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("ledger-consumer: consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (lc *LedgerConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("ledger-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(lc.Queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(lc.Queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := lc.handle(d.Body); err != nil {
                log.Printf("ledger-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false) // do not requeue poison messages
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (lc *LedgerConsumer) handle(body []byte) error {
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(filepath.Dir(lc.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir: %w", err)
    }
    f, err := os.OpenFile(lc.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open ledger: %w", err)
    }
    defer f.Close()
    return WriteLedgerLine(f, ev)
}

// WriteLedgerLine renders ev as a single human-readable ledger line.
func WriteLedgerLine(w io.Writer, ev Event) error {
    line := fmt.Sprintf("[%s] %s | event_id=%s | user_id=%d | subject_id=%d | amount=%.2f",
        ev.OccurredAt, ev.Type, ev.ID, ev.UserID, ev.SubjectID, ev.Amount)
    if ev.Status != "" {
        line += " | status=" + ev.Status
    }
    if ev.Detail != "" {
        line += fmt.Sprintf(" | detail=%q", ev.Detail)
    }
    _, err := io.WriteString(w, line+"\n")
    return err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
