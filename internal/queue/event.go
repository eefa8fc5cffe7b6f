// Package queue defines the domain events exchanged over RabbitMQ and the
// publisher/consumer pair that moves them.
package queue

import (
    "time"

    "github.com/google/uuid"
)

// Event types published by the ticketing workflows.
const (
    TicketPurchased       = "ticket.purchased"
    SubscriptionPurchased = "subscription.purchased"
    SubscriptionDrawn     = "subscription.ticket_drawn"
    RefundDecided         = "refund.decided"
    SeniorDecided         = "senior.decided"
)

// Event is published after a workflow commits.  Subject is the id of the
// ticket, subscription or request the event is about.
type Event struct {
    ID         string  `json:"id"`
    Type       string  `json:"type"`
    UserID     uint64  `json:"user_id"`
    SubjectID  uint64  `json:"subject_id"`
    Amount     float64 `json:"amount"`
    Status     string  `json:"status,omitempty"`
    Detail     string  `json:"detail,omitempty"`
    OccurredAt string  `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id and the current UTC time.
func NewEvent(typ string, userID, subjectID uint64) Event {
    return Event{
        ID:         uuid.NewString(),
        Type:       typ,
        UserID:     userID,
        SubjectID:  subjectID,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
}
