package model

import "time"

// Ride statuses.
const (
    RideUpcoming  = "upcoming"
    RideCompleted = "completed"
)

// Transaction purchase types.
const (
    PurchaseTicket       = "ticket"
    PurchaseSubscription = "subscription"
    PurchaseSubTicket    = "SubTicket"
)

// Subscription types.
const (
    SubAnnual    = "annual"
    SubQuarterly = "quarterly"
    SubMonthly   = "monthly"
)

// Ticket mirrors the `tickets` table.  SubID is set when the ticket was
// drawn from a subscription.
type Ticket struct {
    ID          uint64    `json:"id"`          // tickets.id
    Origin      string    `json:"origin"`      // tickets.origin
    Destination string    `json:"destination"` // tickets.destination
    TripDate    time.Time `json:"trip_date"`   // tickets.trip_date
    UserID      uint64    `json:"user_id"`     // tickets.user_id
    SubID       *uint64   `json:"sub_id"`      // tickets.sub_id (nullable)
}

// Ride is a scheduled trip derived from a ticket.
type Ride struct {
    ID          uint64    `json:"id"`
    Status      string    `json:"status"`
    Origin      string    `json:"origin"`
    Destination string    `json:"destination"`
    UserID      uint64    `json:"user_id"`
    TicketID    uint64    `json:"ticket_id"`
    TripDate    time.Time `json:"trip_date"`
}

// Transaction is a ledger entry.  PurchasedID references a ticket or a
// subscription depending on PurchaseType.
type Transaction struct {
    ID           uint64  `json:"id"`
    Amount       float64 `json:"amount"`
    UserID       uint64  `json:"user_id"`
    PurchasedID  uint64  `json:"purchased_id"`
    PurchaseType string  `json:"purchase_type"`
}

// Subscription mirrors the `subscription` table.  NoOfTickets is the
// remaining prepaid ticket balance.
type Subscription struct {
    ID          uint64 `json:"id"`
    SubType     string `json:"sub_type"`
    ZoneID      uint64 `json:"zone_id"`
    UserID      uint64 `json:"user_id"`
    NoOfTickets int    `json:"no_of_tickets"`
}
