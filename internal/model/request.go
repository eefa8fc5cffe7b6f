package model

// Request statuses shared by senior and refund requests.
const (
    RequestPending  = "pending"
    RequestAccepted = "accepted"
    RequestRejected = "rejected"
)

// SeniorRequest asks an admin to promote a user to the senior role.
type SeniorRequest struct {
    ID         uint64 `json:"id"`
    UserID     uint64 `json:"user_id"`
    NationalID string `json:"national_id"`
    Status     string `json:"status"`
}

// RefundRequest asks an admin to refund a ticket.  RefundAmount is the
// money returned for a paid ticket, or 1 for a subscription ticket (one
// ticket credited back to the balance).
type RefundRequest struct {
    ID           uint64  `json:"id"`
    TicketID     uint64  `json:"ticket_id"`
    UserID       uint64  `json:"user_id"`
    Status       string  `json:"status"`
    RefundAmount float64 `json:"refund_amount"`
}
