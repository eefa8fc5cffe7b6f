package queue

import (
    "bytes"
    "strings"
    "testing"

    "github.com/stretchr/testify/require"
)

func TestNewEventStampsIDAndTime(t *testing.T) {
    ev := NewEvent(TicketPurchased, 7, 42)
    require.NotEmpty(t, ev.ID)
    require.NotEmpty(t, ev.OccurredAt)
    require.Equal(t, uint64(7), ev.UserID)
    require.Equal(t, uint64(42), ev.SubjectID)

    other := NewEvent(TicketPurchased, 7, 42)
    require.NotEqual(t, ev.ID, other.ID)
}

func TestWriteLedgerLine(t *testing.T) {
    ev := Event{ID: "abc", Type: RefundDecided, UserID: 3, SubjectID: 9, Amount: 20, Status: "accepted", OccurredAt: "2026-01-02T03:04:05Z"}
    var buf bytes.Buffer
    require.NoError(t, WriteLedgerLine(&buf, ev))

    line := buf.String()
    require.True(t, strings.HasSuffix(line, "\n"))
    require.Contains(t, line, "refund.decided")
    require.Contains(t, line, "amount=20.00")
    require.Contains(t, line, "status=accepted")
    require.NotContains(t, line, "detail=")
}
