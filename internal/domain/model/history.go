package model

import "time"

// StatusChange is a single entry of the order audit trail.
type StatusChange struct {
	Status    OrderStatus `json:"status"`
	At        time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

// StatusHistory is the append-only audit log of an order. Entries are never
// rewritten or removed; mutation goes through Append only.
type StatusHistory []StatusChange

// Append returns history extended with a new entry.
func (h StatusHistory) Append(status OrderStatus, at time.Time, note string) StatusHistory {
	out := make(StatusHistory, len(h), len(h)+1)
	copy(out, h)
	return append(out, StatusChange{Status: status, At: at, Note: note})
}

// Latest returns the most recent entry or nil for an empty log.
func (h StatusHistory) Latest() *StatusChange {
	if len(h) == 0 {
		return nil
	}
	return &h[len(h)-1]
}

// Contains reports whether the order has ever been in the given status.
func (h StatusHistory) Contains(status OrderStatus) bool {
	for _, c := range h {
		if c.Status == status {
			return true
		}
	}
	return false
}
