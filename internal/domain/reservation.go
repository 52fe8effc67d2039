package domain

import "time"

// Reservation is the pre-image of a mint: a claimed slot that does not yet
// have a token. It is not persisted on its own; a reservation that fails to
// mint becomes a PendingMint instead.
type Reservation struct {
	EventID    string    `json:"event_id"`
	Buyer      string    `json:"buyer"`
	Ordinal    uint32    `json:"ordinal"`
	ReservedAt time.Time `json:"reserved_at"`
}
