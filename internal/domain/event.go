package domain

import "time"

// Field length limits match the on-ledger account layout.
const (
	MaxEventNameLen   = 64
	MaxVenueLen       = 64
	MaxDescriptionLen = 256

	MaxRoyaltyBps = 10000
)

// Event is the supply-side record for a ticketed event. TicketsSold is
// mutated only through the registry's atomic increment; everything else is
// immutable after creation.
type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Organizer    string    `json:"organizer"`
	Venue        string    `json:"venue,omitempty"`
	Description  string    `json:"description,omitempty"`
	StartsAt     time.Time `json:"starts_at"`
	TotalTickets uint32    `json:"total_tickets"`
	TicketsSold  uint32    `json:"tickets_sold"`
	TicketPrice  int64     `json:"ticket_price"`
	RoyaltyBps   int       `json:"royalty_bps"`
	CreatedAt    time.Time `json:"created_at"`
}

func (e *Event) SoldOut() bool {
	return e.TicketsSold >= e.TotalTickets
}

func (e *Event) Remaining() uint32 {
	if e.SoldOut() {
		return 0
	}
	return e.TotalTickets - e.TicketsSold
}

// RoyaltyFor splits a resale price into the organizer's cut and the seller's
// proceeds. Integer division, truncated; the remainder goes to the seller.
func (e *Event) RoyaltyFor(price int64) (royalty, proceeds int64) {
	royalty = price * int64(e.RoyaltyBps) / MaxRoyaltyBps
	return royalty, price - royalty
}
