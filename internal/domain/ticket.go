package domain

import "time"

// Ticket is the ownership token minted for a claimed slot. EventID and
// Ordinal never change for the life of the token; Owner and Listing change
// only through the resale market's atomic transfer.
type Ticket struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	Owner          string    `json:"owner"`
	Ordinal        uint32    `json:"ordinal"`
	MintedAt       time.Time `json:"minted_at"`
	LastTransferAt time.Time `json:"last_transfer_at"`
	Listing        *Listing  `json:"listing,omitempty"`
}

// Listing is the transient for-sale state of a ticket. Cleared on transfer.
type Listing struct {
	Seller   string    `json:"seller"`
	AskPrice int64     `json:"ask_price"`
	ListedAt time.Time `json:"listed_at"`
}

func (t *Ticket) IsListed() bool {
	return t.Listing != nil
}
