package kafka

import "time"

// Events published BY the Ledger Service

type EventCreatedEvent struct {
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Organizer    string    `json:"organizer"`
	TotalTickets uint32    `json:"total_tickets"`
	TicketPrice  int64     `json:"ticket_price"`
	RoyaltyBps   int       `json:"royalty_bps"`
	Timestamp    time.Time `json:"timestamp"`
}

type TicketMintedEvent struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	Owner     string    `json:"owner"`
	Ordinal   uint32    `json:"ordinal"`
	MintedAt  time.Time `json:"minted_at"`
	Timestamp time.Time `json:"timestamp"`
}

type PurchaseFailedEvent struct {
	EventID   string    `json:"event_id"`
	Buyer     string    `json:"buyer"`
	Ordinal   uint32    `json:"ordinal"` // the slot that was claimed before the mint failed
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type TicketListedEvent struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	Seller    string    `json:"seller"`
	AskPrice  int64     `json:"ask_price"`
	Timestamp time.Time `json:"timestamp"`
}

type ListingCancelledEvent struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	Seller    string    `json:"seller"`
	Timestamp time.Time `json:"timestamp"`
}

type TicketResoldEvent struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	Seller    string    `json:"seller"`
	Buyer     string    `json:"buyer"`
	Price     int64     `json:"price"`
	Royalty   int64     `json:"royalty"`
	Proceeds  int64     `json:"proceeds"`
	Timestamp time.Time `json:"timestamp"`
}

// Events consumed BY the Ledger Service (from the Payment Service)

type PaymentReceivedEvent struct {
	PaymentID string    `json:"payment_id"`
	Account   string    `json:"account"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// Topic names
const (
	TopicEventCreated     = "EVENT_CREATED"
	TopicTicketMinted     = "TICKET_MINTED"
	TopicPurchaseFailed   = "PURCHASE_FAILED"
	TopicTicketListed     = "TICKET_LISTED"
	TopicListingCancelled = "LISTING_CANCELLED"
	TopicTicketResold     = "TICKET_RESOLD"
	TopicPaymentReceived  = "PAYMENT_RECEIVED"
)
