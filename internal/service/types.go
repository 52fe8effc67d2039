package service

import "time"

type CreateEventInput struct {
	Name         string
	Organizer    string
	Venue        string
	Description  string
	StartsAt     time.Time
	TotalTickets uint32
	TicketPrice  int64
	RoyaltyBps   int
}

type ListForResaleInput struct {
	TicketID string
	Seller   string
	AskPrice int64
}

type BuyResaleInput struct {
	TicketID     string
	Buyer        string
	OfferedPrice int64
}

type ResaleReceipt struct {
	TicketID string `json:"ticket_id"`
	EventID  string `json:"event_id"`
	Seller   string `json:"seller"`
	Buyer    string `json:"buyer"`
	Price    int64  `json:"price"`
	Royalty  int64  `json:"royalty"`
	Proceeds int64  `json:"proceeds"`
}
