package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/kafka"
)

// fakeLedger is an in-memory stand-in for the Redis substrate. A single
// mutex plays the role of the ledger's per-script atomicity, so the
// concurrency tests exercise the same commit-or-abort semantics the Lua
// scripts provide.
type fakeLedger struct {
	mu       sync.Mutex
	events   map[string]*domain.Event
	buyers   map[string]map[string]int
	tickets  map[string]*domain.Ticket
	balances map[string]int64
	payments map[string]bool
	pending  map[string]*domain.PendingMint
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		events:   make(map[string]*domain.Event),
		buyers:   make(map[string]map[string]int),
		tickets:  make(map[string]*domain.Ticket),
		balances: make(map[string]int64),
		payments: make(map[string]bool),
		pending:  make(map[string]*domain.PendingMint),
	}
}

// EventRepository

func (f *fakeLedger) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.events[e.ID]; ok {
		return fmt.Errorf("event %s already exists", e.ID)
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeLedger) Get(ctx context.Context, eID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[eID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeLedger) TryIncrementSold(ctx context.Context, eID, buyer string, maxPerBuyer int) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.events[eID]
	if !ok {
		return 0, domain.ErrEventNotFound
	}
	if e.TicketsSold >= e.TotalTickets {
		return 0, domain.ErrSoldOut
	}
	if maxPerBuyer > 0 {
		if f.buyers[eID] == nil {
			f.buyers[eID] = make(map[string]int)
		}
		if f.buyers[eID][buyer] >= maxPerBuyer {
			return 0, domain.ErrTicketLimitReached
		}
		f.buyers[eID][buyer]++
	}
	e.TicketsSold++
	return e.TicketsSold, nil
}

// TicketRepository

func (f *fakeLedger) Mint(ctx context.Context, t *domain.Ticket, price int64, organizer string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tickets[t.ID]; ok {
		return false, nil
	}
	if f.balances[t.Owner] < price {
		return false, domain.ErrInsufficientFunds
	}
	f.balances[t.Owner] -= price
	f.balances[organizer] += price

	cp := *t
	f.tickets[t.ID] = &cp
	return true, nil
}

func (f *fakeLedger) GetTicket(ctx context.Context, tID string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getTicketLocked(tID)
}

func (f *fakeLedger) getTicketLocked(tID string) (*domain.Ticket, error) {
	t, ok := f.tickets[tID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	cp := *t
	if t.Listing != nil {
		lst := *t.Listing
		cp.Listing = &lst
	}
	return &cp, nil
}

func (f *fakeLedger) List(ctx context.Context, tID, seller string, askPrice int64, now time.Time, holdingPeriod time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[tID]
	if !ok {
		return domain.ErrTicketNotFound
	}
	if t.Owner != seller {
		return domain.ErrNotOwner
	}
	if holdingPeriod > 0 && now.Before(t.LastTransferAt.Add(holdingPeriod)) {
		return domain.ErrHoldingPeriod
	}
	t.Listing = &domain.Listing{Seller: seller, AskPrice: askPrice, ListedAt: now}
	return nil
}

func (f *fakeLedger) CancelListing(ctx context.Context, tID, seller string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[tID]
	if !ok {
		return domain.ErrTicketNotFound
	}
	if t.Owner != seller {
		return domain.ErrNotOwner
	}
	if t.Listing == nil {
		return domain.ErrNotListed
	}
	t.Listing = nil
	return nil
}

func (f *fakeLedger) Transfer(ctx context.Context, tID, buyer, seller, organizer string, offeredPrice int64, royaltyBps int, now time.Time) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.tickets[tID]
	if !ok {
		return 0, 0, domain.ErrTicketNotFound
	}
	if t.Listing == nil || t.Listing.Seller != seller {
		return 0, 0, domain.ErrNotListed
	}
	if t.Listing.AskPrice != offeredPrice {
		return 0, 0, domain.ErrPriceMismatch
	}
	if f.balances[buyer] < offeredPrice {
		return 0, 0, domain.ErrInsufficientFunds
	}

	royalty := offeredPrice * int64(royaltyBps) / domain.MaxRoyaltyBps
	proceeds := offeredPrice - royalty

	f.balances[buyer] -= offeredPrice
	f.balances[organizer] += royalty
	f.balances[seller] += proceeds

	t.Owner = buyer
	t.LastTransferAt = now
	t.Listing = nil

	return royalty, proceeds, nil
}

// WalletRepository

func (f *fakeLedger) Credit(ctx context.Context, account string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidPrice
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.balances[account] += amount
	return f.balances[account], nil
}

func (f *fakeLedger) CreditPayment(ctx context.Context, paymentID, account string, amount int64) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, domain.ErrInvalidPrice
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.payments[paymentID] {
		return f.balances[account], false, nil
	}
	f.payments[paymentID] = true
	f.balances[account] += amount
	return f.balances[account], true, nil
}

func (f *fakeLedger) Balance(ctx context.Context, account string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[account], nil
}

// PendingMintRepository

func (f *fakeLedger) Put(ctx context.Context, pm *domain.PendingMint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *pm
	f.pending[fmt.Sprintf("%s:%d", pm.EventID, pm.Ordinal)] = &cp
	return nil
}

func (f *fakeLedger) Remove(ctx context.Context, eID string, ordinal uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.pending, fmt.Sprintf("%s:%d", eID, ordinal))
	return nil
}

func (f *fakeLedger) ListAll(ctx context.Context) ([]*domain.PendingMint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pms := make([]*domain.PendingMint, 0, len(f.pending))
	for _, pm := range f.pending {
		cp := *pm
		pms = append(pms, &cp)
	}
	return pms, nil
}

// fakeProducer records published domain events for assertions.
type fakeProducer struct {
	mu               sync.Mutex
	eventCreated     []kafka.EventCreatedEvent
	ticketMinted     []kafka.TicketMintedEvent
	purchaseFailed   []kafka.PurchaseFailedEvent
	ticketListed     []kafka.TicketListedEvent
	listingCancelled []kafka.ListingCancelledEvent
	ticketResold     []kafka.TicketResoldEvent
}

func (p *fakeProducer) PublishEventCreated(ctx context.Context, event kafka.EventCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventCreated = append(p.eventCreated, event)
	return nil
}

func (p *fakeProducer) PublishTicketMinted(ctx context.Context, event kafka.TicketMintedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticketMinted = append(p.ticketMinted, event)
	return nil
}

func (p *fakeProducer) PublishPurchaseFailed(ctx context.Context, event kafka.PurchaseFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purchaseFailed = append(p.purchaseFailed, event)
	return nil
}

func (p *fakeProducer) PublishTicketListed(ctx context.Context, event kafka.TicketListedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticketListed = append(p.ticketListed, event)
	return nil
}

func (p *fakeProducer) PublishListingCancelled(ctx context.Context, event kafka.ListingCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listingCancelled = append(p.listingCancelled, event)
	return nil
}

func (p *fakeProducer) PublishTicketResold(ctx context.Context, event kafka.TicketResoldEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticketResold = append(p.ticketResold, event)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

// ticketRepoAdapter lets fakeLedger satisfy TicketRepository despite the
// Get name clashing with EventRepository's.
type ticketRepoAdapter struct {
	*fakeLedger
}

func (a ticketRepoAdapter) Get(ctx context.Context, tID string) (*domain.Ticket, error) {
	return a.GetTicket(ctx, tID)
}

func (f *fakeLedger) ticketRepo() ticketRepoAdapter {
	return ticketRepoAdapter{f}
}
