package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

type resaleFixture struct {
	*issuanceFixture
	resale ResaleService
}

func newResaleFixture(t *testing.T, holdingPeriod time.Duration) (*resaleFixture, *domain.Event, *domain.Ticket) {
	t.Helper()
	ctx := context.Background()

	f := newIssuanceFixture(0)
	resale := NewResaleService(f.led.ticketRepo(), f.led, holdingPeriod, nil, logger.NewNop())

	e, err := f.events.CreateEvent(ctx, CreateEventInput{
		Name:         "Show",
		Organizer:    "acct_org",
		TotalTickets: 10,
		TicketPrice:  100,
		RoyaltyBps:   500,
	})
	require.NoError(t, err)

	f.fund(t, "acct_seller", 100)
	tk, err := f.issuance.PurchaseTicket(ctx, e.ID, "acct_seller")
	require.NoError(t, err)

	return &resaleFixture{issuanceFixture: f, resale: resale}, e, tk
}

func TestListAndBuyResale(t *testing.T) {
	ctx := context.Background()
	f, e, tk := newResaleFixture(t, 0)
	f.fund(t, "acct_buyer", 1000)

	err := f.resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 1000,
	})
	require.NoError(t, err)

	listed, err := f.resale.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	require.True(t, listed.IsListed())
	assert.Equal(t, "acct_seller", listed.Listing.Seller)
	assert.Equal(t, int64(1000), listed.Listing.AskPrice)

	receipt, err := f.resale.BuyResale(ctx, BuyResaleInput{
		TicketID:     tk.ID,
		Buyer:        "acct_buyer",
		OfferedPrice: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "acct_seller", receipt.Seller)
	assert.Equal(t, int64(1000), receipt.Price)
	assert.Equal(t, int64(50), receipt.Royalty)
	assert.Equal(t, int64(950), receipt.Proceeds)

	// Royalty at 500 bps goes to the organizer on top of the primary sale,
	// the remainder to the seller, and ownership moves in the same step.
	orgBal, _ := f.led.Balance(ctx, "acct_org")
	sellerBal, _ := f.led.Balance(ctx, "acct_seller")
	buyerBal, _ := f.led.Balance(ctx, "acct_buyer")
	assert.Equal(t, int64(150), orgBal)
	assert.Equal(t, int64(950), sellerBal)
	assert.Equal(t, int64(0), buyerBal)

	got, err := f.resale.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "acct_buyer", got.Owner)
	assert.False(t, got.IsListed())
	assert.Equal(t, e.ID, got.EventID)
}

func TestListForResaleNotOwner(t *testing.T) {
	f, _, tk := newResaleFixture(t, 0)

	err := f.resale.ListForResale(context.Background(), ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_stranger",
		AskPrice: 500,
	})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestListForResaleHoldingPeriod(t *testing.T) {
	f, _, tk := newResaleFixture(t, time.Hour)

	err := f.resale.ListForResale(context.Background(), ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 500,
	})
	assert.ErrorIs(t, err, domain.ErrHoldingPeriod)
}

func TestBuyResaleNotListed(t *testing.T) {
	f, _, tk := newResaleFixture(t, 0)

	_, err := f.resale.BuyResale(context.Background(), BuyResaleInput{
		TicketID:     tk.ID,
		Buyer:        "acct_buyer",
		OfferedPrice: 500,
	})
	assert.ErrorIs(t, err, domain.ErrNotListed)
}

func TestBuyResalePriceMismatch(t *testing.T) {
	ctx := context.Background()
	f, _, tk := newResaleFixture(t, 0)
	f.fund(t, "acct_buyer", 1000)

	require.NoError(t, f.resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 1000,
	}))

	_, err := f.resale.BuyResale(ctx, BuyResaleInput{
		TicketID:     tk.ID,
		Buyer:        "acct_buyer",
		OfferedPrice: 900,
	})
	assert.ErrorIs(t, err, domain.ErrPriceMismatch)

	// A rejected settlement changes nothing: listing intact, funds intact.
	got, err := f.resale.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "acct_seller", got.Owner)
	require.True(t, got.IsListed())
	assert.Equal(t, int64(1000), got.Listing.AskPrice)

	buyerBal, _ := f.led.Balance(ctx, "acct_buyer")
	assert.Equal(t, int64(1000), buyerBal)
}

func TestBuyResaleInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f, _, tk := newResaleFixture(t, 0)
	f.fund(t, "acct_buyer", 999)

	require.NoError(t, f.resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 1000,
	}))

	_, err := f.resale.BuyResale(ctx, BuyResaleInput{
		TicketID:     tk.ID,
		Buyer:        "acct_buyer",
		OfferedPrice: 1000,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err := f.resale.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "acct_seller", got.Owner)
	assert.True(t, got.IsListed())
}

func TestCancelListing(t *testing.T) {
	ctx := context.Background()
	f, _, tk := newResaleFixture(t, 0)

	require.NoError(t, f.resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 1000,
	}))

	require.NoError(t, f.resale.CancelListing(ctx, tk.ID, "acct_seller"))

	got, err := f.resale.GetTicket(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, got.IsListed())

	// Cancelling twice reports the listing as gone.
	err = f.resale.CancelListing(ctx, tk.ID, "acct_seller")
	assert.ErrorIs(t, err, domain.ErrNotListed)
}

func TestCancelListingPublishesEvent(t *testing.T) {
	ctx := context.Background()
	f, e, tk := newResaleFixture(t, 0)

	prod := &fakeProducer{}
	resale := NewResaleService(f.led.ticketRepo(), f.led, 0, prod, logger.NewNop())

	require.NoError(t, resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 1000,
	}))
	require.NoError(t, resale.CancelListing(ctx, tk.ID, "acct_seller"))

	require.Len(t, prod.listingCancelled, 1)
	assert.Equal(t, tk.ID, prod.listingCancelled[0].TicketID)
	assert.Equal(t, e.ID, prod.listingCancelled[0].EventID)
	assert.Equal(t, "acct_seller", prod.listingCancelled[0].Seller)

	// A rejected cancel publishes nothing.
	require.Error(t, resale.CancelListing(ctx, tk.ID, "acct_seller"))
	assert.Len(t, prod.listingCancelled, 1)
}

func TestCancelListingNotOwner(t *testing.T) {
	ctx := context.Background()
	f, _, tk := newResaleFixture(t, 0)

	require.NoError(t, f.resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID,
		Seller:   "acct_seller",
		AskPrice: 1000,
	}))

	err := f.resale.CancelListing(ctx, tk.ID, "acct_stranger")
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestBuyResaleZeroRoyalty(t *testing.T) {
	ctx := context.Background()
	led := newFakeLedger()
	l := logger.NewNop()
	events := NewEventService(led, nil, l)
	resale := NewResaleService(led.ticketRepo(), led, 0, nil, l)
	issuance := NewIssuanceService(
		NewReservationService(led, 0, l),
		NewMintService(led, led.ticketRepo(), l),
		led, nil, l,
	)

	e, err := events.CreateEvent(ctx, CreateEventInput{
		Name:         "Free transfer show",
		Organizer:    "acct_org",
		TotalTickets: 5,
		TicketPrice:  0,
		RoyaltyBps:   0,
	})
	require.NoError(t, err)

	tk, err := issuance.PurchaseTicket(ctx, e.ID, "acct_seller")
	require.NoError(t, err)

	_, err = led.Credit(ctx, "acct_buyer", 300)
	require.NoError(t, err)

	require.NoError(t, resale.ListForResale(ctx, ListForResaleInput{
		TicketID: tk.ID, Seller: "acct_seller", AskPrice: 300,
	}))

	receipt, err := resale.BuyResale(ctx, BuyResaleInput{
		TicketID: tk.ID, Buyer: "acct_buyer", OfferedPrice: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), receipt.Royalty)
	assert.Equal(t, int64(300), receipt.Proceeds)
}

func TestWalletDeposit(t *testing.T) {
	ctx := context.Background()
	led := newFakeLedger()
	wallets := NewWalletService(led, logger.NewNop())

	bal, err := wallets.Deposit(ctx, "acct_a", 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), bal)

	bal, err = wallets.Deposit(ctx, "acct_a", 250)
	require.NoError(t, err)
	assert.Equal(t, int64(750), bal)

	_, err = wallets.Deposit(ctx, "acct_a", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = wallets.Deposit(ctx, "acct_a", -10)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	bal, err = wallets.Balance(ctx, "acct_a")
	require.NoError(t, err)
	assert.Equal(t, int64(750), bal)

	// Unknown accounts read as zero, not as an error.
	bal, err = wallets.Balance(ctx, "acct_unknown")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}
