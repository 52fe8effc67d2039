package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/kafka"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// ResaleService owns ticket ownership and listing mutation after mint.
// Payment split and ownership transfer settle in one ledger step.
type ResaleService interface {
	GetTicket(ctx context.Context, tID string) (*domain.Ticket, error)
	ListForResale(ctx context.Context, in ListForResaleInput) error
	CancelListing(ctx context.Context, tID, seller string) error
	BuyResale(ctx context.Context, in BuyResaleInput) (*ResaleReceipt, error)
}

type resaleService struct {
	ticketRepo    repo.TicketRepository
	eventRepo     repo.EventRepository
	holdingPeriod time.Duration
	prod          kafka.Producer
	l             logger.Logger
}

func NewResaleService(
	ticketRepo repo.TicketRepository,
	eventRepo repo.EventRepository,
	holdingPeriod time.Duration,
	prod kafka.Producer,
	l logger.Logger,
) ResaleService {
	return &resaleService{
		ticketRepo:    ticketRepo,
		eventRepo:     eventRepo,
		holdingPeriod: holdingPeriod,
		prod:          prod,
		l:             l,
	}
}

func (s *resaleService) GetTicket(ctx context.Context, tID string) (*domain.Ticket, error) {
	return s.ticketRepo.Get(ctx, tID)
}

func (s *resaleService) ListForResale(ctx context.Context, in ListForResaleInput) error {
	if in.AskPrice < 0 {
		return domain.ErrInvalidPrice
	}

	if err := s.ticketRepo.List(ctx, in.TicketID, in.Seller, in.AskPrice, time.Now().UTC(), s.holdingPeriod); err != nil {
		return err
	}

	if s.prod != nil {
		t, err := s.ticketRepo.Get(ctx, in.TicketID)
		if err == nil {
			if err := s.prod.PublishTicketListed(ctx, kafka.TicketListedEvent{
				TicketID: in.TicketID,
				EventID:  t.EventID,
				Seller:   in.Seller,
				AskPrice: in.AskPrice,
			}); err != nil {
				s.l.Error("Failed to publish ticket listed event",
					"ticket_id", in.TicketID,
					"error", err,
				)
			}
		}
	}

	s.l.Info("Ticket listed for resale",
		"ticket_id", in.TicketID,
		"seller", in.Seller,
		"ask_price", in.AskPrice,
	)

	return nil
}

func (s *resaleService) CancelListing(ctx context.Context, tID, seller string) error {
	if err := s.ticketRepo.CancelListing(ctx, tID, seller); err != nil {
		return err
	}

	if s.prod != nil {
		t, err := s.ticketRepo.Get(ctx, tID)
		if err == nil {
			if err := s.prod.PublishListingCancelled(ctx, kafka.ListingCancelledEvent{
				TicketID: tID,
				EventID:  t.EventID,
				Seller:   seller,
			}); err != nil {
				s.l.Error("Failed to publish listing cancelled event",
					"ticket_id", tID,
					"error", err,
				)
			}
		}
	}

	s.l.Info("Listing cancelled",
		"ticket_id", tID,
		"seller", seller,
	)

	return nil
}

func (s *resaleService) BuyResale(ctx context.Context, in BuyResaleInput) (*ResaleReceipt, error) {
	if in.OfferedPrice < 0 {
		return nil, domain.ErrInvalidPrice
	}

	t, err := s.ticketRepo.Get(ctx, in.TicketID)
	if err != nil {
		return nil, err
	}
	if !t.IsListed() {
		return nil, domain.ErrNotListed
	}
	seller := t.Listing.Seller

	e, err := s.eventRepo.Get(ctx, t.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event for royalty split: %w", err)
	}

	// The transfer script re-reads the listing; if it changed since the
	// snapshot above, the script reports not-listed rather than settling
	// against stale terms.
	royalty, proceeds, err := s.ticketRepo.Transfer(
		ctx, in.TicketID, in.Buyer, seller, e.Organizer,
		in.OfferedPrice, e.RoyaltyBps, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	receipt := &ResaleReceipt{
		TicketID: in.TicketID,
		EventID:  t.EventID,
		Seller:   seller,
		Buyer:    in.Buyer,
		Price:    in.OfferedPrice,
		Royalty:  royalty,
		Proceeds: proceeds,
	}

	if s.prod != nil {
		if err := s.prod.PublishTicketResold(ctx, kafka.TicketResoldEvent{
			TicketID: receipt.TicketID,
			EventID:  receipt.EventID,
			Seller:   receipt.Seller,
			Buyer:    receipt.Buyer,
			Price:    receipt.Price,
			Royalty:  receipt.Royalty,
			Proceeds: receipt.Proceeds,
		}); err != nil {
			s.l.Error("Failed to publish ticket resold event",
				"ticket_id", receipt.TicketID,
				"error", err,
			)
		}
	}

	s.l.Info("Resale settled",
		"ticket_id", in.TicketID,
		"seller", seller,
		"buyer", in.Buyer,
		"price", in.OfferedPrice,
		"royalty", royalty,
		"proceeds", proceeds,
	)

	return receipt, nil
}
