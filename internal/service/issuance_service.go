package service

import (
	"context"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/kafka"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// IssuanceService sequences the two ledger submissions of a purchase:
// claim a slot, then mint the token. The two are deliberately not one
// transaction; when the mint leg fails the claimed slot is recorded as a
// PendingMint and the caller gets a PartialFailureError. Nothing rolls the
// counter back.
type IssuanceService interface {
	PurchaseTicket(ctx context.Context, eID, buyer string) (*domain.Ticket, error)
}

type issuanceService struct {
	reservations ReservationService
	minter       MintService
	pendingRepo  repo.PendingMintRepository
	prod         kafka.Producer
	l            logger.Logger
}

func NewIssuanceService(
	reservations ReservationService,
	minter MintService,
	pendingRepo repo.PendingMintRepository,
	prod kafka.Producer,
	l logger.Logger,
) IssuanceService {
	return &issuanceService{
		reservations: reservations,
		minter:       minter,
		pendingRepo:  pendingRepo,
		prod:         prod,
		l:            l,
	}
}

func (s *issuanceService) PurchaseTicket(ctx context.Context, eID, buyer string) (*domain.Ticket, error) {
	state := domain.PurchaseStateRequested

	res, err := s.reservations.Reserve(ctx, eID, buyer)
	if err != nil {
		state = domain.PurchaseStateRejected
		s.l.Info("Purchase rejected",
			"event_id", eID,
			"buyer", buyer,
			"state", state,
			"error", err,
		)
		return nil, err
	}
	state = domain.PurchaseStateReserved

	t, err := s.minter.Mint(ctx, res)
	if err != nil {
		state = domain.PurchaseStateReservedUnminted
		return nil, s.recordPartialFailure(ctx, res, state, err)
	}
	state = domain.PurchaseStateMinted

	if s.prod != nil {
		if err := s.prod.PublishTicketMinted(ctx, kafka.TicketMintedEvent{
			TicketID: t.ID,
			EventID:  t.EventID,
			Owner:    t.Owner,
			Ordinal:  t.Ordinal,
			MintedAt: t.MintedAt,
		}); err != nil {
			s.l.Error("Failed to publish ticket minted event",
				"ticket_id", t.ID,
				"error", err,
			)
		}
	}

	s.l.Info("Purchase completed",
		"event_id", eID,
		"buyer", buyer,
		"ticket_id", t.ID,
		"ordinal", t.Ordinal,
		"state", state,
	)

	return t, nil
}

// recordPartialFailure persists the consumed slot for reconciliation and
// builds the error the caller sees. The PendingMint write itself can fail;
// that only loses the retry hint, not the claim, so it is logged and the
// partial failure still surfaces.
func (s *issuanceService) recordPartialFailure(ctx context.Context, res *domain.Reservation, state domain.PurchaseState, cause error) error {
	pm := &domain.PendingMint{
		EventID:  res.EventID,
		Buyer:    res.Buyer,
		Ordinal:  res.Ordinal,
		Reason:   cause.Error(),
		FailedAt: time.Now().UTC(),
	}

	if err := s.pendingRepo.Put(ctx, pm); err != nil {
		s.l.Error("Failed to record pending mint",
			"event_id", res.EventID,
			"ordinal", res.Ordinal,
			"error", err,
		)
	}

	if s.prod != nil {
		if err := s.prod.PublishPurchaseFailed(ctx, kafka.PurchaseFailedEvent{
			EventID: res.EventID,
			Buyer:   res.Buyer,
			Ordinal: res.Ordinal,
			Reason:  cause.Error(),
		}); err != nil {
			s.l.Error("Failed to publish purchase failed event",
				"event_id", res.EventID,
				"error", err,
			)
		}
	}

	s.l.Warn("Purchase partially failed",
		"event_id", res.EventID,
		"buyer", res.Buyer,
		"ordinal", res.Ordinal,
		"state", state,
		"error", cause,
	)

	return &domain.PartialFailureError{
		EventID: res.EventID,
		Ordinal: res.Ordinal,
		Reason:  cause.Error(),
	}
}
