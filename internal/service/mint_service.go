package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// MintService issues the ownership token for a claimed slot. The token
// identity is derived from (event, ordinal), so re-minting the same
// reservation can only ever land on the same ticket.
type MintService interface {
	Mint(ctx context.Context, res *domain.Reservation) (*domain.Ticket, error)
}

type mintService struct {
	eventRepo  repo.EventRepository
	ticketRepo repo.TicketRepository
	l          logger.Logger
}

func NewMintService(eventRepo repo.EventRepository, ticketRepo repo.TicketRepository, l logger.Logger) MintService {
	return &mintService{
		eventRepo:  eventRepo,
		ticketRepo: ticketRepo,
		l:          l,
	}
}

// TicketID derives the token identity for an (event, ordinal) pair.
// Deterministic on purpose: idempotent mint retries are structural, not a
// property of careful callers.
func TicketID(eID string, ordinal uint32) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s:%d", eID, ordinal))
	return "tkt_" + hex.EncodeToString(sum[:16])
}

func (s *mintService) Mint(ctx context.Context, res *domain.Reservation) (*domain.Ticket, error) {
	e, err := s.eventRepo.Get(ctx, res.EventID)
	if err != nil {
		return nil, &domain.MintError{Reason: "event lookup failed", Err: err}
	}

	t := &domain.Ticket{
		ID:       TicketID(res.EventID, res.Ordinal),
		EventID:  res.EventID,
		Owner:    res.Buyer,
		Ordinal:  res.Ordinal,
		MintedAt: time.Now().UTC(),
	}
	t.LastTransferAt = t.MintedAt

	created, err := s.ticketRepo.Mint(ctx, t, e.TicketPrice, e.Organizer)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, &domain.MintError{Reason: "insufficient payment escrow", Err: err}
		}
		return nil, &domain.MintError{Reason: "ledger rejected issuance", Err: err}
	}

	if !created {
		// Retry of an already-settled mint: return the existing token.
		existing, err := s.ticketRepo.Get(ctx, t.ID)
		if err != nil {
			return nil, &domain.MintError{Reason: "minted ticket unreadable", Err: err}
		}

		s.l.Debug("Mint retry hit existing ticket",
			"ticket_id", existing.ID,
			"event_id", existing.EventID,
			"ordinal", existing.Ordinal,
		)

		return existing, nil
	}

	s.l.Info("Ticket minted",
		"ticket_id", t.ID,
		"event_id", t.EventID,
		"ordinal", t.Ordinal,
		"owner", t.Owner,
	)

	return t, nil
}
