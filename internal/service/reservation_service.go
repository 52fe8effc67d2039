package service

import (
	"context"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// ReservationService claims ticket slots. A reservation is not retried on
// ErrSoldOut: oversold is terminal, not transient.
type ReservationService interface {
	Reserve(ctx context.Context, eID, buyer string) (*domain.Reservation, error)
}

type reservationService struct {
	eventRepo   repo.EventRepository
	maxPerBuyer int
	l           logger.Logger
}

func NewReservationService(eventRepo repo.EventRepository, maxPerBuyer int, l logger.Logger) ReservationService {
	return &reservationService{
		eventRepo:   eventRepo,
		maxPerBuyer: maxPerBuyer,
		l:           l,
	}
}

func (s *reservationService) Reserve(ctx context.Context, eID, buyer string) (*domain.Reservation, error) {
	ordinal, err := s.eventRepo.TryIncrementSold(ctx, eID, buyer, s.maxPerBuyer)
	if err != nil {
		// SoldOut and the buyer cap propagate verbatim; the coordinator
		// needs to tell them apart from mint failures.
		return nil, err
	}

	res := &domain.Reservation{
		EventID:    eID,
		Buyer:      buyer,
		Ordinal:    ordinal,
		ReservedAt: time.Now().UTC(),
	}

	s.l.Debug("Slot reserved",
		"event_id", eID,
		"buyer", buyer,
		"ordinal", ordinal,
	)

	return res, nil
}
