package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/kafka"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// EventService owns event records and the supply invariant. The only
// mutation it ever applies to a stored event is the atomic sold-count
// increment behind Reserve.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*domain.Event, error)
	GetEvent(ctx context.Context, eID string) (*domain.Event, error)
}

type eventService struct {
	eventRepo repo.EventRepository
	prod      kafka.Producer
	l         logger.Logger
}

func NewEventService(eventRepo repo.EventRepository, prod kafka.Producer, l logger.Logger) EventService {
	return &eventService{
		eventRepo: eventRepo,
		prod:      prod,
		l:         l,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, in CreateEventInput) (*domain.Event, error) {
	if err := validateCreateEvent(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	e := &domain.Event{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Organizer:    in.Organizer,
		Venue:        in.Venue,
		Description:  in.Description,
		StartsAt:     in.StartsAt,
		TotalTickets: in.TotalTickets,
		TicketsSold:  0,
		TicketPrice:  in.TicketPrice,
		RoyaltyBps:   in.RoyaltyBps,
		CreatedAt:    now,
	}

	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if s.prod != nil {
		if err := s.prod.PublishEventCreated(ctx, kafka.EventCreatedEvent{
			EventID:      e.ID,
			Name:         e.Name,
			Organizer:    e.Organizer,
			TotalTickets: e.TotalTickets,
			TicketPrice:  e.TicketPrice,
			RoyaltyBps:   e.RoyaltyBps,
		}); err != nil {
			// Log error but don't fail the request
			s.l.Error("Failed to publish event created",
				"event_id", e.ID,
				"error", err,
			)
		}
	}

	s.l.Info("Event created",
		"event_id", e.ID,
		"organizer", e.Organizer,
		"total_tickets", e.TotalTickets,
	)

	return e, nil
}

func (s *eventService) GetEvent(ctx context.Context, eID string) (*domain.Event, error) {
	return s.eventRepo.Get(ctx, eID)
}

func validateCreateEvent(in CreateEventInput) error {
	if in.Name == "" || len(in.Name) > domain.MaxEventNameLen {
		return domain.ErrInvalidName
	}
	if len(in.Venue) > domain.MaxVenueLen || len(in.Description) > domain.MaxDescriptionLen {
		return domain.ErrInvalidVenue
	}
	if in.TotalTickets == 0 {
		return domain.ErrInvalidCapacity
	}
	if in.TicketPrice < 0 {
		return domain.ErrInvalidPrice
	}
	if in.RoyaltyBps < 0 || in.RoyaltyBps > domain.MaxRoyaltyBps {
		return domain.ErrInvalidRoyalty
	}
	return nil
}
