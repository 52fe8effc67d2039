package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	led := newFakeLedger()
	svc := NewEventService(led, nil, logger.NewNop())

	in := CreateEventInput{
		Name:         "Go Conference 2026",
		Organizer:    "acct_org",
		Venue:        "Hall A",
		Description:  "Two days of talks",
		StartsAt:     time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
		TotalTickets: 100,
		TicketPrice:  2500,
		RoyaltyBps:   500,
	}

	e, err := svc.CreateEvent(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)
	assert.Equal(t, in.Name, e.Name)
	assert.Equal(t, in.Organizer, e.Organizer)
	assert.Equal(t, uint32(0), e.TicketsSold)
	assert.Equal(t, uint32(100), e.Remaining())
	assert.False(t, e.SoldOut())

	got, err := svc.GetEvent(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, in.TotalTickets, got.TotalTickets)
}

func TestCreateEventValidation(t *testing.T) {
	valid := CreateEventInput{
		Name:         "Show",
		Organizer:    "acct_org",
		TotalTickets: 10,
		TicketPrice:  100,
		RoyaltyBps:   250,
	}

	tests := []struct {
		name    string
		mutate  func(in *CreateEventInput)
		wantErr error
	}{
		{
			name:    "empty name",
			mutate:  func(in *CreateEventInput) { in.Name = "" },
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "name too long",
			mutate:  func(in *CreateEventInput) { in.Name = strings.Repeat("x", domain.MaxEventNameLen+1) },
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "venue too long",
			mutate:  func(in *CreateEventInput) { in.Venue = strings.Repeat("x", domain.MaxVenueLen+1) },
			wantErr: domain.ErrInvalidVenue,
		},
		{
			name:    "zero capacity",
			mutate:  func(in *CreateEventInput) { in.TotalTickets = 0 },
			wantErr: domain.ErrInvalidCapacity,
		},
		{
			name:    "negative price",
			mutate:  func(in *CreateEventInput) { in.TicketPrice = -1 },
			wantErr: domain.ErrInvalidPrice,
		},
		{
			name:    "royalty above full split",
			mutate:  func(in *CreateEventInput) { in.RoyaltyBps = domain.MaxRoyaltyBps + 1 },
			wantErr: domain.ErrInvalidRoyalty,
		},
		{
			name:    "negative royalty",
			mutate:  func(in *CreateEventInput) { in.RoyaltyBps = -1 },
			wantErr: domain.ErrInvalidRoyalty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			led := newFakeLedger()
			svc := NewEventService(led, nil, logger.NewNop())

			in := valid
			tt.mutate(&in)

			_, err := svc.CreateEvent(context.Background(), in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, led.events)
		})
	}
}

func TestGetEventNotFound(t *testing.T) {
	svc := NewEventService(newFakeLedger(), nil, logger.NewNop())

	_, err := svc.GetEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestRoyaltyForTruncates(t *testing.T) {
	e := &domain.Event{RoyaltyBps: 333}

	royalty, proceeds := e.RoyaltyFor(1000)
	assert.Equal(t, int64(33), royalty)
	assert.Equal(t, int64(967), proceeds)
	assert.Equal(t, int64(1000), royalty+proceeds)
}
