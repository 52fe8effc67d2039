package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eID string) (*domain.Event, error)
	// TryIncrementSold atomically claims one ticket slot and returns the new
	// tickets_sold value, which is the claimed ordinal. maxPerBuyer <= 0
	// disables the per-buyer cap.
	TryIncrementSold(ctx context.Context, eID, buyer string, maxPerBuyer int) (uint32, error)
}

type redisEventRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisEventRepository(cli *redis.Client, l logger.Logger) EventRepository {
	return &redisEventRepository{
		cli: cli,
		l:   l,
	}
}

// incrementSoldScript is the registry's single mutation entry point. Redis
// runs the script atomically, so two concurrent claims against the same
// event serialize: the loser observes the updated tickets_sold, never a
// stale read.
//
// Returns: new tickets_sold on success, -1 sold out, -2 buyer limit,
// -3 event missing.
var incrementSoldScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -3
	end

	local total = tonumber(redis.call('HGET', KEYS[1], 'total_tickets'))
	local sold = tonumber(redis.call('HGET', KEYS[1], 'tickets_sold'))
	if sold >= total then
		return -1
	end

	local maxPerBuyer = tonumber(ARGV[2])
	if maxPerBuyer > 0 then
		local count = tonumber(redis.call('HGET', KEYS[2], ARGV[1]) or '0')
		if count >= maxPerBuyer then
			return -2
		end
		redis.call('HINCRBY', KEYS[2], ARGV[1], 1)
	end

	return redis.call('HINCRBY', KEYS[1], 'tickets_sold', 1)
`)

func (r *redisEventRepository) Create(ctx context.Context, e *domain.Event) error {
	key := r.eventKey(e.ID)

	set, err := r.cli.HSetNX(ctx, key, "id", e.ID).Result()
	if err != nil {
		r.l.Error("redisEventRepository.Create", "event_id", e.ID, "error", err)
		return err
	}
	if !set {
		return fmt.Errorf("event %s already exists", e.ID)
	}

	if err := r.cli.HSet(ctx, key,
		"name", e.Name,
		"organizer", e.Organizer,
		"venue", e.Venue,
		"description", e.Description,
		"starts_at", e.StartsAt.Unix(),
		"total_tickets", e.TotalTickets,
		"tickets_sold", e.TicketsSold,
		"ticket_price", e.TicketPrice,
		"royalty_bps", e.RoyaltyBps,
		"created_at", e.CreatedAt.Unix(),
	).Err(); err != nil {
		r.l.Error("redisEventRepository.Create", "event_id", e.ID, "error", err)
		return err
	}

	return nil
}

func (r *redisEventRepository) Get(ctx context.Context, eID string) (*domain.Event, error) {
	fields, err := r.cli.HGetAll(ctx, r.eventKey(eID)).Result()
	if err != nil {
		r.l.Error("redisEventRepository.Get", "event_id", eID, "error", err)
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrEventNotFound
	}

	return parseEvent(eID, fields)
}

func (r *redisEventRepository) TryIncrementSold(ctx context.Context, eID, buyer string, maxPerBuyer int) (uint32, error) {
	keys := []string{r.eventKey(eID), r.buyersKey(eID)}

	res, err := incrementSoldScript.Run(ctx, r.cli, keys, buyer, maxPerBuyer).Int64()
	if err != nil {
		r.l.Error("redisEventRepository.TryIncrementSold", "event_id", eID, "error", err)
		return 0, err
	}

	switch res {
	case -1:
		return 0, domain.ErrSoldOut
	case -2:
		return 0, domain.ErrTicketLimitReached
	case -3:
		return 0, domain.ErrEventNotFound
	}

	r.l.Debug("Slot claimed",
		"event_id", eID,
		"buyer", buyer,
		"ordinal", res,
	)

	return uint32(res), nil
}

func parseEvent(eID string, fields map[string]string) (*domain.Event, error) {
	startsAt, err := strconv.ParseInt(fields["starts_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: starts_at: %w", eID, err)
	}
	total, err := strconv.ParseUint(fields["total_tickets"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: total_tickets: %w", eID, err)
	}
	sold, err := strconv.ParseUint(fields["tickets_sold"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: tickets_sold: %w", eID, err)
	}
	price, err := strconv.ParseInt(fields["ticket_price"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: ticket_price: %w", eID, err)
	}
	royalty, err := strconv.Atoi(fields["royalty_bps"])
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: royalty_bps: %w", eID, err)
	}
	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed event %s: created_at: %w", eID, err)
	}

	return &domain.Event{
		ID:           eID,
		Name:         fields["name"],
		Organizer:    fields["organizer"],
		Venue:        fields["venue"],
		Description:  fields["description"],
		StartsAt:     time.Unix(startsAt, 0).UTC(),
		TotalTickets: uint32(total),
		TicketsSold:  uint32(sold),
		TicketPrice:  price,
		RoyaltyBps:   royalty,
		CreatedAt:    time.Unix(createdAt, 0).UTC(),
	}, nil
}

func (r *redisEventRepository) eventKey(eID string) string {
	return fmt.Sprintf("ledger:event:%s", eID)
}

func (r *redisEventRepository) buyersKey(eID string) string {
	return fmt.Sprintf("ledger:event:%s:buyers", eID)
}
