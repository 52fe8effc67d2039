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

type TicketRepository interface {
	// Mint creates the ticket and settles the primary-sale payment in one
	// atomic step. Returns false when the ticket already exists, which is
	// how an idempotent retry reports success without double-issuing.
	Mint(ctx context.Context, t *domain.Ticket, price int64, organizer string) (created bool, err error)
	Get(ctx context.Context, tID string) (*domain.Ticket, error)
	List(ctx context.Context, tID, seller string, askPrice int64, now time.Time, holdingPeriod time.Duration) error
	CancelListing(ctx context.Context, tID, seller string) error
	// Transfer settles a resale: payment split and ownership move together
	// or not at all.
	Transfer(ctx context.Context, tID, buyer, seller, organizer string, offeredPrice int64, royaltyBps int, now time.Time) (royalty, proceeds int64, err error)
}

type redisTicketRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisTicketRepository(cli *redis.Client, l logger.Logger) TicketRepository {
	return &redisTicketRepository{
		cli: cli,
		l:   l,
	}
}

// Returns: 1 created, 0 already minted, -1 insufficient escrow.
var mintScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 1 then
		return 0
	end

	local price = tonumber(ARGV[5])
	local balance = tonumber(redis.call('GET', KEYS[2]) or '0')
	if balance < price then
		return -1
	end

	if price > 0 then
		redis.call('DECRBY', KEYS[2], price)
		redis.call('INCRBY', KEYS[3], price)
	end

	redis.call('HSET', KEYS[1],
		'event_id', ARGV[1],
		'owner', ARGV[2],
		'ordinal', ARGV[3],
		'minted_at', ARGV[4],
		'last_transfer_at', ARGV[4])

	return 1
`)

// Returns: 1 listed, -1 not found, -2 not owner, -3 holding period.
var listScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	if redis.call('HGET', KEYS[1], 'owner') ~= ARGV[1] then
		return -2
	end

	local hold = tonumber(ARGV[4])
	if hold > 0 then
		local last = tonumber(redis.call('HGET', KEYS[1], 'last_transfer_at'))
		if tonumber(ARGV[3]) < last + hold then
			return -3
		end
	end

	redis.call('HSET', KEYS[1],
		'listing_seller', ARGV[1],
		'listing_price', ARGV[2],
		'listed_at', ARGV[3])

	return 1
`)

// Returns: 1 cancelled, -1 not found, -2 not owner, -3 not listed.
var cancelListingScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	if redis.call('HGET', KEYS[1], 'owner') ~= ARGV[1] then
		return -2
	end
	if redis.call('HEXISTS', KEYS[1], 'listing_seller') == 0 then
		return -3
	end

	redis.call('HDEL', KEYS[1], 'listing_seller', 'listing_price', 'listed_at')

	return 1
`)

// Returns {1, royalty, proceeds} on success, or a single negative code:
// -1 not found, -2 not listed (or listing changed since the caller read it),
// -3 price mismatch, -4 insufficient escrow.
var transferScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return {-1}
	end

	local seller = redis.call('HGET', KEYS[1], 'listing_seller')
	if not seller or seller ~= ARGV[5] then
		return {-2}
	end

	local ask = tonumber(redis.call('HGET', KEYS[1], 'listing_price'))
	if tonumber(ARGV[2]) ~= ask then
		return {-3}
	end

	local balance = tonumber(redis.call('GET', KEYS[2]) or '0')
	if balance < ask then
		return {-4}
	end

	local royalty = math.floor(ask * tonumber(ARGV[3]) / 10000)
	local proceeds = ask - royalty

	redis.call('DECRBY', KEYS[2], ask)
	if royalty > 0 then
		redis.call('INCRBY', KEYS[4], royalty)
	end
	if proceeds > 0 then
		redis.call('INCRBY', KEYS[3], proceeds)
	end

	redis.call('HSET', KEYS[1], 'owner', ARGV[1], 'last_transfer_at', ARGV[4])
	redis.call('HDEL', KEYS[1], 'listing_seller', 'listing_price', 'listed_at')

	return {1, royalty, proceeds}
`)

func (r *redisTicketRepository) Mint(ctx context.Context, t *domain.Ticket, price int64, organizer string) (bool, error) {
	keys := []string{r.ticketKey(t.ID), balanceKey(t.Owner), balanceKey(organizer)}

	res, err := mintScript.Run(ctx, r.cli, keys,
		t.EventID, t.Owner, t.Ordinal, t.MintedAt.Unix(), price,
	).Int64()
	if err != nil {
		r.l.Error("redisTicketRepository.Mint", "ticket_id", t.ID, "error", err)
		return false, err
	}

	switch res {
	case 0:
		return false, nil
	case -1:
		return false, domain.ErrInsufficientFunds
	}

	r.l.Debug("Ticket minted",
		"ticket_id", t.ID,
		"event_id", t.EventID,
		"ordinal", t.Ordinal,
	)

	return true, nil
}

func (r *redisTicketRepository) Get(ctx context.Context, tID string) (*domain.Ticket, error) {
	fields, err := r.cli.HGetAll(ctx, r.ticketKey(tID)).Result()
	if err != nil {
		r.l.Error("redisTicketRepository.Get", "ticket_id", tID, "error", err)
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.ErrTicketNotFound
	}

	return parseTicket(tID, fields)
}

func (r *redisTicketRepository) List(ctx context.Context, tID, seller string, askPrice int64, now time.Time, holdingPeriod time.Duration) error {
	keys := []string{r.ticketKey(tID)}

	res, err := listScript.Run(ctx, r.cli, keys,
		seller, askPrice, now.Unix(), int64(holdingPeriod.Seconds()),
	).Int64()
	if err != nil {
		r.l.Error("redisTicketRepository.List", "ticket_id", tID, "error", err)
		return err
	}

	switch res {
	case -1:
		return domain.ErrTicketNotFound
	case -2:
		return domain.ErrNotOwner
	case -3:
		return domain.ErrHoldingPeriod
	}

	return nil
}

func (r *redisTicketRepository) CancelListing(ctx context.Context, tID, seller string) error {
	keys := []string{r.ticketKey(tID)}

	res, err := cancelListingScript.Run(ctx, r.cli, keys, seller).Int64()
	if err != nil {
		r.l.Error("redisTicketRepository.CancelListing", "ticket_id", tID, "error", err)
		return err
	}

	switch res {
	case -1:
		return domain.ErrTicketNotFound
	case -2:
		return domain.ErrNotOwner
	case -3:
		return domain.ErrNotListed
	}

	return nil
}

func (r *redisTicketRepository) Transfer(ctx context.Context, tID, buyer, seller, organizer string, offeredPrice int64, royaltyBps int, now time.Time) (int64, int64, error) {
	keys := []string{
		r.ticketKey(tID),
		balanceKey(buyer),
		balanceKey(seller),
		balanceKey(organizer),
	}

	res, err := transferScript.Run(ctx, r.cli, keys,
		buyer, offeredPrice, royaltyBps, now.Unix(), seller,
	).Int64Slice()
	if err != nil {
		r.l.Error("redisTicketRepository.Transfer", "ticket_id", tID, "error", err)
		return 0, 0, err
	}
	if len(res) == 0 {
		return 0, 0, fmt.Errorf("transfer script returned empty result")
	}

	switch res[0] {
	case -1:
		return 0, 0, domain.ErrTicketNotFound
	case -2:
		return 0, 0, domain.ErrNotListed
	case -3:
		return 0, 0, domain.ErrPriceMismatch
	case -4:
		return 0, 0, domain.ErrInsufficientFunds
	}
	if len(res) != 3 {
		return 0, 0, fmt.Errorf("transfer script returned %d values", len(res))
	}

	r.l.Debug("Ticket transferred",
		"ticket_id", tID,
		"buyer", buyer,
		"seller", seller,
		"royalty", res[1],
		"proceeds", res[2],
	)

	return res[1], res[2], nil
}

func parseTicket(tID string, fields map[string]string) (*domain.Ticket, error) {
	ordinal, err := strconv.ParseUint(fields["ordinal"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("malformed ticket %s: ordinal: %w", tID, err)
	}
	mintedAt, err := strconv.ParseInt(fields["minted_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed ticket %s: minted_at: %w", tID, err)
	}
	lastTransferAt, err := strconv.ParseInt(fields["last_transfer_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed ticket %s: last_transfer_at: %w", tID, err)
	}

	t := &domain.Ticket{
		ID:             tID,
		EventID:        fields["event_id"],
		Owner:          fields["owner"],
		Ordinal:        uint32(ordinal),
		MintedAt:       time.Unix(mintedAt, 0).UTC(),
		LastTransferAt: time.Unix(lastTransferAt, 0).UTC(),
	}

	if seller, ok := fields["listing_seller"]; ok {
		ask, err := strconv.ParseInt(fields["listing_price"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed ticket %s: listing_price: %w", tID, err)
		}
		listedAt, err := strconv.ParseInt(fields["listed_at"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed ticket %s: listed_at: %w", tID, err)
		}
		t.Listing = &domain.Listing{
			Seller:   seller,
			AskPrice: ask,
			ListedAt: time.Unix(listedAt, 0).UTC(),
		}
	}

	return t, nil
}

func (r *redisTicketRepository) ticketKey(tID string) string {
	return fmt.Sprintf("ledger:ticket:%s", tID)
}
