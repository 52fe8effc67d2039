package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// PendingMintRepository persists reserved-but-unminted slots so the
// reconciler can retry them after a crash or a ledger rejection.
type PendingMintRepository interface {
	Put(ctx context.Context, pm *domain.PendingMint) error
	Remove(ctx context.Context, eID string, ordinal uint32) error
	ListAll(ctx context.Context) ([]*domain.PendingMint, error)
}

type redisPendingMintRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisPendingMintRepository(cli *redis.Client, l logger.Logger) PendingMintRepository {
	return &redisPendingMintRepository{
		cli: cli,
		l:   l,
	}
}

const pendingMintsKey = "ledger:pending_mints"

func (r *redisPendingMintRepository) Put(ctx context.Context, pm *domain.PendingMint) error {
	data, err := json.Marshal(pm)
	if err != nil {
		return fmt.Errorf("failed to marshal pending mint: %w", err)
	}

	if err := r.cli.HSet(ctx, pendingMintsKey, pendingField(pm.EventID, pm.Ordinal), data).Err(); err != nil {
		r.l.Error("redisPendingMintRepository.Put",
			"event_id", pm.EventID,
			"ordinal", pm.Ordinal,
			"error", err,
		)
		return err
	}

	return nil
}

func (r *redisPendingMintRepository) Remove(ctx context.Context, eID string, ordinal uint32) error {
	if err := r.cli.HDel(ctx, pendingMintsKey, pendingField(eID, ordinal)).Err(); err != nil {
		r.l.Error("redisPendingMintRepository.Remove",
			"event_id", eID,
			"ordinal", ordinal,
			"error", err,
		)
		return err
	}

	return nil
}

func (r *redisPendingMintRepository) ListAll(ctx context.Context) ([]*domain.PendingMint, error) {
	entries, err := r.cli.HGetAll(ctx, pendingMintsKey).Result()
	if err != nil {
		r.l.Error("redisPendingMintRepository.ListAll", "error", err)
		return nil, err
	}

	pms := make([]*domain.PendingMint, 0, len(entries))
	for field, data := range entries {
		var pm domain.PendingMint
		if err := json.Unmarshal([]byte(data), &pm); err != nil {
			r.l.Warn("Skipping malformed pending mint", "field", field, "error", err)
			continue
		}
		pms = append(pms, &pm)
	}

	return pms, nil
}

func pendingField(eID string, ordinal uint32) string {
	return fmt.Sprintf("%s:%d", eID, ordinal)
}
