package service

import (
	"context"
	"time"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/kafka"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Reconciler drains reserved-but-unminted slots. Each retry goes through
// the same mint path as the original purchase, so a slot that was minted
// concurrently resolves to the existing ticket instead of a duplicate.
type Reconciler struct {
	pendingRepo repo.PendingMintRepository
	minter      MintService
	prod        kafka.Producer
	interval    time.Duration
	batchSize   int
	l           logger.Logger
}

func NewReconciler(
	pendingRepo repo.PendingMintRepository,
	minter MintService,
	prod kafka.Producer,
	interval time.Duration,
	batchSize int,
	l logger.Logger,
) *Reconciler {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Reconciler{
		pendingRepo: pendingRepo,
		minter:      minter,
		prod:        prod,
		interval:    interval,
		batchSize:   batchSize,
		l:           l,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.l.Info("Reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.l.Info("Reconciler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				r.l.Error("Reconcile pass failed", "error", err)
			}
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) error {
	pending, err := r.pendingRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	r.l.Info("Reconciling pending mints", "count", len(pending))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.batchSize)

	for _, pm := range pending {
		pm := pm
		g.Go(func() error {
			r.retryMint(gCtx, pm)
			return nil
		})
	}

	return g.Wait()
}

func (r *Reconciler) retryMint(ctx context.Context, pm *domain.PendingMint) {
	res := &domain.Reservation{
		EventID: pm.EventID,
		Buyer:   pm.Buyer,
		Ordinal: pm.Ordinal,
	}

	t, err := r.minter.Mint(ctx, res)
	if err != nil {
		// Still failing, keep it queued with an updated attempt count.
		pm.Attempts++
		pm.Reason = err.Error()
		if putErr := r.pendingRepo.Put(ctx, pm); putErr != nil {
			r.l.Error("Failed to update pending mint",
				"event_id", pm.EventID,
				"ordinal", pm.Ordinal,
				"error", putErr,
			)
		}

		r.l.Warn("Mint retry failed",
			"event_id", pm.EventID,
			"ordinal", pm.Ordinal,
			"attempts", pm.Attempts,
			"error", err,
		)
		return
	}

	if err := r.pendingRepo.Remove(ctx, pm.EventID, pm.Ordinal); err != nil {
		r.l.Error("Failed to remove reconciled mint",
			"event_id", pm.EventID,
			"ordinal", pm.Ordinal,
			"error", err,
		)
		return
	}

	if r.prod != nil {
		if err := r.prod.PublishTicketMinted(ctx, kafka.TicketMintedEvent{
			TicketID: t.ID,
			EventID:  t.EventID,
			Owner:    t.Owner,
			Ordinal:  t.Ordinal,
			MintedAt: t.MintedAt,
		}); err != nil {
			r.l.Error("Failed to publish ticket minted event",
				"ticket_id", t.ID,
				"error", err,
			)
		}
	}

	r.l.Info("Pending mint reconciled",
		"ticket_id", t.ID,
		"event_id", pm.EventID,
		"ordinal", pm.Ordinal,
		"attempts", pm.Attempts,
	)
}
