package kafka

import (
	"context"
	"fmt"

	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// MessageHandler handles incoming Kafka events
type MessageHandler interface {
	HandlePaymentReceived(ctx context.Context, event PaymentReceivedEvent) error
}

// PaymentEventHandler credits escrow balances from confirmed payments.
type PaymentEventHandler struct {
	walletRepo repo.WalletRepository
	logger     logger.Logger
}

func NewPaymentEventHandler(walletRepo repo.WalletRepository, logger logger.Logger) MessageHandler {
	return &PaymentEventHandler{
		walletRepo: walletRepo,
		logger:     logger,
	}
}

func (h *PaymentEventHandler) HandlePaymentReceived(ctx context.Context, event PaymentReceivedEvent) error {
	if event.PaymentID == "" || event.Account == "" || event.Amount <= 0 {
		h.logger.Warn("Ignoring malformed payment event",
			"payment_id", event.PaymentID,
			"account", event.Account,
			"amount", event.Amount,
		)
		return nil // Don't retry
	}

	// Delivery is at-least-once; the payment ID dedups redeliveries so a
	// replayed message can never fund the account twice.
	balance, credited, err := h.walletRepo.CreditPayment(ctx, event.PaymentID, event.Account, event.Amount)
	if err != nil {
		return fmt.Errorf("failed to credit escrow: %w", err)
	}
	if !credited {
		h.logger.Info("Ignoring duplicate payment event",
			"payment_id", event.PaymentID,
			"account", event.Account,
		)
		return nil
	}

	h.logger.Info("Escrow funded from payment",
		"payment_id", event.PaymentID,
		"account", event.Account,
		"amount", event.Amount,
		"balance", balance,
	)

	return nil
}
