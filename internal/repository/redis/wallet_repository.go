package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// WalletRepository manages escrow balances. Credits come from deposits and
// payment events; debits happen only inside the mint and transfer scripts,
// so funds can never move without the matching ticket mutation.
type WalletRepository interface {
	Credit(ctx context.Context, account string, amount int64) (int64, error)
	// CreditPayment credits an account once per payment ID. Payment events
	// arrive at-least-once, so redeliveries report credited=false instead of
	// funding the account again.
	CreditPayment(ctx context.Context, paymentID, account string, amount int64) (balance int64, credited bool, err error)
	Balance(ctx context.Context, account string) (int64, error)
}

type redisWalletRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisWalletRepository(cli *redis.Client, l logger.Logger) WalletRepository {
	return &redisWalletRepository{
		cli: cli,
		l:   l,
	}
}

func (r *redisWalletRepository) Credit(ctx context.Context, account string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidPrice
	}

	balance, err := r.cli.IncrBy(ctx, balanceKey(account), amount).Result()
	if err != nil {
		r.l.Error("redisWalletRepository.Credit", "account", account, "error", err)
		return 0, err
	}

	r.l.Debug("Escrow credited",
		"account", account,
		"amount", amount,
		"balance", balance,
	)

	return balance, nil
}

// Returns {1, balance} when the payment was applied, {0, balance} when the
// payment ID was seen before.
var creditPaymentScript = redis.NewScript(`
	if redis.call('SETNX', KEYS[1], ARGV[2]) == 0 then
		return {0, tonumber(redis.call('GET', KEYS[2]) or '0')}
	end

	return {1, redis.call('INCRBY', KEYS[2], ARGV[1])}
`)

func (r *redisWalletRepository) CreditPayment(ctx context.Context, paymentID, account string, amount int64) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, domain.ErrInvalidPrice
	}

	keys := []string{paymentKey(paymentID), balanceKey(account)}

	res, err := creditPaymentScript.Run(ctx, r.cli, keys, amount, account).Int64Slice()
	if err != nil {
		r.l.Error("redisWalletRepository.CreditPayment",
			"payment_id", paymentID,
			"account", account,
			"error", err,
		)
		return 0, false, err
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("credit payment script returned %d values", len(res))
	}

	credited := res[0] == 1
	if credited {
		r.l.Debug("Escrow credited from payment",
			"payment_id", paymentID,
			"account", account,
			"amount", amount,
			"balance", res[1],
		)
	}

	return res[1], credited, nil
}

func (r *redisWalletRepository) Balance(ctx context.Context, account string) (int64, error) {
	balance, err := r.cli.Get(ctx, balanceKey(account)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		r.l.Error("redisWalletRepository.Balance", "account", account, "error", err)
		return 0, err
	}

	return balance, nil
}

func balanceKey(account string) string {
	return fmt.Sprintf("ledger:balance:%s", account)
}

func paymentKey(paymentID string) string {
	return fmt.Sprintf("ledger:payment:%s", paymentID)
}
