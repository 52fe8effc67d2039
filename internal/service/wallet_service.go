package service

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-ledger/internal/domain"
	repo "github.com/vogiaan1904/ticketbottle-ledger/internal/repository/redis"
	"github.com/vogiaan1904/ticketbottle-ledger/pkg/logger"
)

// WalletService funds and reads escrow balances. Debits are not exposed
// here: money leaves an account only inside the mint and resale transfer
// scripts.
type WalletService interface {
	Deposit(ctx context.Context, account string, amount int64) (int64, error)
	Balance(ctx context.Context, account string) (int64, error)
}

type walletService struct {
	walletRepo repo.WalletRepository
	l          logger.Logger
}

func NewWalletService(walletRepo repo.WalletRepository, l logger.Logger) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		l:          l,
	}
}

func (s *walletService) Deposit(ctx context.Context, account string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidPrice
	}

	balance, err := s.walletRepo.Credit(ctx, account, amount)
	if err != nil {
		return 0, err
	}

	s.l.Info("Escrow deposit",
		"account", account,
		"amount", amount,
		"balance", balance,
	)

	return balance, nil
}

func (s *walletService) Balance(ctx context.Context, account string) (int64, error) {
	return s.walletRepo.Balance(ctx, account)
}
