package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shanegrouber/meow-bank-api/internal/repository"
)

// BalanceService derives account balances from the transfer ledger. It is
// read-only: a balance is never stored, only aggregated. An unknown account
// aggregates to zero rather than failing — a derived value, not a lookup.
type BalanceService struct {
	store repository.Store
}

func NewBalanceService(store repository.Store) *BalanceService {
	return &BalanceService{store: store}
}

// Balance returns the current balance of one account.
func (s *BalanceService) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	balance, err := s.store.Balance(ctx, accountID)
	if err != nil {
		return decimal.Zero, Operational("Failed to compute balance", err)
	}
	return balance, nil
}

// Balances returns the current balances of all requested accounts, computed
// in a single aggregation pass rather than one query per account.
func (s *BalanceService) Balances(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	balances, err := s.store.Balances(ctx, accountIDs)
	if err != nil {
		return nil, Operational("Failed to compute balances", err)
	}
	return balances, nil
}
