package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shanegrouber/meow-bank-api/internal/models"
	"github.com/shanegrouber/meow-bank-api/internal/redis"
	"github.com/shanegrouber/meow-bank-api/internal/repository"
)

// TransferService validates and commits transfers. Every writing path runs
// inside one atomic unit of the store, so the ledger never reflects an
// overdraft or a half-written transfer.
type TransferService struct {
	store repository.Store
	log   logrus.FieldLogger
	cache *redis.ViewCache[models.Transfer]
}

// NewTransferService creates a TransferService. cache may be nil to disable
// read caching; transfers are immutable so cached copies never go stale.
func NewTransferService(store repository.Store, log logrus.FieldLogger, cache *redis.ViewCache[models.Transfer]) *TransferService {
	return &TransferService{store: store, log: log, cache: cache}
}

// Create moves amount between two accounts. The checks run in a fixed order,
// first failure wins: sender exists, not a self-transfer, recipient exists,
// sufficient funds. The sender row stays locked from the first check until
// commit, which serialises concurrent debits of the same account: the funds
// check and the ledger append are one isolated unit, so two debits can never
// both pass against the same pre-debit balance.
func (s *TransferService) Create(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (*models.Transfer, error) {
	// The boundary guarantees a positive amount; re-asserted here because
	// the non-negativity of every committed balance depends on it.
	if !amount.IsPositive() {
		return nil, Validation("Amount must be positive")
	}

	var transfer *models.Transfer
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		sender, err := q.GetAccountForUpdate(ctx, fromAccountID)
		if err != nil {
			return err
		}
		if sender == nil {
			return NotFound("Sender account not found")
		}
		if fromAccountID == toAccountID {
			return Validation("Cannot transfer to the same account")
		}
		recipient, err := q.GetAccount(ctx, toAccountID)
		if err != nil {
			return err
		}
		if recipient == nil {
			return NotFound("Recipient account not found")
		}
		balance, err := q.Balance(ctx, fromAccountID)
		if err != nil {
			return err
		}
		if balance.LessThan(amount) {
			return BusinessRule("Insufficient funds")
		}

		from := fromAccountID
		transfer = &models.Transfer{
			ID:            uuid.NewString(),
			FromAccountID: &from,
			ToAccountID:   toAccountID,
			Amount:        amount,
			CreatedAt:     time.Now().UTC(),
		}
		return q.CreateTransfer(ctx, transfer)
	})
	if err != nil {
		return nil, s.classify(err, "Failed to create transfer", logrus.Fields{
			"from_account_id": fromAccountID,
			"to_account_id":   toAccountID,
			"amount":          amount,
		})
	}

	s.log.WithFields(logrus.Fields{
		"transfer_id":     transfer.ID,
		"from_account_id": fromAccountID,
		"to_account_id":   toAccountID,
		"amount":          transfer.Amount,
	}).Info("transfer created")
	s.cache.Set(ctx, transferCacheKey(transfer.ID), transfer)
	return transfer, nil
}

// CreateSystem credits an account from outside the ledger (a system
// transfer, used for opening deposits). There is no sender and therefore no
// funds check; the recipient must still exist and the amount be positive.
func (s *TransferService) CreateSystem(ctx context.Context, toAccountID string, amount decimal.Decimal) (*models.Transfer, error) {
	var transfer *models.Transfer
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		var err error
		transfer, err = s.CreateSystemIn(ctx, q, toAccountID, amount)
		return err
	})
	if err != nil {
		return nil, s.classify(err, "Failed to create system transfer", logrus.Fields{
			"to_account_id": toAccountID,
			"amount":        amount,
		})
	}
	return transfer, nil
}

// CreateSystemIn is CreateSystem running inside an atomic unit the caller
// already opened. AccountService uses it so an account insert and its
// funding transfer commit or roll back together.
func (s *TransferService) CreateSystemIn(ctx context.Context, q repository.Queries, toAccountID string, amount decimal.Decimal) (*models.Transfer, error) {
	if !amount.IsPositive() {
		return nil, Validation("Amount must be positive")
	}
	recipient, err := q.GetAccount(ctx, toAccountID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, NotFound("Recipient account not found")
	}

	transfer := &models.Transfer{
		ID:          uuid.NewString(),
		ToAccountID: toAccountID,
		Amount:      amount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := q.CreateTransfer(ctx, transfer); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"transfer_id":   transfer.ID,
		"to_account_id": toAccountID,
		"amount":        amount,
	}).Info("system transfer created")
	return transfer, nil
}

// Get returns a transfer by id.
func (s *TransferService) Get(ctx context.Context, id string) (*models.Transfer, error) {
	if cached, ok := s.cache.Get(ctx, transferCacheKey(id)); ok {
		return cached, nil
	}
	transfer, err := s.store.GetTransfer(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to get transfer", logrus.Fields{"transfer_id": id})
	}
	if transfer == nil {
		return nil, NotFound("Transfer not found")
	}
	s.cache.Set(ctx, transferCacheKey(id), transfer)
	return transfer, nil
}

// classify passes expected failures through untouched and wraps anything
// else as an operational failure with a stable message, logging the cause.
func (s *TransferService) classify(err error, message string, fields logrus.Fields) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	s.log.WithFields(fields).WithError(err).Error(message)
	return Operational(message, err)
}

func transferCacheKey(id string) string {
	return "transfer:" + id
}
