package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shanegrouber/meow-bank-api/internal/models"
	"github.com/shanegrouber/meow-bank-api/internal/repository"
)

// AccountService creates accounts and answers account queries. An account is
// always created together with its funding transfer in one atomic unit: no
// reader ever sees a funded account without its opening system transfer, and
// no failure leaves one behind without the other.
type AccountService struct {
	store     repository.Store
	transfers *TransferService
	balances  *BalanceService
	log       logrus.FieldLogger
}

func NewAccountService(store repository.Store, transfers *TransferService, balances *BalanceService, log logrus.FieldLogger) *AccountService {
	return &AccountService{store: store, transfers: transfers, balances: balances, log: log}
}

// Create opens an account for an existing customer. A positive initial
// deposit is recorded as a system transfer in the same atomic unit as the
// account insert; a zero deposit records no transfer at all.
func (s *AccountService) Create(ctx context.Context, customerID string, initialDeposit decimal.Decimal) (*models.AccountView, error) {
	if initialDeposit.IsNegative() {
		return nil, Validation("Initial deposit cannot be negative")
	}

	var view *models.AccountView
	err := s.store.InTx(ctx, func(q repository.Queries) error {
		customer, err := q.GetCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return NotFound("Customer not found")
		}

		account := &models.Account{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := q.CreateAccount(ctx, account); err != nil {
			return err
		}
		if initialDeposit.IsPositive() {
			if _, err := s.transfers.CreateSystemIn(ctx, q, account.ID, initialDeposit); err != nil {
				return err
			}
		}

		// Derived from the ledger inside the same unit, so it reflects
		// exactly the funding transfer just written.
		balance, err := q.Balance(ctx, account.ID)
		if err != nil {
			return err
		}
		view = &models.AccountView{
			ID:         account.ID,
			CustomerID: account.CustomerID,
			Balance:    balance,
			CreatedAt:  account.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, s.classify(err, "Failed to create account", logrus.Fields{
			"customer_id":     customerID,
			"initial_deposit": initialDeposit,
		})
	}

	s.log.WithFields(logrus.Fields{
		"account_id":  view.ID,
		"customer_id": customerID,
		"balance":     view.Balance,
	}).Info("account created")
	return view, nil
}

// Get returns an account with its current balance.
func (s *AccountService) Get(ctx context.Context, id string) (*models.AccountView, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to get account", logrus.Fields{"account_id": id})
	}
	if account == nil {
		return nil, NotFound("Account not found")
	}
	balance, err := s.balances.Balance(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &models.AccountView{
		ID:         account.ID,
		CustomerID: account.CustomerID,
		Balance:    balance,
		CreatedAt:  account.CreatedAt,
	}, nil
}

// GetWithTransfers returns an account with its balance and complete transfer
// history, split into sent and received lists.
func (s *AccountService) GetWithTransfers(ctx context.Context, id string) (*models.AccountWithTransfersView, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sent, err := s.store.TransfersFrom(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to get account transfers", logrus.Fields{"account_id": id})
	}
	received, err := s.store.TransfersTo(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to get account transfers", logrus.Fields{"account_id": id})
	}
	if sent == nil {
		sent = []models.Transfer{}
	}
	if received == nil {
		received = []models.Transfer{}
	}
	return &models.AccountWithTransfersView{
		AccountView:       *view,
		SentTransfers:     sent,
		ReceivedTransfers: received,
	}, nil
}

// GetByIDs returns the existing accounts among ids, newest first, with their
// balances resolved through the batched single-pass aggregation.
func (s *AccountService) GetByIDs(ctx context.Context, ids []string) ([]models.AccountView, error) {
	accounts, err := s.store.AccountsByIDs(ctx, ids)
	if err != nil {
		return nil, s.classify(err, "Failed to list accounts", logrus.Fields{"account_ids": ids})
	}
	balances, err := s.balances.Balances(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, models.AccountView{
			ID:         account.ID,
			CustomerID: account.CustomerID,
			Balance:    balances[account.ID],
			CreatedAt:  account.CreatedAt,
		})
	}
	return views, nil
}

func (s *AccountService) classify(err error, message string, fields logrus.Fields) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	s.log.WithFields(fields).WithError(err).Error(message)
	return Operational(message, err)
}
