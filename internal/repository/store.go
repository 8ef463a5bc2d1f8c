package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/shanegrouber/meow-bank-api/internal/models"
)

// Queries is the narrow persistence surface the services run against. The
// same set of operations is available standalone (auto-commit) and inside an
// atomic unit opened with Store.InTx; implementations must guarantee that
// reads issued inside a unit observe that unit's snapshot.
type Queries interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	// GetCustomer returns (nil, nil) when no customer has the given id.
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	AccountIDsByCustomer(ctx context.Context, customerID string) ([]string, error)

	CreateAccount(ctx context.Context, account *models.Account) error
	// GetAccount returns (nil, nil) when no account has the given id.
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	// GetAccountForUpdate behaves like GetAccount but, inside an atomic
	// unit, additionally locks the account row until the unit ends. A
	// concurrent locker of the same row blocks until then.
	GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error)
	// AccountsByIDs returns the existing accounts among ids, newest first.
	AccountsByIDs(ctx context.Context, ids []string) ([]models.Account, error)

	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	// GetTransfer returns (nil, nil) when no transfer has the given id.
	GetTransfer(ctx context.Context, id string) (*models.Transfer, error)
	TransfersFrom(ctx context.Context, accountID string) ([]models.Transfer, error)
	TransfersTo(ctx context.Context, accountID string) ([]models.Transfer, error)

	// Balance derives an account's balance from the transfer ledger.
	// An unknown account yields zero, not an error.
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
	// Balances derives the balances of all requested accounts in a single
	// aggregation pass. Ids absent from the ledger map to zero.
	Balances(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error)
}

// Store is Queries plus the atomic unit the transfer path depends on.
type Store interface {
	Queries

	// InTx runs fn inside one transaction. If fn returns an error or
	// panics, every effect is rolled back; otherwise the transaction
	// commits. The Queries handed to fn must only be used within fn.
	InTx(ctx context.Context, fn func(q Queries) error) error
}
