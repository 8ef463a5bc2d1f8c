package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/shanegrouber/meow-bank-api/internal/models"
	"github.com/shanegrouber/meow-bank-api/internal/repository"
)

var errStoreOffline = errors.New("store offline")

// memStore is an in-memory repository.Store for service tests. One mutex
// serialises every call and is held across a whole InTx unit, which gives the
// fake serializable isolation — at least as strong as the row locking the
// Postgres store relies on. InTx runs against a copy of the state and only
// swaps it in on success, so a failed unit leaves no partial effects.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

func newMemStore() *memStore {
	return &memStore{state: &memState{}}
}

func (s *memStore) InTx(ctx context.Context, fn func(q repository.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.state = work
	return nil
}

// failTransferWrites makes every subsequent CreateTransfer fail, for testing
// rollback behaviour.
func (s *memStore) failTransferWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.failCreateTransfer = true
}

func (s *memStore) transferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.transfers)
}

func (s *memStore) accountCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.accounts)
}

// The standalone Queries methods lock per call and delegate.

func (s *memStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateCustomer(ctx, c)
}

func (s *memStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetCustomer(ctx, id)
}

func (s *memStore) AccountIDsByCustomer(ctx context.Context, customerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccountIDsByCustomer(ctx, customerID)
}

func (s *memStore) CreateAccount(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateAccount(ctx, a)
}

func (s *memStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetAccount(ctx, id)
}

func (s *memStore) GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetAccountForUpdate(ctx, id)
}

func (s *memStore) AccountsByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccountsByIDs(ctx, ids)
}

func (s *memStore) CreateTransfer(ctx context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CreateTransfer(ctx, t)
}

func (s *memStore) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.GetTransfer(ctx, id)
}

func (s *memStore) TransfersFrom(ctx context.Context, accountID string) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TransfersFrom(ctx, accountID)
}

func (s *memStore) TransfersTo(ctx context.Context, accountID string) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TransfersTo(ctx, accountID)
}

func (s *memStore) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Balance(ctx, accountID)
}

func (s *memStore) Balances(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Balances(ctx, accountIDs)
}

var _ repository.Store = (*memStore)(nil)

// memState holds the actual rows. Slices keep insertion order, standing in
// for the created_at ordering of the real store.
type memState struct {
	customers []models.Customer
	accounts  []models.Account
	transfers []models.Transfer

	failCreateTransfer bool
}

func (st *memState) clone() *memState {
	return &memState{
		customers:          append([]models.Customer(nil), st.customers...),
		accounts:           append([]models.Account(nil), st.accounts...),
		transfers:          append([]models.Transfer(nil), st.transfers...),
		failCreateTransfer: st.failCreateTransfer,
	}
}

func (st *memState) CreateCustomer(_ context.Context, c *models.Customer) error {
	st.customers = append(st.customers, *c)
	return nil
}

func (st *memState) GetCustomer(_ context.Context, id string) (*models.Customer, error) {
	for i := range st.customers {
		if st.customers[i].ID == id {
			c := st.customers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (st *memState) AccountIDsByCustomer(_ context.Context, customerID string) ([]string, error) {
	var ids []string
	for i := len(st.accounts) - 1; i >= 0; i-- {
		if st.accounts[i].CustomerID == customerID {
			ids = append(ids, st.accounts[i].ID)
		}
	}
	return ids, nil
}

func (st *memState) CreateAccount(_ context.Context, a *models.Account) error {
	st.accounts = append(st.accounts, *a)
	return nil
}

func (st *memState) GetAccount(_ context.Context, id string) (*models.Account, error) {
	for i := range st.accounts {
		if st.accounts[i].ID == id {
			a := st.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (st *memState) GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return st.GetAccount(ctx, id)
}

func (st *memState) AccountsByIDs(_ context.Context, ids []string) ([]models.Account, error) {
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	var accounts []models.Account
	for i := len(st.accounts) - 1; i >= 0; i-- {
		if requested[st.accounts[i].ID] {
			accounts = append(accounts, st.accounts[i])
		}
	}
	return accounts, nil
}

func (st *memState) CreateTransfer(_ context.Context, t *models.Transfer) error {
	if st.failCreateTransfer {
		return errStoreOffline
	}
	st.transfers = append(st.transfers, *t)
	return nil
}

func (st *memState) GetTransfer(_ context.Context, id string) (*models.Transfer, error) {
	for i := range st.transfers {
		if st.transfers[i].ID == id {
			t := st.transfers[i]
			return &t, nil
		}
	}
	return nil, nil
}

func (st *memState) TransfersFrom(_ context.Context, accountID string) ([]models.Transfer, error) {
	var transfers []models.Transfer
	for _, t := range st.transfers {
		if t.FromAccountID != nil && *t.FromAccountID == accountID {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

func (st *memState) TransfersTo(_ context.Context, accountID string) ([]models.Transfer, error) {
	var transfers []models.Transfer
	for _, t := range st.transfers {
		if t.ToAccountID == accountID {
			transfers = append(transfers, t)
		}
	}
	return transfers, nil
}

func (st *memState) Balance(_ context.Context, accountID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, t := range st.transfers {
		if t.ToAccountID == accountID {
			balance = balance.Add(t.Amount)
		}
		if t.FromAccountID != nil && *t.FromAccountID == accountID {
			balance = balance.Sub(t.Amount)
		}
	}
	return balance, nil
}

func (st *memState) Balances(_ context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal, len(accountIDs))
	for _, id := range accountIDs {
		b, _ := st.Balance(context.Background(), id)
		balances[id] = b
	}
	return balances, nil
}

// testServices wires the full service stack over a fresh memStore.
type testServices struct {
	store     *memStore
	balances  *BalanceService
	transfers *TransferService
	accounts  *AccountService
	customers *CustomerService
}

func newTestServices() *testServices {
	store := newMemStore()
	log := logrus.New()
	log.SetOutput(io.Discard)

	balances := NewBalanceService(store)
	transfers := NewTransferService(store, log, nil)
	accounts := NewAccountService(store, transfers, balances, log)
	customers := NewCustomerService(store, accounts, log, nil)

	return &testServices{
		store:     store,
		balances:  balances,
		transfers: transfers,
		accounts:  accounts,
		customers: customers,
	}
}
