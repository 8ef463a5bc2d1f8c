package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shanegrouber/meow-bank-api/internal/models"
	"github.com/shanegrouber/meow-bank-api/internal/redis"
	"github.com/shanegrouber/meow-bank-api/internal/repository"
)

// CustomerService creates and reads customers. No balance logic lives here;
// for balances it defers to AccountService.
type CustomerService struct {
	store    repository.Store
	accounts *AccountService
	log      logrus.FieldLogger
	cache    *redis.ViewCache[models.Customer]
}

// NewCustomerService creates a CustomerService. cache may be nil; only the
// immutable customer record itself is cached, never the owned account ids.
func NewCustomerService(store repository.Store, accounts *AccountService, log logrus.FieldLogger, cache *redis.ViewCache[models.Customer]) *CustomerService {
	return &CustomerService{store: store, accounts: accounts, log: log, cache: cache}
}

// Create registers a new customer.
func (s *CustomerService) Create(ctx context.Context, name string) (*models.Customer, error) {
	customer := &models.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		return nil, s.classify(err, "Failed to create customer", logrus.Fields{"name": name})
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": customer.ID,
		"name":        customer.Name,
	}).Info("customer created")
	s.cache.Set(ctx, customerCacheKey(customer.ID), customer)
	return customer, nil
}

// Get returns a customer together with the ids of its accounts.
func (s *CustomerService) Get(ctx context.Context, id string) (*models.CustomerView, error) {
	customer, err := s.getCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	accountIDs, err := s.store.AccountIDsByCustomer(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to get customer accounts", logrus.Fields{"customer_id": id})
	}
	if accountIDs == nil {
		accountIDs = []string{}
	}
	return &models.CustomerView{Customer: *customer, AccountIDs: accountIDs}, nil
}

// GetWithAccounts returns a customer with full views of its accounts,
// balances included.
func (s *CustomerService) GetWithAccounts(ctx context.Context, id string) (*models.CustomerWithAccountsView, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.GetByIDs(ctx, view.AccountIDs)
	if err != nil {
		return nil, err
	}
	return &models.CustomerWithAccountsView{Customer: view.Customer, Accounts: accounts}, nil
}

func (s *CustomerService) getCustomer(ctx context.Context, id string) (*models.Customer, error) {
	if cached, ok := s.cache.Get(ctx, customerCacheKey(id)); ok {
		return cached, nil
	}
	customer, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, s.classify(err, "Failed to get customer", logrus.Fields{"customer_id": id})
	}
	if customer == nil {
		return nil, NotFound("Customer not found")
	}
	s.cache.Set(ctx, customerCacheKey(id), customer)
	return customer, nil
}

func (s *CustomerService) classify(err error, message string, fields logrus.Fields) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	s.log.WithFields(fields).WithError(err).Error(message)
	return Operational(message, err)
}

func customerCacheKey(id string) string {
	return "customer:" + id
}
