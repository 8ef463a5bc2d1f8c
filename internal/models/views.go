package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountView is an account together with its derived balance.
type AccountView struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}

// AccountWithTransfersView adds the account's full transfer history,
// split by direction.
type AccountWithTransfersView struct {
	AccountView
	SentTransfers     []Transfer `json:"sent_transfers"`
	ReceivedTransfers []Transfer `json:"received_transfers"`
}

// CustomerView is a customer together with the ids of the accounts it owns.
type CustomerView struct {
	Customer
	AccountIDs []string `json:"account_ids"`
}

// CustomerWithAccountsView expands the owned accounts into full views.
type CustomerWithAccountsView struct {
	Customer
	Accounts []AccountView `json:"accounts"`
}
