package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a ledger customer. Customers are immutable once created.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Account belongs to exactly one customer. It carries no stored balance;
// the balance is always derived from the transfer ledger.
type Account struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Transfer is one append-only ledger entry. A nil FromAccountID marks a
// system transfer: value entering the ledger externally, such as an
// account's opening deposit.
type Transfer struct {
	ID            string          `json:"id"`
	FromAccountID *string         `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
