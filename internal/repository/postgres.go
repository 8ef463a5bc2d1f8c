package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/shanegrouber/meow-bank-api/internal/models"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same query code serves both auto-commit calls and calls inside a unit.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore is the PostgreSQL-backed Store. All three tables are
// insert-only; no query here ever updates or deletes a row.
type PostgresStore struct {
	queries
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{queries: queries{db: db}, db: db}
}

// InTx runs fn inside one transaction. Read committed suffices here because
// every balance read that competes with a writer goes through
// GetAccountForUpdate's row lock first (see TransferService).
func (s *PostgresStore) InTx(ctx context.Context, fn func(q Queries) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type queries struct {
	db dbtx
}

func (q queries) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := q.db.ExecContext(ctx, query, customer.ID, customer.Name, customer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (q queries) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	query := `
		SELECT id, name, created_at
		FROM customers
		WHERE id = $1
	`
	var c models.Customer
	err := q.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (q queries) AccountIDsByCustomer(ctx context.Context, customerID string) ([]string, error) {
	query := `
		SELECT id
		FROM accounts
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := q.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (q queries) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, customer_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := q.db.ExecContext(ctx, query, account.ID, account.CustomerID, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (q queries) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, customer_id, created_at
		FROM accounts
		WHERE id = $1
	`
	return q.scanAccount(q.db.QueryRowContext(ctx, query, id))
}

// GetAccountForUpdate locks the account row for the remainder of the
// enclosing transaction. This is the serialisation point for all debits
// against one account: a concurrent debitor blocks here until the first
// transaction commits, and its later balance aggregation then sees the
// committed transfer.
func (q queries) GetAccountForUpdate(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, customer_id, created_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	return q.scanAccount(q.db.QueryRowContext(ctx, query, id))
}

func (q queries) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.CustomerID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (q queries) AccountsByIDs(ctx context.Context, ids []string) ([]models.Account, error) {
	query := `
		SELECT id, customer_id, created_at
		FROM accounts
		WHERE id = ANY($1)
		ORDER BY created_at DESC
	`
	rows, err := q.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (q queries) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	query := `
		INSERT INTO transfers (id, from_account_id, to_account_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.db.ExecContext(ctx, query,
		transfer.ID, transfer.FromAccountID, transfer.ToAccountID,
		transfer.Amount, transfer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (q queries) GetTransfer(ctx context.Context, id string) (*models.Transfer, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount, created_at
		FROM transfers
		WHERE id = $1
	`
	var t models.Transfer
	var from sql.NullString
	err := q.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &from, &t.ToAccountID, &t.Amount, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	if from.Valid {
		t.FromAccountID = &from.String
	}
	return &t, nil
}

func (q queries) TransfersFrom(ctx context.Context, accountID string) ([]models.Transfer, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount, created_at
		FROM transfers
		WHERE from_account_id = $1
		ORDER BY created_at
	`
	return q.listTransfers(ctx, query, accountID)
}

func (q queries) TransfersTo(ctx context.Context, accountID string) ([]models.Transfer, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount, created_at
		FROM transfers
		WHERE to_account_id = $1
		ORDER BY created_at
	`
	return q.listTransfers(ctx, query, accountID)
}

func (q queries) listTransfers(ctx context.Context, query, accountID string) ([]models.Transfer, error) {
	rows, err := q.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		var from sql.NullString
		if err := rows.Scan(&t.ID, &from, &t.ToAccountID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		if from.Valid {
			t.FromAccountID = &from.String
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// Balance is credits minus debits over the whole ledger for one account.
// An account with no transfers, or an unknown id, sums to zero.
func (q queries) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE((SELECT SUM(amount) FROM transfers WHERE to_account_id = $1), 0)
		     - COALESCE((SELECT SUM(amount) FROM transfers WHERE from_account_id = $1), 0)
	`
	var balance decimal.Decimal
	if err := q.db.QueryRowContext(ctx, query, accountID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}
	return balance, nil
}

// Balances computes every requested balance in one aggregation pass: one
// grouped sum per direction over the requested id set, outer-joined on the
// account id with zero substituted for a missing side.
func (q queries) Balances(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal, len(accountIDs))
	if len(accountIDs) == 0 {
		return balances, nil
	}
	for _, id := range accountIDs {
		balances[id] = decimal.Zero
	}

	query := `
		SELECT a.id, COALESCE(cr.total, 0) - COALESCE(db.total, 0) AS balance
		FROM accounts a
		LEFT JOIN (
			SELECT to_account_id AS account_id, SUM(amount) AS total
			FROM transfers
			WHERE to_account_id = ANY($1)
			GROUP BY to_account_id
		) cr ON cr.account_id = a.id
		LEFT JOIN (
			SELECT from_account_id AS account_id, SUM(amount) AS total
			FROM transfers
			WHERE from_account_id = ANY($1)
			GROUP BY from_account_id
		) db ON db.account_id = a.id
		WHERE a.id = ANY($1)
	`
	rows, err := q.db.QueryContext(ctx, query, pq.Array(accountIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to compute balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var balance decimal.Decimal
		if err := rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances[id] = balance
	}
	return balances, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
