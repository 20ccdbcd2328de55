package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/CropCircle/internal/models"
)

// PostgresTransactionRepository stores dashboard ledger entries.
type PostgresTransactionRepository struct {
	DB *sql.DB
}

// NewPostgresTransactionRepository creates a PostgresTransactionRepository on db.
func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{DB: db}
}

// ListTransactions returns up to limit entries for email, newest first.
func (r *PostgresTransactionRepository) ListTransactions(ctx context.Context, email string, limit int) ([]models.Transaction, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, amount, currency, created_at
		  FROM transactions
		 WHERE user_email = $1
		 ORDER BY created_at DESC
		 LIMIT $2
	`, email, limit)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.Title, &tx.Amount, &tx.Currency, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return txs, nil
}

// AddTransaction inserts tx for email and fills in CreatedAt.
func (r *PostgresTransactionRepository) AddTransaction(ctx context.Context, email string, tx *models.Transaction) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO transactions (id, user_email, title, amount, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, tx.ID, email, tx.Title, tx.Amount, tx.Currency).Scan(&tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("AddTransaction: %w", err)
	}
	return nil
}
