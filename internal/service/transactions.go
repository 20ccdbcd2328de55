package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/atinyakov/CropCircle/internal/models"
)

const (
	// DefaultTransactionLimit applies when the caller passes no limit.
	DefaultTransactionLimit = 20
	// MaxTransactionLimit caps a single page.
	MaxTransactionLimit = 100
)

// ErrInvalidTransaction is returned for a transaction without a title or currency.
var ErrInvalidTransaction = errors.New("title and currency are required")

// TransactionRepository defines the persistence operations needed by TransactionService.
type TransactionRepository interface {
	ListTransactions(ctx context.Context, email string, limit int) ([]models.Transaction, error)
	AddTransaction(ctx context.Context, email string, tx *models.Transaction) error
}

// TransactionService serves the dashboard's transactions tab.
type TransactionService struct {
	repo TransactionRepository
}

// NewTransactionService constructs a TransactionService with repo.
func NewTransactionService(repo TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// List returns the newest transactions for email. limit is clamped to
// (0, MaxTransactionLimit]; zero or negative selects DefaultTransactionLimit.
func (s *TransactionService) List(ctx context.Context, email string, limit int) ([]models.Transaction, error) {
	switch {
	case limit <= 0:
		limit = DefaultTransactionLimit
	case limit > MaxTransactionLimit:
		limit = MaxTransactionLimit
	}
	return s.repo.ListTransactions(ctx, email, limit)
}

// Add validates tx, assigns it an id and stores it.
func (s *TransactionService) Add(ctx context.Context, email string, tx models.Transaction) (*models.Transaction, error) {
	tx.Title = strings.TrimSpace(tx.Title)
	tx.Currency = strings.ToUpper(strings.TrimSpace(tx.Currency))
	if tx.Title == "" || tx.Currency == "" {
		return nil, ErrInvalidTransaction
	}
	tx.ID = uuid.NewString()
	if err := s.repo.AddTransaction(ctx, email, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
