// ABOUTME: Expense records service with period totals
// ABOUTME: Stores the whole expenses collection and signals the sync engine after mutations
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

const expensesKey = "expenses"

// ExpenseService manages the expenses collection.
type ExpenseService struct {
	store store.Store
	sync  Notifier
}

// NewExpenseService creates an expense service.
func NewExpenseService(s store.Store, n Notifier) *ExpenseService {
	return &ExpenseService{store: s, sync: n}
}

// List returns all expenses.
func (s *ExpenseService) List() ([]models.Expense, error) {
	var expenses []models.Expense
	if _, err := s.store.Get(expensesKey, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// Add validates and stores an expense.
func (s *ExpenseService) Add(ctx context.Context, e models.Expense) (*models.Expense, error) {
	if _, err := time.Parse(isoDate, e.Date); err != nil {
		return nil, validationErrorf("expense date %q is not an ISO date", e.Date)
	}
	if e.Amount <= 0 {
		return nil, validationErrorf("expense amount must be positive")
	}
	if e.Category == "" {
		return nil, validationErrorf("expense category is required")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	expenses, err := s.List()
	if err != nil {
		return nil, err
	}
	expenses = append(expenses, e)

	if err := s.store.Set(expensesKey, expenses); err != nil {
		return nil, err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, expensesKey); err != nil {
		return &e, fmt.Errorf("expense saved locally but sync failed: %w", err)
	}
	return &e, nil
}

// TotalForRange sums expenses with from <= date <= to (ISO dates, inclusive).
func (s *ExpenseService) TotalForRange(from, to string) (float64, error) {
	expenses, err := s.List()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, e := range expenses {
		if e.Date >= from && e.Date <= to {
			sum += e.Amount
		}
	}
	return sum, nil
}
