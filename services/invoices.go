// ABOUTME: Invoice service with line-amount computation and status transitions
// ABOUTME: Numbers are sequential per device; totals derive from line quantity times unit rate
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

const invoicesKey = "invoices"

// InvoiceService manages the invoices collection.
type InvoiceService struct {
	store store.Store
	sync  Notifier
}

// NewInvoiceService creates an invoice service.
func NewInvoiceService(s store.Store, n Notifier) *InvoiceService {
	return &InvoiceService{store: s, sync: n}
}

// List returns all invoices.
func (s *InvoiceService) List() ([]models.Invoice, error) {
	var invoices []models.Invoice
	if _, err := s.store.Get(invoicesKey, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Create validates the invoice, computes line amounts and the total, assigns
// an ID and number, and stores it as a draft.
func (s *InvoiceService) Create(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	if inv.ClientID == uuid.Nil {
		return nil, validationErrorf("invoice requires a client")
	}
	if len(inv.Lines) == 0 {
		return nil, validationErrorf("invoice requires at least one line")
	}

	invoices, err := s.List()
	if err != nil {
		return nil, err
	}

	inv.ID = uuid.New()
	if inv.Number == "" {
		inv.Number = fmt.Sprintf("INV-%04d", len(invoices)+1)
	}
	inv.Status = models.InvoiceDraft
	if inv.IssuedAt.IsZero() {
		inv.IssuedAt = time.Now()
	}

	inv.Total = 0
	for i := range inv.Lines {
		inv.Lines[i].Amount = inv.Lines[i].Quantity * inv.Lines[i].UnitRate
		inv.Total += inv.Lines[i].Amount
	}

	invoices = append(invoices, inv)
	if err := s.store.Set(invoicesKey, invoices); err != nil {
		return nil, err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, invoicesKey); err != nil {
		return &inv, fmt.Errorf("invoice saved locally but sync failed: %w", err)
	}
	return &inv, nil
}

// MarkSent moves a draft invoice to sent.
func (s *InvoiceService) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, models.InvoiceDraft, models.InvoiceSent, nil)
}

// MarkPaid moves a sent invoice to paid and stamps the payment time.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return s.transition(ctx, id, models.InvoiceSent, models.InvoicePaid, &now)
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, from, to string, paidAt *time.Time) error {
	invoices, err := s.List()
	if err != nil {
		return err
	}
	for i := range invoices {
		if invoices[i].ID != id {
			continue
		}
		if invoices[i].Status != from {
			return validationErrorf("invoice %s is %s, expected %s", invoices[i].Number, invoices[i].Status, from)
		}
		invoices[i].Status = to
		if paidAt != nil {
			invoices[i].PaidAt = paidAt
		}
		if err := s.store.Set(invoicesKey, invoices); err != nil {
			return err
		}
		if err := s.sync.NotifyCollectionChanged(ctx, invoicesKey); err != nil {
			return fmt.Errorf("invoice saved locally but sync failed: %w", err)
		}
		return nil
	}
	return validationErrorf("invoice %s not found", id)
}

// Outstanding sums the totals of invoices that are sent but unpaid.
func (s *InvoiceService) Outstanding() (float64, error) {
	invoices, err := s.List()
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, inv := range invoices {
		if inv.Status == models.InvoiceSent {
			sum += inv.Total
		}
	}
	return sum, nil
}
