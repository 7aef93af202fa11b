package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

func newTestInvoice() models.Invoice {
	return models.Invoice{
		ClientID:   uuid.New(),
		ClientName: "Acme Drilling",
		Lines: []models.InvoiceLine{
			{Description: "Rig time", Quantity: 8, UnitRate: 120},
			{Description: "Mobilization", Quantity: 1, UnitRate: 500},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewInvoiceService(store.NewMemory(), notifier)

	inv, err := svc.Create(context.Background(), newTestInvoice())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", inv.Number)
	assert.Equal(t, models.InvoiceDraft, inv.Status)
	assert.Equal(t, 960.0, inv.Lines[0].Amount)
	assert.Equal(t, 500.0, inv.Lines[1].Amount)
	assert.Equal(t, 1460.0, inv.Total)
	assert.False(t, inv.IssuedAt.IsZero())
	assert.Equal(t, 1, notifier.count("invoices"))

	second, err := svc.Create(context.Background(), newTestInvoice())
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", second.Number)
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc := NewInvoiceService(store.NewMemory(), NopNotifier{})
	ctx := context.Background()

	inv := newTestInvoice()
	inv.ClientID = uuid.Nil
	_, err := svc.Create(ctx, inv)
	assert.Error(t, err)

	inv = newTestInvoice()
	inv.Lines = nil
	_, err = svc.Create(ctx, inv)
	assert.Error(t, err)
}

func TestInvoiceStatusTransitions(t *testing.T) {
	svc := NewInvoiceService(store.NewMemory(), NopNotifier{})
	ctx := context.Background()

	inv, err := svc.Create(ctx, newTestInvoice())
	require.NoError(t, err)

	// Draft cannot be paid directly
	require.Error(t, svc.MarkPaid(ctx, inv.ID))

	require.NoError(t, svc.MarkSent(ctx, inv.ID))
	require.Error(t, svc.MarkSent(ctx, inv.ID), "sending twice")

	outstanding, err := svc.Outstanding()
	require.NoError(t, err)
	assert.Equal(t, inv.Total, outstanding)

	require.NoError(t, svc.MarkPaid(ctx, inv.ID))

	invoices, err := svc.List()
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, models.InvoicePaid, invoices[0].Status)
	require.NotNil(t, invoices[0].PaidAt)

	outstanding, err = svc.Outstanding()
	require.NoError(t, err)
	assert.Zero(t, outstanding)
}

func TestTransitionMissingInvoice(t *testing.T) {
	svc := NewInvoiceService(store.NewMemory(), NopNotifier{})
	err := svc.MarkSent(context.Background(), uuid.New())
	assert.Error(t, err)
}
