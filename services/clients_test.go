package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

// recordingNotifier captures collection-changed signals.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) NotifyCollectionChanged(_ context.Context, name string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, name)
	return nil
}

func (n *recordingNotifier) count(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, call := range n.calls {
		if call == name {
			c++
		}
	}
	return c
}

func TestCreateClient(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewClientService(store.NewMemory(), notifier)

	created, err := svc.Create(context.Background(), models.Client{Name: "Acme Drilling", BillingRate: 180})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, models.RatePerHour, created.RateType, "rate type defaults to per_hour")
	assert.Equal(t, 1, notifier.count("clients"))

	clients, err := svc.List()
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestDuplicateNameRejected(t *testing.T) {
	svc := NewClientService(store.NewMemory(), NopNotifier{})
	ctx := context.Background()

	_, err := svc.Create(ctx, models.Client{Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.Client{Name: "ACME"})
	require.Error(t, err)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr), "duplicate name must be a ValidationError")

	// Updating a client keeps its own name without tripping the check
	existing, err := svc.FindByName("acme")
	require.NoError(t, err)
	require.NotNil(t, existing)
	existing.BillingRate = 200
	require.NoError(t, svc.Update(ctx, *existing))
}

func TestPrimaryContactNormalization(t *testing.T) {
	svc := NewClientService(store.NewMemory(), NopNotifier{})

	created, err := svc.Create(context.Background(), models.Client{
		Name: "Bore Co",
		Contacts: []models.Contact{
			{Name: "Ann", IsPrimary: true},
			{Name: "Ben", IsPrimary: true},
			{Name: "Cal"},
		},
	})
	require.NoError(t, err)

	primaries := 0
	for _, c := range created.Contacts {
		assert.NotEqual(t, uuid.Nil, c.ID)
		if c.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
	assert.Equal(t, "Ann", created.PrimaryContact().Name)
}

func TestPrimaryContactFallback(t *testing.T) {
	c := models.Client{Contacts: []models.Contact{{Name: "First"}, {Name: "Second"}}}
	assert.Equal(t, "First", c.PrimaryContact().Name)

	empty := models.Client{}
	assert.Nil(t, empty.PrimaryContact())
}

func TestUpdateMissingClient(t *testing.T) {
	svc := NewClientService(store.NewMemory(), NopNotifier{})
	err := svc.Update(context.Background(), models.Client{ID: uuid.New(), Name: "Ghost"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDeleteClient(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewClientService(store.NewMemory(), notifier)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.Client{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	clients, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, clients)
	assert.Equal(t, 2, notifier.count("clients"))

	// Deleting a missing client neither errors nor signals
	require.NoError(t, svc.Delete(ctx, uuid.New()))
	assert.Equal(t, 2, notifier.count("clients"))
}
