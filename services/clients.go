// ABOUTME: Client records service with name uniqueness and primary-contact invariants
// ABOUTME: Reads/writes the whole clients collection and signals the sync engine after mutations
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

const clientsKey = "clients"

// ClientService manages the clients collection.
type ClientService struct {
	store store.Store
	sync  Notifier
}

// NewClientService creates a client service.
func NewClientService(s store.Store, n Notifier) *ClientService {
	return &ClientService{store: s, sync: n}
}

// List returns all clients.
func (s *ClientService) List() ([]models.Client, error) {
	var clients []models.Client
	if _, err := s.store.Get(clientsKey, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Get returns one client by ID, or nil when not found.
func (s *ClientService) Get(id uuid.UUID) (*models.Client, error) {
	clients, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, nil
}

// FindByName returns the client with the given name, matched
// case-insensitively, or nil when not found.
func (s *ClientService) FindByName(name string) (*models.Client, error) {
	clients, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if strings.EqualFold(clients[i].Name, name) {
			return &clients[i], nil
		}
	}
	return nil, nil
}

// Create validates and adds a client, then signals the sync engine.
// Name uniqueness is checked against the full in-memory collection: it is a
// local invariant, not a distributed guarantee.
func (s *ClientService) Create(ctx context.Context, client models.Client) (*models.Client, error) {
	clients, err := s.List()
	if err != nil {
		return nil, err
	}
	if err := validateClient(&client, clients, uuid.Nil); err != nil {
		return nil, err
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	normalizeContacts(&client)

	clients = append(clients, client)
	if err := s.store.Set(clientsKey, clients); err != nil {
		return nil, err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, clientsKey); err != nil {
		return &client, fmt.Errorf("client saved locally but sync failed: %w", err)
	}
	return &client, nil
}

// Update validates and replaces an existing client.
func (s *ClientService) Update(ctx context.Context, client models.Client) error {
	clients, err := s.List()
	if err != nil {
		return err
	}
	if err := validateClient(&client, clients, client.ID); err != nil {
		return err
	}
	normalizeContacts(&client)

	updated := false
	for i := range clients {
		if clients[i].ID == client.ID {
			clients[i] = client
			updated = true
			break
		}
	}
	if !updated {
		return validationErrorf("client %s not found", client.ID)
	}

	if err := s.store.Set(clientsKey, clients); err != nil {
		return err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, clientsKey); err != nil {
		return fmt.Errorf("client saved locally but sync failed: %w", err)
	}
	return nil
}

// Delete removes a client. Contacts are owned by the client and go with it.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	clients, err := s.List()
	if err != nil {
		return err
	}
	kept := clients[:0]
	for _, c := range clients {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(clients) {
		return nil
	}

	if err := s.store.Set(clientsKey, kept); err != nil {
		return err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, clientsKey); err != nil {
		return fmt.Errorf("client removed locally but sync failed: %w", err)
	}
	return nil
}

// validateClient enforces the record invariants. selfID exempts the record
// being updated from its own uniqueness check.
func validateClient(client *models.Client, existing []models.Client, selfID uuid.UUID) error {
	if strings.TrimSpace(client.Name) == "" {
		return validationErrorf("client name is required")
	}
	switch client.RateType {
	case models.RatePerFoot, models.RatePerHour:
	case "":
		client.RateType = models.RatePerHour
	default:
		return validationErrorf("unknown rate type %q", client.RateType)
	}
	for i := range existing {
		if existing[i].ID != selfID && strings.EqualFold(existing[i].Name, client.Name) {
			return validationErrorf("a client named %q already exists", existing[i].Name)
		}
	}
	return nil
}

// normalizeContacts assigns missing contact IDs and enforces that at most
// one contact is primary: the first flagged contact keeps the flag.
func normalizeContacts(client *models.Client) {
	sawPrimary := false
	for i := range client.Contacts {
		if client.Contacts[i].ID == uuid.Nil {
			client.Contacts[i].ID = uuid.New()
		}
		if client.Contacts[i].IsPrimary {
			if sawPrimary {
				client.Contacts[i].IsPrimary = false
			}
			sawPrimary = true
		}
	}
}
