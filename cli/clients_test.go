// ABOUTME: Tests for client CLI commands
// ABOUTME: Exercises flag parsing and command flow over an in-memory store
package cli

import (
	"strings"
	"testing"

	"github.com/harperreed/rigsync/store"
)

func TestAddClientCommand_RequiresName(t *testing.T) {
	st := store.NewMemory()

	err := AddClientCommand(st, []string{})
	if err == nil {
		t.Fatal("expected error when --name is missing, got nil")
	}
	if !strings.Contains(err.Error(), "--name") {
		t.Errorf("expected error to mention --name, got: %v", err)
	}
}

func TestAddAndListClients(t *testing.T) {
	st := store.NewMemory()

	err := AddClientCommand(st, []string{
		"--name", "Acme Drilling",
		"--rate", "180",
		"--contact", "Ann",
		"--contact-email", "ann@acme.test",
	})
	if err != nil {
		t.Fatalf("add-client failed: %v", err)
	}

	// Duplicate names are rejected case-insensitively
	err = AddClientCommand(st, []string{"--name", "ACME DRILLING"})
	if err == nil {
		t.Error("expected duplicate-name error, got nil")
	}

	if err := ListClientsCommand(st, []string{}); err != nil {
		t.Errorf("list-clients failed: %v", err)
	}
	if err := ShowClientCommand(st, []string{"acme drilling"}); err != nil {
		t.Errorf("show-client failed: %v", err)
	}
}

func TestDeleteClientCommand(t *testing.T) {
	st := store.NewMemory()

	if err := AddClientCommand(st, []string{"--name", "Bore Co"}); err != nil {
		t.Fatalf("add-client failed: %v", err)
	}
	if err := DeleteClientCommand(st, []string{"Bore Co"}); err != nil {
		t.Fatalf("delete-client failed: %v", err)
	}
	if err := DeleteClientCommand(st, []string{"Bore Co"}); err == nil {
		t.Error("expected error deleting a missing client, got nil")
	}
}
