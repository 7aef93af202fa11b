// ABOUTME: Client CLI commands
// ABOUTME: Human-friendly commands for managing drilling clients and their contacts
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/services"
	"github.com/harperreed/rigsync/store"
)

// AddClientCommand adds a new client
func AddClientCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("add-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name (required)")
	address := fs.String("address", "", "Billing address")
	rate := fs.Float64("rate", 0, "Billing rate")
	rateType := fs.String("rate-type", "", "Rate type: per_hour or per_foot (default per_hour)")
	notes := fs.String("notes", "", "Notes about the client")
	contactName := fs.String("contact", "", "Primary contact name")
	contactEmail := fs.String("contact-email", "", "Primary contact email")
	contactPhone := fs.String("contact-phone", "", "Primary contact phone")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	client := models.Client{
		Name:        *name,
		Address:     *address,
		BillingRate: *rate,
		RateType:    *rateType,
		Notes:       *notes,
	}
	if *contactName != "" {
		client.Contacts = []models.Contact{{
			Name:      *contactName,
			Email:     *contactEmail,
			Phone:     *contactPhone,
			IsPrimary: true,
		}}
	}

	ctx := context.Background()
	notifier, shutdown := newNotifier(ctx, st)
	defer shutdown()

	created, err := services.NewClientService(st, notifier).Create(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Printf("✓ Client created: %s (ID: %s)\n", created.Name, created.ID)
	if created.BillingRate > 0 {
		fmt.Printf("  Rate: %.2f (%s)\n", created.BillingRate, created.RateType)
	}
	if pc := created.PrimaryContact(); pc != nil {
		fmt.Printf("  Contact: %s\n", pc.Name)
	}

	return nil
}

// ListClientsCommand lists all clients
func ListClientsCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ExitOnError)
	_ = fs.Parse(args)

	clients, err := services.NewClientService(st, services.NopNotifier{}).List()
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	if len(clients) == 0 {
		fmt.Println("No clients found")
		return nil
	}

	// Pretty print results
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRATE\tCONTACT\tID")
	fmt.Fprintln(w, "----\t----\t-------\t--")

	for _, client := range clients {
		contact := "-"
		if pc := client.PrimaryContact(); pc != nil {
			contact = pc.Name
		}
		fmt.Fprintf(w, "%s\t%.2f %s\t%s\t%s\n",
			client.Name, client.BillingRate, client.RateType, contact, client.ID.String()[:8])
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d client(s)\n", len(clients))
	return nil
}

// ShowClientCommand prints one client with all contacts
func ShowClientCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("show-client", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: rigsync clients show <name>")
	}
	name := fs.Arg(0)

	client, err := services.NewClientService(st, services.NopNotifier{}).FindByName(name)
	if err != nil {
		return fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("no client named %q", name)
	}

	fmt.Printf("%s (ID: %s)\n", client.Name, client.ID)
	if client.Address != "" {
		fmt.Printf("  Address:  %s\n", client.Address)
	}
	fmt.Printf("  Rate:     %.2f (%s)\n", client.BillingRate, client.RateType)
	if client.Notes != "" {
		fmt.Printf("  Notes:    %s\n", client.Notes)
	}
	if len(client.Contacts) > 0 {
		fmt.Println("  Contacts:")
		for _, c := range client.Contacts {
			marker := " "
			if c.IsPrimary {
				marker = "*"
			}
			fmt.Printf("    %s %s", marker, c.Name)
			if c.Email != "" {
				fmt.Printf(" <%s>", c.Email)
			}
			if c.Phone != "" {
				fmt.Printf(" %s", c.Phone)
			}
			fmt.Println()
		}
	}

	return nil
}

// DeleteClientCommand removes a client by name
func DeleteClientCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("delete-client", flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: rigsync clients delete <name>")
	}
	name := fs.Arg(0)

	ctx := context.Background()
	notifier, shutdown := newNotifier(ctx, st)
	defer shutdown()

	svc := services.NewClientService(st, notifier)
	client, err := svc.FindByName(name)
	if err != nil {
		return fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return fmt.Errorf("no client named %q", name)
	}

	if err := svc.Delete(ctx, client.ID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	fmt.Printf("✓ Client deleted: %s\n", client.Name)
	return nil
}
