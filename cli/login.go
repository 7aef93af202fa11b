// ABOUTME: Realtime sync server login command
// ABOUTME: Prompts for a shared team token (hidden input) and verifies the connection
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/harperreed/rigsync/realtime"
	"github.com/harperreed/rigsync/sync"
)

// LoginCommand authenticates against the realtime sync server and saves the
// credentials on success.
func LoginCommand(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := fs.String("server", "", "Realtime sync server URL (ws:// or wss://)")
	_ = fs.Parse(args)

	cfg, err := sync.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load sync config: %w", err)
	}

	serverURL := *server
	if serverURL == "" {
		serverURL = cfg.ServerURL
	}
	if serverURL == "" {
		fmt.Print("Server URL: ")
		if _, err := fmt.Scanln(&serverURL); err != nil {
			return fmt.Errorf("failed to read server URL: %w", err)
		}
		serverURL = strings.TrimSpace(serverURL)
	}

	// Prompt for token (hidden)
	fmt.Print("Team token: ")
	tokenBytes, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	fmt.Println() // New line after hidden input
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	// Verify by connecting and authenticating
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	adapter := realtime.NewAdapter(serverURL, token, cfg.DeviceID)
	if err := adapter.Connect(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	adapter.Disconnect()

	cfg.ServerURL = serverURL
	cfg.AuthToken = token
	cfg.EnableRealtime = true
	if err := sync.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save sync config: %w", err)
	}

	fmt.Println("\n✓ Authentication successful!")
	fmt.Printf("✓ Device ID: %s\n", cfg.DeviceID)
	fmt.Printf("✓ Configuration saved to %s\n", sync.ConfigPath())
	fmt.Println("\nLive sync is now enabled for this device.")

	return nil
}

// LogoutCommand clears realtime credentials and disables live sync.
func LogoutCommand(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := sync.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load sync config: %w", err)
	}

	cfg.AuthToken = ""
	cfg.EnableRealtime = false
	if err := sync.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save sync config: %w", err)
	}

	fmt.Println("✓ Logged out. Local data is untouched.")
	return nil
}
