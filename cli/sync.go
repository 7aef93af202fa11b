// ABOUTME: Snapshot sync CLI commands
// ABOUTME: Handles Drive OAuth setup, manual upload/download, and sync status
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"

	"github.com/harperreed/rigsync/snapshot"
	"github.com/harperreed/rigsync/store"
	"github.com/harperreed/rigsync/sync"
)

// SyncInitCommand handles Google Drive OAuth setup.
func SyncInitCommand(args []string) error {
	fs := flag.NewFlagSet("sync init", flag.ExitOnError)
	folder := fs.String("folder", "", "Drive folder ID to store the snapshot in")
	_ = fs.Parse(args)

	ctx := context.Background()

	config := snapshot.NewOAuthConfig()
	if config.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	// Start local server for OAuth callback
	callbackChan := make(chan *oauth2.Token)
	errChan := make(chan error)

	http.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Addr: ":8080"}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	authURL := config.AuthCodeURL("state", oauth2.AccessTypeOffline)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	// Wait for callback or error
	select {
	case token := <-callbackChan:
		_ = server.Shutdown(ctx)

		if err := snapshot.SaveToken(token); err != nil {
			return fmt.Errorf("failed to save token: %w", err)
		}

		cfg, err := sync.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load sync config: %w", err)
		}
		if *folder != "" {
			cfg.DriveFolderID = *folder
		}
		cfg.EnableSnapshot = true
		if err := sync.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save sync config: %w", err)
		}

		fmt.Printf("\n✓ Authenticated successfully\n")
		fmt.Printf("✓ Tokens saved to %s\n\n", snapshot.TokenPath())
		fmt.Println("Ready to sync! Run 'rigsync sync now' to synchronize data.")

		return nil

	case err := <-errChan:
		_ = server.Shutdown(ctx)
		return fmt.Errorf("OAuth flow failed: %w", err)
	}
}

// SyncNowCommand runs one download/upload pass against the Drive snapshot.
func SyncNowCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	uploadOnly := fs.Bool("upload-only", false, "Push local data without merging remote first")
	downloadOnly := fs.Bool("download-only", false, "Merge remote data without pushing")
	_ = fs.Parse(args)

	ctx := context.Background()

	syncer, err := newSnapshotSyncer(ctx, st)
	if err != nil {
		return err
	}

	if !*uploadOnly {
		status, err := syncer.Download(ctx)
		if err != nil {
			if errors.Is(err, sync.ErrMalformedData) {
				return fmt.Errorf("remote snapshot is unreadable, local data untouched: %w", err)
			}
			return fmt.Errorf("download failed: %w", err)
		}
		switch status {
		case sync.NoRemoteData:
			fmt.Println("  No remote snapshot yet")
		case sync.UpToDate:
			fmt.Println("  ✓ Local data already up to date")
		case sync.Applied:
			fmt.Println("  ✓ Remote changes merged")
		}
	}

	if !*downloadOnly {
		if err := syncer.Upload(ctx); err != nil {
			if errors.Is(err, sync.ErrConflict) {
				return fmt.Errorf("upload refused: %w (run 'rigsync sync now' again)", err)
			}
			return fmt.Errorf("upload failed: %w", err)
		}
		fmt.Println("  ✓ Snapshot uploaded")
	}

	return nil
}

// SyncStatusCommand shows snapshot and realtime sync configuration status.
func SyncStatusCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := sync.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load sync config: %w", err)
	}

	fmt.Println("Sync Status:")
	fmt.Printf("  Config path:   %s\n", sync.ConfigPath())
	fmt.Printf("  Device ID:     %s\n", cfg.DeviceID)

	fmt.Println("\nSnapshot (Google Drive):")
	if cfg.EnableSnapshot {
		fmt.Printf("  Enabled:       ✓ Yes\n")
	} else {
		fmt.Printf("  Enabled:       ✗ No (run 'rigsync sync init')\n")
	}
	if cfg.DriveFolderID != "" {
		fmt.Printf("  Folder:        %s\n", cfg.DriveFolderID)
	}
	if _, err := snapshot.LoadToken(); err == nil {
		fmt.Printf("  Token:         ✓ Present (%s)\n", snapshot.TokenPath())
	} else {
		fmt.Printf("  Token:         ✗ Missing (run 'rigsync sync init')\n")
	}
	if ts := sync.LastRemoteTimestamp(st); ts > 0 {
		fmt.Printf("  Last remote:   %s\n", time.UnixMilli(ts).Local().Format(time.RFC3339))
	} else {
		fmt.Printf("  Last remote:   never\n")
	}

	fmt.Println("\nRealtime (team server):")
	if cfg.EnableRealtime && cfg.RealtimeConfigured() {
		fmt.Printf("  Enabled:       ✓ Yes\n")
		fmt.Printf("  Server:        %s\n", cfg.ServerURL)
	} else {
		fmt.Printf("  Enabled:       ✗ No (run 'rigsync login')\n")
	}

	return nil
}

// newSnapshotSyncer wires the Drive client and syncer from saved credentials.
func newSnapshotSyncer(ctx context.Context, st store.Store) (*sync.SnapshotSyncer, error) {
	cfg, err := sync.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load sync config: %w", err)
	}

	token, err := snapshot.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("no authentication token found. Run 'rigsync sync init' first: %w", err)
	}

	drive, err := snapshot.NewDriveClient(ctx, token, cfg.DriveFolderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client: %w", err)
	}

	return sync.NewSnapshotSyncer(st, drive), nil
}

// openBrowser attempts to open URL in default browser.
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
