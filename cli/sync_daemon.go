// ABOUTME: Background sync daemon: periodic snapshot sync on a ticker
// ABOUTME: Runs an immediate first pass, then repeats until SIGINT/SIGTERM
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/rigsync/store"
)

// minDaemonInterval guards against hammering the Drive API.
const minDaemonInterval = 5 * time.Minute

// SyncDaemonCommand runs snapshot sync on an interval until interrupted.
func SyncDaemonCommand(st store.Store, args []string) error {
	fs := flag.NewFlagSet("sync daemon", flag.ExitOnError)
	intervalFlag := fs.String("interval", "1h", "Sync interval (e.g. 15m, 1h)")
	_ = fs.Parse(args)

	interval, err := parseInterval(*intervalFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Sync daemon started (interval: %s)\n", interval)

	// First sync runs immediately; the ticker covers the rest.
	runDaemonPass(ctx, st)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nSync daemon stopping")
			return nil
		case <-ticker.C:
			runDaemonPass(ctx, st)
		}
	}
}

// parseInterval parses and validates the daemon interval flag.
func parseInterval(s string) (time.Duration, error) {
	interval, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if interval < minDaemonInterval {
		return 0, fmt.Errorf("interval %s is below the minimum of %s", interval, minDaemonInterval)
	}
	return interval, nil
}

func runDaemonPass(ctx context.Context, st store.Store) {
	stamp := time.Now().Format("15:04:05")

	syncer, err := newSnapshotSyncer(ctx, st)
	if err != nil {
		fmt.Printf("[%s] ✗ Sync unavailable: %v\n", stamp, err)
		return
	}

	status, err := syncer.Download(ctx)
	if err != nil {
		fmt.Printf("[%s] ✗ Download failed: %v\n", stamp, err)
		return
	}
	if err := syncer.Upload(ctx); err != nil {
		fmt.Printf("[%s] ✗ Upload failed: %v\n", stamp, err)
		return
	}

	fmt.Printf("[%s] ✓ Sync completed (%s)\n", stamp, status)
}
