// ABOUTME: Entry point for the rigsync CLI and TUI
// ABOUTME: Routes to sync, client, and session commands based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/rigsync/cli"
	"github.com/harperreed/rigsync/realtime"
	"github.com/harperreed/rigsync/snapshot"
	"github.com/harperreed/rigsync/store"
	"github.com/harperreed/rigsync/sync"
	"github.com/harperreed/rigsync/tui"
)

const version = "0.1.0"

func main() {
	// Optional .env for Google client credentials and RIGSYNC_* overrides
	_ = godotenv.Load()

	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dataDir := flag.String("data-dir", "", "Data directory (default: ~/.local/share/rigsync/data)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("rigsync version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "sync":
		if len(commandArgs) == 0 {
			fmt.Println("Error: sync requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		syncCommand := commandArgs[0]
		syncArgs := commandArgs[1:]

		switch syncCommand {
		case "init":
			if err := cli.SyncInitCommand(syncArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "now":
			st := openStore(*dataDir)
			defer st.Close()
			if err := cli.SyncNowCommand(st, syncArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "status":
			st := openStore(*dataDir)
			defer st.Close()
			if err := cli.SyncStatusCommand(st, syncArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "daemon":
			st := openStore(*dataDir)
			defer st.Close()
			if err := cli.SyncDaemonCommand(st, syncArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown sync command: %s\n\n", syncCommand)
			printUsage()
			os.Exit(1)
		}

	case "clients":
		if len(commandArgs) == 0 {
			fmt.Println("Error: clients requires a subcommand")
			printUsage()
			os.Exit(1)
		}

		st := openStore(*dataDir)
		defer st.Close()

		clientCommand := commandArgs[0]
		clientArgs := commandArgs[1:]

		switch clientCommand {
		case "add":
			if err := cli.AddClientCommand(st, clientArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "list":
			if err := cli.ListClientsCommand(st, clientArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "show":
			if err := cli.ShowClientCommand(st, clientArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		case "delete":
			if err := cli.DeleteClientCommand(st, clientArgs); err != nil {
				log.Fatalf("Error: %v", err)
			}
		default:
			fmt.Printf("Unknown clients command: %s\n\n", clientCommand)
			printUsage()
			os.Exit(1)
		}

	case "login":
		if err := cli.LoginCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "logout":
		if err := cli.LogoutCommand(commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "tui":
		st := openStore(*dataDir)
		defer st.Close()
		if err := runTUI(st); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runTUI wires up whichever sync backends are configured and starts the
// dashboard. Both backends are optional; the dashboard shows what it has.
func runTUI(st store.Store) error {
	ctx := context.Background()

	cfg, err := sync.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load sync config: %w", err)
	}

	var syncer *sync.SnapshotSyncer
	if cfg.EnableSnapshot {
		if token, err := snapshot.LoadToken(); err == nil {
			drive, err := snapshot.NewDriveClient(ctx, token, cfg.DriveFolderID)
			if err != nil {
				return fmt.Errorf("failed to create Drive client: %w", err)
			}
			syncer = sync.NewSnapshotSyncer(st, drive)
		}
	}

	var adapter *realtime.Adapter
	var engine *sync.Engine
	if cfg.EnableRealtime && cfg.RealtimeConfigured() {
		adapter = realtime.NewAdapter(cfg.ServerURL, cfg.AuthToken, cfg.DeviceID)
		if err := adapter.Connect(ctx); err != nil {
			log.Printf("Realtime server unreachable, continuing offline: %v", err)
		}
		engine = sync.NewEngine(st, adapter)
		engine.SetEnabled(true)
		if err := engine.Start(ctx); err != nil {
			log.Printf("Realtime sync unavailable: %v", err)
			engine = nil
		} else {
			defer engine.Stop()
		}
		defer adapter.Disconnect()
	}

	return tui.Run(st, syncer, adapter, engine)
}

func openStore(dataDir string) *store.BadgerStore {
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, "rigsync", "data")
	}
	st, err := store.OpenBadger(dataDir)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	return st
}

func printUsage() {
	fmt.Printf(`rigsync v%s - Field data sync for drilling crews

USAGE:
  rigsync [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --data-dir <path>      Data directory (default: ~/.local/share/rigsync/data)

COMMANDS:
  sync                   Snapshot sync against Google Drive
  clients                Client record management
  login                  Authenticate with the realtime sync server
  logout                 Clear realtime credentials
  tui                    Interactive sync dashboard

SYNC COMMANDS:
  rigsync sync init         Set up Google Drive OAuth
    --folder <id>             Drive folder ID for the snapshot file

  rigsync sync now          Run one download/upload pass
    --upload-only             Push local data without merging remote first
    --download-only           Merge remote data without pushing

  rigsync sync status       Show sync configuration and last-sync times

  rigsync sync daemon       Sync on an interval until interrupted
    --interval <dur>          Sync interval, minimum 5m (default: 1h)

CLIENT COMMANDS:
  rigsync clients add       Add a new client
    --name <name>             Client name (required)
    --address <addr>          Billing address
    --rate <n>                Billing rate
    --rate-type <type>        per_hour or per_foot (default per_hour)
    --contact <name>          Primary contact name
    --contact-email <email>   Primary contact email
    --contact-phone <phone>   Primary contact phone
    --notes <notes>           Notes about the client

  rigsync clients list      List clients
  rigsync clients show <name>    Show one client with contacts
  rigsync clients delete <name>  Delete a client

SESSION:
  rigsync login             Authenticate with the realtime sync server
    --server <url>            Server URL (ws:// or wss://)
`, version)
}
