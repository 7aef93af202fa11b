// ABOUTME: Shared CLI plumbing: store-backed service construction and sync notification
// ABOUTME: Commands receive an open Store from main and build what they need per invocation
package cli

import (
	"context"
	"fmt"

	"github.com/harperreed/rigsync/realtime"
	"github.com/harperreed/rigsync/services"
	"github.com/harperreed/rigsync/store"
	"github.com/harperreed/rigsync/sync"
)

// newNotifier builds the collection-change notifier for a one-shot command.
// When realtime sync is configured and enabled it connects, pulls the current
// remote state, and returns a live engine so the command's mutation is pushed
// before the process exits. Connection failure degrades to local-only: the
// command still runs and the change rides the next snapshot upload.
func newNotifier(ctx context.Context, st store.Store) (services.Notifier, func()) {
	cfg, err := sync.LoadConfig()
	if err != nil || !cfg.EnableRealtime || !cfg.RealtimeConfigured() {
		return services.NopNotifier{}, func() {}
	}

	adapter := realtime.NewAdapter(cfg.ServerURL, cfg.AuthToken, cfg.DeviceID)
	if err := adapter.Connect(ctx); err != nil {
		fmt.Printf("Warning: realtime server unreachable, saving locally only: %v\n", err)
		return services.NopNotifier{}, func() {}
	}

	engine := sync.NewEngine(st, adapter)
	engine.SetEnabled(true)
	if err := engine.Start(ctx); err != nil {
		fmt.Printf("Warning: realtime sync unavailable, saving locally only: %v\n", err)
		adapter.Disconnect()
		return services.NopNotifier{}, func() {}
	}

	return engine, func() {
		engine.Stop()
		adapter.Disconnect()
	}
}
