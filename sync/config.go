// ABOUTME: Sync configuration and device identity management
// ABOUTME: Handles config storage at XDG paths, environment variable overrides, and device ID generation
package sync

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"
)

// Config stores the sync backend endpoints and per-backend enable flags.
type Config struct {
	ServerURL      string `json:"server_url,omitempty"`
	AuthToken      string `json:"auth_token,omitempty"`
	DeviceID       string `json:"device_id"`
	DriveFolderID  string `json:"drive_folder_id,omitempty"`
	EnableRealtime bool   `json:"enable_realtime"`
	EnableSnapshot bool   `json:"enable_snapshot"`
}

// ConfigDir returns the XDG-compliant directory for sync configuration.
func ConfigDir() string {
	return filepath.Join(xdg.DataHome, "rigsync")
}

// ConfigPath returns the XDG-compliant path for the sync config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "sync-config.json")
}

// LoadConfig loads sync configuration from the XDG data directory.
// Returns a default config with a fresh device ID if the file is absent.
// Environment variables override file values:
// - RIGSYNC_SERVER
// - RIGSYNC_TOKEN
// - RIGSYNC_DEVICE_ID
// - RIGSYNC_DRIVE_FOLDER.
func LoadConfig() (*Config, error) {
	path := ConfigPath()

	cfg := &Config{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			cfg.ensureDeviceID()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open sync config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode sync config: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.ensureDeviceID()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if server := os.Getenv("RIGSYNC_SERVER"); server != "" {
		cfg.ServerURL = server
	}
	if token := os.Getenv("RIGSYNC_TOKEN"); token != "" {
		cfg.AuthToken = token
	}
	if deviceID := os.Getenv("RIGSYNC_DEVICE_ID"); deviceID != "" {
		cfg.DeviceID = deviceID
	}
	if folder := os.Getenv("RIGSYNC_DRIVE_FOLDER"); folder != "" {
		cfg.DriveFolderID = folder
	}
}

func (c *Config) ensureDeviceID() {
	if c.DeviceID == "" {
		c.DeviceID = GenerateDeviceID()
	}
}

// SaveConfig saves sync configuration to the XDG data directory.
func SaveConfig(cfg *Config) error {
	path := ConfigPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create sync config directory: %w", err)
	}

	// Restricted permissions: the file carries the auth token
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create sync config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode sync config: %w", err)
	}

	return nil
}

// RealtimeConfigured checks whether the realtime backend has what it needs.
func (c *Config) RealtimeConfigured() bool {
	return c.ServerURL != "" && c.DeviceID != ""
}

// GenerateDeviceID generates a new ULID for device identification.
func GenerateDeviceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
