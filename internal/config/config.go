// Package config loads environment configuration for the bbox editor server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultListenAddr        = "0.0.0.0:8788"
	defaultDataDir           = "./data"
	defaultViewportWidth     = 1280
	defaultPreviewIntervalMs = 120
	defaultPreviewQuality    = 70
	defaultMDNSName          = "bboxedit"
)

// Config holds runtime configuration values.
type Config struct {
	ListenAddr        string
	DataDir           string
	TaskPath          string
	OutputPath        string
	PasswordMode      bool
	UIPassword        string
	ViewportWidth     int
	PreviewIntervalMs int
	PreviewQuality    int
	MDNSEnabled       bool
	MDNSName          string
}

// Load reads configuration from $DATA_DIR/.env (default ./data/.env) and environment variables.
// Variables already present in the environment win over the file.
func Load() (Config, error) {
	dataDir := envString("DATA_DIR", defaultDataDir)
	if err := loadEnvFile(filepath.Join(dataDir, ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:   envString("LISTEN_ADDR", defaultListenAddr),
		DataDir:      envString("DATA_DIR", dataDir),
		PasswordMode: envBool("PASSWORD_MODE", false),
		UIPassword:   strings.TrimSpace(os.Getenv("UI_PASSWORD")),
		MDNSEnabled:  envBool("MDNS_ENABLED", false),
		MDNSName:     envString("MDNS_NAME", defaultMDNSName),
	}
	cfg.TaskPath = envString("TASK_PATH", filepath.Join(cfg.DataDir, "task.yaml"))
	cfg.OutputPath = envString("OUTPUT_PATH", filepath.Join(cfg.DataDir, "annotations.json"))

	var err error
	if cfg.ViewportWidth, err = envPositive("VIEWPORT_WIDTH", defaultViewportWidth); err != nil {
		return Config{}, err
	}
	if cfg.PreviewIntervalMs, err = envPositive("PREVIEW_INTERVAL_MS", defaultPreviewIntervalMs); err != nil {
		return Config{}, err
	}
	if cfg.PreviewQuality, err = envInt("PREVIEW_QUALITY", defaultPreviewQuality); err != nil {
		return Config{}, err
	}
	if cfg.PreviewQuality <= 0 || cfg.PreviewQuality > 100 {
		return Config{}, fmt.Errorf("PREVIEW_QUALITY must be 1-100")
	}

	if cfg.PasswordMode && cfg.UIPassword == "" {
		return Config{}, errors.New("UI_PASSWORD is required when PASSWORD_MODE is on")
	}
	if !cfg.PasswordMode {
		cfg.UIPassword = ""
	}
	return cfg, nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envPositive is envInt restricted to values above zero.
func envPositive(key string, def int) (int, error) {
	v, err := envInt(key, def)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return v, nil
}

// envBool returns a bool env override when present, otherwise a default.
func envBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadEnvFile loads KEY=VALUE pairs from a .env file without overriding the environment.
func loadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := parseEnvLine(line)
		if !ok {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// parseEnvLine parses a single .env line into key/value.
func parseEnvLine(line string) (string, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
	key, value, ok := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", false
	}
	return key, strings.Trim(strings.TrimSpace(value), `"'`), true
}
