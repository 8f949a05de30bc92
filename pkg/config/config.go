package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultMaxArchiveSize = 1 << 30  // 1 GiB
	defaultMaxEntrySize   = 64 << 20 // 64 MiB
	defaultRenderDPI      = 300
	configDirName         = "tankobon"
	configFileName        = "config.json"
	envFileName           = ".env"
)

// Config holds the ingestion settings shared by the CLI and the TUI.
type Config struct {
	DatabasePath   string `json:"database_path"`
	MediaRoot      string `json:"media_root"`
	TempDir        string `json:"temp_dir,omitempty"`
	MaxArchiveSize int64  `json:"max_archive_size"`
	MaxEntrySize   int64  `json:"max_entry_size"`
	RenderDPI      int    `json:"render_dpi"`
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DatabasePath:   filepath.Join(home, ".tankobon", "library.db"),
		MediaRoot:      filepath.Join(home, ".tankobon", "media"),
		MaxArchiveSize: defaultMaxArchiveSize,
		MaxEntrySize:   defaultMaxEntrySize,
		RenderDPI:      defaultRenderDPI,
	}
}

func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve config dir: %w", err)
	}

	return filepath.Join(configDir, configDirName), nil
}

func ConfigPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, configFileName), nil
}

func EnvPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, envFileName), nil
}

// LoadEnv reads the optional .env file next to the config and exports any
// keys not already present in the environment.
func LoadEnv() error {
	envPath, err := EnvPath()
	if err != nil {
		return err
	}

	file, err := os.Open(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to read env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to parse env file: %w", err)
	}

	return nil
}

func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := LoadEnv(); err != nil {
		return cfg, err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnvOverrides(cfg), nil
		}
		return cfg, fmt.Errorf("unable to read config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config: %w", err)
	}

	return ApplyEnvOverrides(cfg), nil
}

func SaveConfig(cfg Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("unable to write config: %w", err)
	}

	return nil
}

// ApplyEnvOverrides lets TANKOBON_* variables win over file values, so a
// one-off run can point at a scratch library without editing the config.
func ApplyEnvOverrides(cfg Config) Config {
	if value := strings.TrimSpace(os.Getenv("TANKOBON_DATABASE_PATH")); value != "" {
		cfg.DatabasePath = value
	}
	if value := strings.TrimSpace(os.Getenv("TANKOBON_MEDIA_ROOT")); value != "" {
		cfg.MediaRoot = value
	}
	if value := strings.TrimSpace(os.Getenv("TANKOBON_TEMP_DIR")); value != "" {
		cfg.TempDir = value
	}
	if value := strings.TrimSpace(os.Getenv("TANKOBON_MAX_ARCHIVE_SIZE")); value != "" {
		if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
			cfg.MaxArchiveSize = size
		}
	}
	if value := strings.TrimSpace(os.Getenv("TANKOBON_MAX_ENTRY_SIZE")); value != "" {
		if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
			cfg.MaxEntrySize = size
		}
	}
	if value := strings.TrimSpace(os.Getenv("TANKOBON_RENDER_DPI")); value != "" {
		if dpi, err := strconv.Atoi(value); err == nil && dpi > 0 {
			cfg.RenderDPI = dpi
		}
	}

	return cfg
}

// ScratchDir resolves the directory for extraction scratch space.
func (cfg Config) ScratchDir() string {
	if cfg.TempDir != "" {
		return cfg.TempDir
	}
	return os.TempDir()
}

func (cfg Config) Validate() error {
	if cfg.DatabasePath == "" {
		return errors.New("database path not configured")
	}
	if cfg.MediaRoot == "" {
		return errors.New("media root not configured")
	}
	if cfg.MaxArchiveSize <= 0 {
		return errors.New("max archive size must be positive")
	}
	if cfg.MaxEntrySize <= 0 {
		return errors.New("max entry size must be positive")
	}
	if cfg.RenderDPI <= 0 {
		return errors.New("render dpi must be positive")
	}
	return nil
}
