package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type APIConfig struct {
	BaseURL               string  `toml:"base_url"`
	UserID                string  `toml:"user_id,omitempty"`
	RequestsPerSecond     float64 `toml:"requests_per_second"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
}

type UIConfig struct {
	DefaultCoach string `toml:"default_coach,omitempty"`
	DefaultGame  string `toml:"default_game,omitempty"`
}

type UserConfig struct {
	API APIConfig `toml:"api"`
	UI  UIConfig  `toml:"ui"`
}

type Config struct {
	DataDirectory     string
	APIBaseURL        string
	UserID            string
	RequestsPerSecond float64
	RequestTimeout    time.Duration
	DefaultCoach      string
	DefaultGame       string
	Keybindings       *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// CurrentUser returns the user id sent with history requests.
// An empty id lets the server fall back to its own session.
func (c *Config) CurrentUser() (string, bool) {
	if id := strings.TrimSpace(os.Getenv("COACHTUI_USER_ID")); id != "" {
		return id, true
	}
	id := strings.TrimSpace(c.UserID)
	return id, id != ""
}

// Validate reports the first setting that makes the client unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api base_url is not set (edit %s or set COACHTUI_API_URL)",
			filepath.Join(c.DataDir(), "config.toml"))
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("api requests_per_second must not be negative")
	}
	return nil
}

func (c *Config) applyUserConfig(u *UserConfig) {
	c.APIBaseURL = u.API.BaseURL
	c.UserID = u.API.UserID
	c.RequestsPerSecond = u.API.RequestsPerSecond
	c.RequestTimeout = time.Duration(u.API.RequestTimeoutSeconds) * time.Second
	c.DefaultCoach = u.UI.DefaultCoach
	c.DefaultGame = u.UI.DefaultGame
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("COACHTUI_API_URL"); url != "" {
		c.APIBaseURL = url
	}
	if dataDir := os.Getenv("COACHTUI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if coach := os.Getenv("COACHTUI_COACH"); coach != "" {
		c.DefaultCoach = coach
	}
}

func CheckDebug() bool {
	debug := os.Getenv("COACHTUI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: request bodies and coach replies end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (COACHTUI_DEBUG=%s) ===", os.Getenv("COACHTUI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: GetDefaultDataDir(),
	}

	// Data directory may itself come from the environment, so resolve it first.
	if dataDir := os.Getenv("COACHTUI_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		cfg.DataDirectory = systemCfg.DataDirectory
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}
	cfg.Keybindings = kb

	return cfg, nil
}
