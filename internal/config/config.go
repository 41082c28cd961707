package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ThemePreference selects the UI color scheme.
type ThemePreference string

const (
	ThemeSystem ThemePreference = "system"
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"

	DefaultAPIBaseURL     = "https://api.drivego.app"
	DefaultLoginURL       = "https://drivego.app/login"
	DefaultRequestTimeout = 30
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// APIConfig contains remote drive API connection parameters.
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	LoginURL       string `json:"login_url"`
	RequestTimeout int    `json:"request_timeout_seconds"`
}

// UIConfig stores persistent UI preferences.
type UIConfig struct {
	Theme           ThemePreference `json:"theme"`
	LastSettingsTab string          `json:"last_settings_tab"`
	CloseToTray     bool            `json:"close_to_tray"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	API     APIConfig     `json:"api"`
	Logging LoggingConfig `json:"logging"`
	UI      UIConfig      `json:"ui"`
}

func Default() AppConfig {
	return AppConfig{
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			LoginURL:       DefaultLoginURL,
			RequestTimeout: DefaultRequestTimeout,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		UI: UIConfig{
			Theme:       ThemeSystem,
			CloseToTray: true,
		},
	}
}

func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is resolved by app runtime and points to user config dir.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

func (c *AppConfig) FillMissingDefaults() {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if strings.TrimSpace(c.API.LoginURL) == "" {
		c.API.LoginURL = DefaultLoginURL
	}
	if c.API.RequestTimeout <= 0 {
		c.API.RequestTimeout = DefaultRequestTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.UI.Theme = normalizeTheme(c.UI.Theme)
}

func normalizeTheme(theme ThemePreference) ThemePreference {
	switch theme {
	case ThemeLight, ThemeDark:
		return theme
	default:
		return ThemeSystem
	}
}

func (c AppConfig) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("api base url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("api base url is invalid: %q", base)
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("api request timeout must be positive")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
