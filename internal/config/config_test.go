package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != DefaultAPIBaseURL {
		t.Fatalf("unexpected base url: %q", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != ThemeSystem {
		t.Fatalf("unexpected theme: %q", cfg.UI.Theme)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.UI.Theme = ThemeDark
	cfg.UI.LastSettingsTab = "security"
	cfg.Logging.Level = "debug"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.UI.Theme != ThemeDark {
		t.Fatalf("theme not persisted: %q", loaded.UI.Theme)
	}
	if loaded.UI.LastSettingsTab != "security" {
		t.Fatalf("last settings tab not persisted: %q", loaded.UI.LastSettingsTab)
	}
	if loaded.Logging.Level != "debug" {
		t.Fatalf("log level not persisted: %q", loaded.Logging.Level)
	}
}

func TestSaveRejectsInvalidBaseURL(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "not a url"
	if err := Save(filepath.Join(t.TempDir(), "config.json"), cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFillMissingDefaultsNormalizesTheme(t *testing.T) {
	cfg := AppConfig{UI: UIConfig{Theme: "neon"}}
	cfg.FillMissingDefaults()
	if cfg.UI.Theme != ThemeSystem {
		t.Fatalf("unexpected theme: %q", cfg.UI.Theme)
	}
	if cfg.API.RequestTimeout != DefaultRequestTimeout {
		t.Fatalf("unexpected timeout: %d", cfg.API.RequestTimeout)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}
