package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvWorkbook, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvTheme, "")
	return dir
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Error("Exists() = true without a file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	cfg.General.Workbook = "/data/bus.xlsx"
	cfg.General.Year = 2025
	cfg.Metrics.FixedCostsFromMonth = 10
	cfg.Metrics.BookingRatio = "target"
	cfg.Geocode.Enabled = true
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(dir, "gbdash", "config.toml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvWorkbook, "/tmp/other.xlsx")
	t.Setenv(EnvAddr, ":9000")
	t.Setenv(EnvTheme, "terminal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Workbook != "/tmp/other.xlsx" || cfg.Server.Addr != ":9000" || cfg.Appearance.Theme != "terminal" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, "gbdash"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "[metrics]\nfixed_costs_from_month = 13\nbooking_ratio = \"guess\"\n"
	if err := os.WriteFile(filepath.Join(dir, "gbdash", "config.toml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"metrics.fixedcostsfrommonth", "metrics.bookingratio"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		valid bool
	}{
		{"defaults", func(*Config) {}, true},
		{"english headers", func(c *Config) { c.General.Locale = "en" }, true},
		{"bad locale", func(c *Config) { c.General.Locale = "fr" }, false},
		{"bad start", func(c *Config) { c.Agenda.DefaultStart = "25:00" }, false},
		{"zero duration", func(c *Config) { c.Agenda.DefaultDurationMinutes = 0 }, false},
		{"bad zone", func(c *Config) { c.Agenda.Timezone = "Mars/Olympus" }, false},
		{"bad url", func(c *Config) { c.Geocode.BaseURL = "not a url" }, false},
		{"bad theme", func(c *Config) { c.Appearance.Theme = "neon" }, false},
		{"no workbook", func(c *Config) { c.General.Workbook = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GBDASH_THEME=tokyo-night\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Unsetenv(EnvTheme)

	if err := LoadDotenv(path); err != nil {
		t.Fatalf("LoadDotenv: %v", err)
	}
	if got := os.Getenv(EnvTheme); got != "tokyo-night" {
		t.Errorf("%s = %q", EnvTheme, got)
	}
	if err := LoadDotenv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing file: %v", err)
	}
}

func TestDerivedSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Metrics.FixedCostsFromMonth = 10
	cfg.Metrics.OnlyConfirmed = true
	cfg.Metrics.BookingRatio = "funnel"
	cfg.Agenda.DefaultDurationMinutes = 90

	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	want := pipeline.Options{FixedCostsFromMonth: time.October, OnlyConfirmed: true, BookingRatio: pipeline.BookingRatioFunnel}
	if opts != want {
		t.Errorf("Options() = %+v, want %+v", opts, want)
	}

	ics, err := cfg.ICSOptions()
	if err != nil {
		t.Fatal(err)
	}
	if ics.Duration != 90*time.Minute || ics.DefaultStart != "10:00" || ics.Location.String() != "America/Monterrey" {
		t.Errorf("ICSOptions() = %+v", ics)
	}

	if cfg.Locale() != workbook.LocaleES {
		t.Errorf("Locale() = %s", cfg.Locale())
	}
	if got := cfg.YearOr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)); got != 2026 {
		t.Errorf("YearOr = %d", got)
	}
}
