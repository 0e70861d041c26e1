// Package config loads and saves gbdash settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// Environment variables that override the config file.
const (
	EnvWorkbook = "GBDASH_WORKBOOK"
	EnvAddr     = "GBDASH_ADDR"
	EnvTheme    = "GBDASH_THEME"
)

// Config holds all gbdash configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Agenda     AgendaConfig     `toml:"agenda"`
	Server     ServerConfig     `toml:"server"`
	Geocode    GeocodeConfig    `toml:"geocode"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig selects the workbook.
type GeneralConfig struct {
	Workbook string `toml:"workbook" validate:"required"`
	// Year is the default reporting year; zero means the current year.
	Year   int    `toml:"year,omitempty" validate:"omitempty,gte=2000,lte=2100"`
	Locale string `toml:"locale" validate:"oneof=es en"`
}

// MetricsConfig maps onto pipeline.Options.
type MetricsConfig struct {
	FixedCostsFromMonth int    `toml:"fixed_costs_from_month" validate:"gte=1,lte=12"`
	OnlyConfirmed       bool   `toml:"only_confirmed"`
	BookingRatio        string `toml:"booking_ratio" validate:"oneof=confirmed funnel target"`
}

// AgendaConfig controls calendar export.
type AgendaConfig struct {
	DefaultStart           string `toml:"default_start" validate:"datetime=15:04"`
	DefaultDurationMinutes int    `toml:"default_duration_minutes" validate:"gte=1,lte=1440"`
	Timezone               string `toml:"timezone" validate:"omitempty,timezone"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// GeocodeConfig holds reverse-geocoding settings.
type GeocodeConfig struct {
	Enabled   bool   `toml:"enabled"`
	BaseURL   string `toml:"base_url,omitempty" validate:"omitempty,url"`
	UserAgent string `toml:"user_agent,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" validate:"oneof=flexoki-dark catppuccin-mocha tokyo-night terminal"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Workbook: "gamebus.xlsx",
			Locale:   string(workbook.LocaleES),
		},
		Metrics: MetricsConfig{
			FixedCostsFromMonth: 1,
			BookingRatio:        string(pipeline.BookingRatioConfirmed),
		},
		Agenda: AgendaConfig{
			DefaultStart:           "10:00",
			DefaultDurationMinutes: 120,
			Timezone:               "America/Monterrey",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8765",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gbdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gbdash")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// LoadDotenv reads KEY=VALUE pairs from path into the environment without
// replacing variables that are already set. A missing file is not an error.
func LoadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied and the result is validated.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvWorkbook); v != "" {
		cfg.General.Workbook = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Appearance.Theme = v
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field in one error.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath turns "Config.Metrics.BookingRatio" into "metrics.bookingratio".
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

// WorkbookPath returns the configured workbook with a leading ~ expanded.
func (c Config) WorkbookPath() string {
	p := c.General.Workbook
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// YearOr returns the configured year, or now's year when unset.
func (c Config) YearOr(now time.Time) int {
	if c.General.Year > 0 {
		return c.General.Year
	}
	return now.Year()
}

// Locale returns the header locale for new sheets.
func (c Config) Locale() workbook.Locale {
	if c.General.Locale == string(workbook.LocaleEN) {
		return workbook.LocaleEN
	}
	return workbook.LocaleES
}

// Options returns the metrics options.
func (c Config) Options() (pipeline.Options, error) {
	f, err := pipeline.ParseBookingRatio(c.Metrics.BookingRatio)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		FixedCostsFromMonth: time.Month(c.Metrics.FixedCostsFromMonth),
		OnlyConfirmed:       c.Metrics.OnlyConfirmed,
		BookingRatio:        f,
	}, nil
}

// Location loads the agenda time zone, UTC when unset.
func (c Config) Location() (*time.Location, error) {
	if c.Agenda.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Agenda.Timezone)
	if err != nil {
		return nil, fmt.Errorf("agenda timezone: %w", err)
	}
	return loc, nil
}

// ICSOptions returns the calendar export settings.
func (c Config) ICSOptions() (agenda.ICSOptions, error) {
	loc, err := c.Location()
	if err != nil {
		return agenda.ICSOptions{}, err
	}
	return agenda.ICSOptions{
		DefaultStart: c.Agenda.DefaultStart,
		Duration:     time.Duration(c.Agenda.DefaultDurationMinutes) * time.Minute,
		Location:     loc,
	}, nil
}
