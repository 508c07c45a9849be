package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/ferrors"
)

// EnvPrefix prefixes every environment override, e.g. NETINV_API_TOKEN
const EnvPrefix = "NETINV"

// FileName is the config file looked up when --config is not given
const FileName = "netctl"

type Config struct {
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Console   ConsoleConfig   `mapstructure:"console" yaml:"console"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Token   string        `mapstructure:"token" yaml:"-"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type DashboardConfig struct {
	DeviceLimit   int           `mapstructure:"device_limit" yaml:"device_limit"`
	LocationLimit int           `mapstructure:"location_limit" yaml:"location_limit"`
	RecentEvents  int           `mapstructure:"recent_events" yaml:"recent_events"`
	TopCPU        int           `mapstructure:"top_cpu" yaml:"top_cpu"`
	VendorTop     int           `mapstructure:"vendor_top" yaml:"vendor_top"`
	RoleTop       int           `mapstructure:"role_top" yaml:"role_top"`
	LocationTop   int           `mapstructure:"location_top" yaml:"location_top"`
	AccentColor   string        `mapstructure:"accent_color" yaml:"accent_color"`
	Refresh       time.Duration `mapstructure:"refresh" yaml:"refresh"`
}

type ConsoleConfig struct {
	Addr        string   `mapstructure:"addr" yaml:"addr"`
	Title       string   `mapstructure:"title" yaml:"title"`
	Rate        float64  `mapstructure:"rate" yaml:"rate"`
	Burst       int      `mapstructure:"burst" yaml:"burst"`
	TrustProxy  bool     `mapstructure:"trust_proxy" yaml:"trust_proxy"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	limits := dashboard.DefaultLimits()
	opts := dashboard.DefaultOptions()

	v.SetDefault("api.url", "http://localhost:3000")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("dashboard.device_limit", limits.Devices)
	v.SetDefault("dashboard.location_limit", limits.Locations)
	v.SetDefault("dashboard.recent_events", limits.Events)
	v.SetDefault("dashboard.top_cpu", limits.Metrics)
	v.SetDefault("dashboard.vendor_top", opts.Vendor.TopN)
	v.SetDefault("dashboard.role_top", opts.Role.TopN)
	v.SetDefault("dashboard.location_top", opts.Location.TopN)
	v.SetDefault("dashboard.accent_color", dashboard.DefaultAccent)
	v.SetDefault("dashboard.refresh", time.Duration(0))

	v.SetDefault("console.addr", ":8088")
	v.SetDefault("console.title", "Network Inventory")
	v.SetDefault("console.rate", 10.0)
	v.SetDefault("console.burst", 20)
	v.SetDefault("console.trust_proxy", false)
	v.SetDefault("console.cors_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_rate", 1.0)
}

// Setup points v at the config file and the environment. An explicit
// file must exist; otherwise netctl.yaml is looked up in the working
// directory and in $HOME/.netinv.
func Setup(v *viper.Viper, file string) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".netinv"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// Load reads the config file, if any, and decodes v into a validated
// Config. A missing file is not an error unless it was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the dashboard cannot run with
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.API.URL) == "" {
		errs = append(errs, errors.New("api.url is required"))
	} else if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.url %q is not an absolute URL", c.API.URL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}

	type bound struct {
		name string
		n    int
	}
	for _, b := range []bound{
		{"dashboard.device_limit", c.Dashboard.DeviceLimit},
		{"dashboard.location_limit", c.Dashboard.LocationLimit},
		{"dashboard.recent_events", c.Dashboard.RecentEvents},
		{"dashboard.top_cpu", c.Dashboard.TopCPU},
	} {
		if b.n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", b.name, b.n))
		}
	}
	for _, b := range []bound{
		{"dashboard.vendor_top", c.Dashboard.VendorTop},
		{"dashboard.role_top", c.Dashboard.RoleTop},
		{"dashboard.location_top", c.Dashboard.LocationTop},
	} {
		if b.n < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", b.name, b.n))
		}
	}
	if c.Dashboard.Refresh < 0 {
		errs = append(errs, errors.New("dashboard.refresh must not be negative"))
	}

	if c.Console.Rate <= 0 || c.Console.Burst <= 0 {
		errs = append(errs, errors.New("console.rate and console.burst must be positive"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate %v is outside [0, 1]", c.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ferrors.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// DashboardOptions converts the dashboard section into load options
func (c *Config) DashboardOptions() dashboard.Options {
	opts := dashboard.DefaultOptions()
	opts.Limits = dashboard.Limits{
		Devices:   c.Dashboard.DeviceLimit,
		Locations: c.Dashboard.LocationLimit,
		Events:    c.Dashboard.RecentEvents,
		Metrics:   c.Dashboard.TopCPU,
	}
	opts.Vendor.TopN = c.Dashboard.VendorTop
	opts.Role.TopN = c.Dashboard.RoleTop
	opts.Location.TopN = c.Dashboard.LocationTop
	opts.Accent = c.Dashboard.AccentColor
	return opts
}
