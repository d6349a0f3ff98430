// Package config loads dirkdc's configuration via viper, following
// marmos91-dittofs's pkg/config/config.go layering (DIRKDC_* environment
// variable > config file > defaults) and its mapstructure.DecodeHookFunc
// trick for parsing human-readable time.Duration strings ("5m", "8h") into
// Config's duration fields, which ToKdcConfig converts to the KdcConfig
// millisecond fields spec.md §6 enumerates.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/tgs"
)

const envPrefix = "DIRKDC"

// Config is the top-level configuration document: the TGS policy
// surface spec.md §6 enumerates, plus the ambient server/logging/
// metrics sections every daemon in the pack carries.
type Config struct {
	Realm      string `mapstructure:"realm"`
	Listen     string `mapstructure:"listen"`
	KeytabPath string `mapstructure:"keytab_path"`

	EncryptionTypes []int32 `mapstructure:"encryption_types"`

	AllowableClockSkew   time.Duration `mapstructure:"allowable_clock_skew"`
	MaxTicketLifetime    time.Duration `mapstructure:"max_ticket_lifetime"`
	MaxRenewableLifetime time.Duration `mapstructure:"max_renewable_lifetime"`

	BodyChecksumVerified  bool `mapstructure:"body_checksum_verified"`
	EmptyAddressesAllowed bool `mapstructure:"empty_addresses_allowed"`
	ForwardableAllowed    bool `mapstructure:"forwardable_allowed"`
	ProxiableAllowed      bool `mapstructure:"proxiable_allowed"`
	PostdatedAllowed      bool `mapstructure:"postdated_allowed"`
	RenewableAllowed      bool `mapstructure:"renewable_allowed"`

	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig controls logging/logging.go's output level.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint
// metrics/metrics.go exposes.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// Default returns a Config populated with the same conservative
// defaults the RFC suggests for a KDC that has not been explicitly
// tuned: a five-minute clock skew, eight-hour tickets, one-week
// renewable tickets, and AES256/AES128-CTS-HMAC-SHA1-96 as the only
// offered etypes.
func Default() *Config {
	return &Config{
		Realm:                 "EXAMPLE.COM",
		Listen:                ":88",
		EncryptionTypes:       []int32{18, 17},
		AllowableClockSkew:    5 * time.Minute,
		MaxTicketLifetime:     8 * time.Hour,
		MaxRenewableLifetime:  7 * 24 * time.Hour,
		BodyChecksumVerified:  true,
		EmptyAddressesAllowed: true,
		ForwardableAllowed:    true,
		ProxiableAllowed:      true,
		PostdatedAllowed:      false,
		RenewableAllowed:      true,
		Logging:               LoggingConfig{Level: "INFO"},
		Metrics:               MetricsConfig{Enabled: true, Listen: ":9090"},
	}
}

// Load reads configuration from configPath (if non-empty), the
// environment (DIRKDC_*), and defaults, in that order of increasing
// precedence reversed — i.e. environment overrides the file, which
// overrides Default().
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
}

// readConfigFile reads configPath if one was given, treating a missing
// file as acceptable (defaults/environment carry the whole config in
// that case) rather than an error.
func readConfigFile(v *viper.Viper, configPath string) error {
	if configPath == "" {
		return nil
	}
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}
	return fmt.Errorf("config: failed to read %s: %w", configPath, err)
}

func validate(cfg *Config) error {
	if cfg.Realm == "" {
		return fmt.Errorf("realm must not be empty")
	}
	if len(cfg.EncryptionTypes) == 0 {
		return fmt.Errorf("encryption_types must list at least one etype")
	}
	if cfg.AllowableClockSkew <= 0 {
		return fmt.Errorf("allowable_clock_skew must be positive")
	}
	if cfg.MaxTicketLifetime <= 0 {
		return fmt.Errorf("max_ticket_lifetime must be positive")
	}
	return nil
}

// ToKdcConfig builds the tgs.KdcConfig the TGS core consults, deriving
// the service principal as the realm's own krbtgt and converting every
// time.Duration field to the millisecond integers tgs.KdcConfig uses
// internally (datamodel.KerberosTime values are milliseconds, not
// Durations).
func (c *Config) ToKdcConfig() *tgs.KdcConfig {
	realm := datamodel.Realm(c.Realm)
	return &tgs.KdcConfig{
		PrimaryRealm:     realm,
		ServicePrincipal: datamodel.KrbTgtForRealm(realm),
		EncryptionTypes:  c.EncryptionTypes,

		AllowableClockSkew:   c.AllowableClockSkew.Milliseconds(),
		MaxTicketLifetime:    c.MaxTicketLifetime.Milliseconds(),
		MaxRenewableLifetime: c.MaxRenewableLifetime.Milliseconds(),

		BodyChecksumVerified:  c.BodyChecksumVerified,
		EmptyAddressesAllowed: c.EmptyAddressesAllowed,
		ForwardableAllowed:    c.ForwardableAllowed,
		ProxiableAllowed:      c.ProxiableAllowed,
		PostdatedAllowed:      c.PostdatedAllowed,
		RenewableAllowed:      c.RenewableAllowed,
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/dirkdc, or ~/.config/dirkdc
// if XDG_CONFIG_HOME is unset, matching the rest of the pack's
// XDG-first convention for default config locations.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dirkdc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dirkdc")
}

// DefaultConfigPath returns DefaultConfigDir()/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
