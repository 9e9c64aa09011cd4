package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tempical/internal/value"
)

// Config is the start-of-day process configuration: the default
// timezone, the zoneinfo cache root, and the per-category parser
// policies.
type Config struct {
	DefaultTimezone string            `mapstructure:"default_timezone" json:"default_timezone"`
	ZoneinfoRoot    string            `mapstructure:"zoneinfo_root" json:"zoneinfo_root"`
	ParserPolicies  map[string]string `mapstructure:"parser_policies" json:"parser_policies"`
}

// Parser policy category keys accepted in parser_policies.
const (
	PolicyBlankLines           = "blank_lines"
	PolicyDurationTrailingData = "duration_trailing_data"
	PolicyBackslashInURI       = "backslash_in_uri"
	PolicyColonInEscape        = "colon_in_escape"
	PolicyUnknownEscape        = "unknown_escape"
	PolicyMissingParamValues   = "missing_parameter_values"
	PolicyBase64Synonym        = "base64_parameter_synonym"
	PolicyADRComponentCount    = "adr_component_count"
)

var defaultConfig = Config{
	DefaultTimezone: "UTC",
	ZoneinfoRoot:    "",
	ParserPolicies: map[string]string{
		PolicyBlankLines:           "raise",
		PolicyDurationTrailingData: "raise",
		PolicyBackslashInURI:       "raise",
		PolicyColonInEscape:        "raise",
		PolicyUnknownEscape:        "raise",
		PolicyMissingParamValues:   "fix",
		PolicyBase64Synonym:        "fix",
		PolicyADRComponentCount:    "fix",
	},
}

// Load loads configuration from file or creates defaults in memory.
// It reads ~/.config/tempical/config.yaml (or OS-specific dir) with a
// fallback to the current dir.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("default_timezone", defaultConfig.DefaultTimezone)
	viper.SetDefault("zoneinfo_root", defaultConfig.ZoneinfoRoot)
	viper.SetDefault("parser_policies", defaultConfig.ParserPolicies)

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found: continue with defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validatePolicies(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Set sets a configuration value and persists it to disk.
func (c *Config) Set(key, val string) error {
	viper.Set(key, val)

	switch key {
	case "default_timezone":
		c.DefaultTimezone = val
	case "zoneinfo_root":
		c.ZoneinfoRoot = val
	default:
		cat, ok := strings.CutPrefix(key, "parser_policies.")
		if !ok {
			return fmt.Errorf("unknown configuration key: %s", key)
		}
		if _, err := parsePolicy(val); err != nil {
			return err
		}
		if c.ParserPolicies == nil {
			c.ParserPolicies = map[string]string{}
		}
		c.ParserPolicies[cat] = val
	}

	return c.Save()
}

// Get returns a configuration value by key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "default_timezone":
		return c.DefaultTimezone, nil
	case "zoneinfo_root":
		return c.ZoneinfoRoot, nil
	}
	if cat, ok := strings.CutPrefix(key, "parser_policies."); ok {
		return c.ParserPolicies[cat], nil
	}
	return "", fmt.Errorf("unknown configuration key: %s", key)
}

// Save persists the current in-memory configuration to disk.
func (c *Config) Save() error {
	configDir, err := getConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return err
	}
	configFile := filepath.Join(configDir, "config.yaml")
	return viper.WriteConfigAs(configFile)
}

// ParserContext materialises the parser policy map into the context
// value threaded through every parse entry point.
func (c *Config) ParserContext() value.Context {
	ctx := value.Default()
	assign := func(cat string, field *value.Policy) {
		if raw, ok := c.ParserPolicies[cat]; ok {
			if p, err := parsePolicy(raw); err == nil {
				*field = p
			}
		}
	}
	assign(PolicyBlankLines, &ctx.BlankLines)
	assign(PolicyDurationTrailingData, &ctx.DurationTrailingData)
	assign(PolicyBackslashInURI, &ctx.BackslashInURI)
	assign(PolicyColonInEscape, &ctx.ColonInEscape)
	assign(PolicyUnknownEscape, &ctx.UnknownEscape)
	assign(PolicyMissingParamValues, &ctx.MissingParameterValues)
	assign(PolicyBase64Synonym, &ctx.Base64ParamSynonym)
	assign(PolicyADRComponentCount, &ctx.ADRComponentCount)
	return ctx
}

func (c *Config) validatePolicies() error {
	for cat, raw := range c.ParserPolicies {
		if _, err := parsePolicy(raw); err != nil {
			return fmt.Errorf("parser_policies.%s: %w", cat, err)
		}
	}
	return nil
}

func parsePolicy(s string) (value.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raise":
		return value.PolicyRaise, nil
	case "fix":
		return value.PolicyFix, nil
	case "allow":
		return value.PolicyAllow, nil
	case "ignore":
		return value.PolicyIgnore, nil
	}
	return 0, fmt.Errorf("unknown parser policy %q (want raise, fix, allow or ignore)", s)
}

// getConfigDir returns the platform-appropriate config directory:
//   - Linux/macOS: $XDG_CONFIG_HOME/tempical or ~/.config/tempical
//   - Windows: %AppData%\tempical
//
// Falls back to ~/.tempical if UserConfigDir is unavailable.
func getConfigDir() (string, error) {
	// Check XDG_CONFIG_HOME first (respects test environment variables)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tempical"), nil
	}

	// Use os.UserConfigDir() for platform-specific defaults
	if base, err := os.UserConfigDir(); err == nil && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "tempical"), nil
	}

	// Final fallback to ~/.tempical
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tempical"), nil
}

// ConfigDir returns the directory used to store configuration files.
func ConfigDir() (string, error) {
	return getConfigDir()
}
