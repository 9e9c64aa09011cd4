package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"tempical/internal/value"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultTimezone != "UTC" {
		t.Errorf("default timezone = %q", cfg.DefaultTimezone)
	}
	if got := cfg.ParserPolicies[PolicyMissingParamValues]; got != "fix" {
		t.Errorf("missing-param policy = %q", got)
	}
	if got := cfg.ParserPolicies[PolicyBlankLines]; got != "raise" {
		t.Errorf("blank-lines policy = %q", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfgDir := filepath.Join(dir, "tempical")
	if err := os.MkdirAll(cfgDir, 0o750); err != nil {
		t.Fatal(err)
	}
	content := "default_timezone: Europe/Madrid\n" +
		"zoneinfo_root: /var/lib/tempical/zoneinfo\n" +
		"parser_policies:\n" +
		"  blank_lines: allow\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultTimezone != "Europe/Madrid" {
		t.Errorf("timezone = %q", cfg.DefaultTimezone)
	}
	if cfg.ZoneinfoRoot != "/var/lib/tempical/zoneinfo" {
		t.Errorf("root = %q", cfg.ZoneinfoRoot)
	}
	if cfg.ParserPolicies[PolicyBlankLines] != "allow" {
		t.Errorf("blank-lines = %q", cfg.ParserPolicies[PolicyBlankLines])
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfgDir := filepath.Join(dir, "tempical")
	if err := os.MkdirAll(cfgDir, 0o750); err != nil {
		t.Fatal(err)
	}
	content := "parser_policies:\n  blank_lines: sometimes\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Error("expected an error for an unknown policy word")
	}
}

func TestParserContext(t *testing.T) {
	cfg := &Config{
		ParserPolicies: map[string]string{
			PolicyBlankLines:         "allow",
			PolicyColonInEscape:      "fix",
			PolicyMissingParamValues: "fix",
		},
	}
	ctx := cfg.ParserContext()
	if ctx.BlankLines != value.PolicyAllow {
		t.Errorf("blank lines = %v", ctx.BlankLines)
	}
	if ctx.ColonInEscape != value.PolicyFix {
		t.Errorf("colon in escape = %v", ctx.ColonInEscape)
	}
	if ctx.MissingParameterValues != value.PolicyFix {
		t.Errorf("missing param values = %v", ctx.MissingParameterValues)
	}
	// Unlisted categories keep the strict default.
	if ctx.BackslashInURI != value.PolicyRaise {
		t.Errorf("backslash in URI = %v", ctx.BackslashInURI)
	}
}

func TestSetAndGetRoundTrip(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("default_timezone", "Asia/Tokyo"); err != nil {
		t.Fatal(err)
	}
	got, err := cfg.Get("default_timezone")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Asia/Tokyo" {
		t.Errorf("get = %q", got)
	}

	if err := cfg.Set("parser_policies.blank_lines", "allow"); err != nil {
		t.Fatal(err)
	}
	if got, _ := cfg.Get("parser_policies.blank_lines"); got != "allow" {
		t.Errorf("policy get = %q", got)
	}

	if err := cfg.Set("parser_policies.blank_lines", "sometimes"); err == nil {
		t.Error("expected rejection of unknown policy word")
	}
	if err := cfg.Set("bogus_key", "x"); err == nil {
		t.Error("expected rejection of unknown key")
	}
}
