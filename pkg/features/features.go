// Package features provides the feature-flag configuration that gates which
// bridge modules the host registers and which flags each invocation carries.
package features

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

const logPrefix = "features:loader"

// ModuleFlag controls one bridge module.
type ModuleFlag struct {
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// Config is the root feature configuration.
type Config struct {
	Name    string                `json:"name"`
	Version string                `json:"version"`
	// Flags are free-form feature flags surfaced to module handlers.
	Flags   map[string]bool       `json:"flags"`
	// Modules gates registration per module name. Modules not listed here
	// are enabled.
	Modules map[string]ModuleFlag `json:"modules"`
}

// Load reads feature configuration from the first readable path. It tries, in
// order: the paths passed in, the BRIDGE_FEATURES_FILE env var, and the
// default locations. A missing or unparsable file falls through to the next
// candidate; when nothing loads, the embedded default applies.
func Load(paths ...string) *Config {
	all := make([]string, 0, len(paths)+3)
	for _, p := range paths {
		if p != "" {
			all = append(all, p)
		}
	}
	if envPath := os.Getenv("BRIDGE_FEATURES_FILE"); envPath != "" {
		all = append(all, envPath)
	}
	all = append(all, "config/features.json", "features.json")

	for _, p := range all {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			slog.Warn(fmt.Sprintf("%s - Failed to parse features file %s: %v", logPrefix, p, err))
			continue
		}

		slog.Info(fmt.Sprintf("%s - Loaded feature config from %s", logPrefix, p))
		return &cfg
	}

	slog.Info(fmt.Sprintf("%s - Using default feature config", logPrefix))
	return Default()
}

// Default returns the embedded fallback configuration: every module enabled,
// no flags.
func Default() *Config {
	return &Config{
		Name:    "bridge-defaults",
		Version: "1.0.0",
		Flags:   map[string]bool{},
		Modules: map[string]ModuleFlag{},
	}
}

// ModuleEnabled reports whether the named module should be registered.
// Modules absent from the config are enabled.
func (c *Config) ModuleEnabled(name string) bool {
	if c == nil {
		return true
	}
	flag, ok := c.Modules[name]
	if !ok {
		return true
	}
	return flag.Enabled
}

// FlagEnabled reports whether the named feature flag is set.
func (c *Config) FlagEnabled(name string) bool {
	return c != nil && c.Flags[name]
}

// ActiveFlags returns the enabled flag names, sorted for stable output.
func (c *Config) ActiveFlags() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Flags))
	for name, on := range c.Flags {
		if on {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
