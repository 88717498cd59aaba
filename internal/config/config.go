// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the safety limits configuration that governs
// spend-bearing advertising operations.
//
// Defaults are maximally safe: every budget ceiling is zero and every
// safety switch is on. A missing or partial config file can only make the
// system safer, never less safe.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config represents the complete Rory safety configuration.
type Config struct {
	Safety  SafetyConfig              `yaml:"safety"`
	Budgets map[string]PlatformLimits `yaml:"budgets"`
	Audit   AuditConfig               `yaml:"audit"`
	Log     LogConfig                 `yaml:"log"`
}

// SafetyConfig holds the global safety switches.
type SafetyConfig struct {
	// ForceDraftMode forces all created/updated campaigns into the
	// platform's non-spending status regardless of what was requested.
	// Default: true
	ForceDraftMode bool `yaml:"force_draft_mode"`

	// RequireConfirmation requires an explicit confirm flag before any
	// operation that can increase spend.
	// Default: true
	RequireConfirmation bool `yaml:"require_confirmation"`
}

// PlatformLimits holds per-platform budget ceilings in USD.
// Zero means "nothing allowed", which is the default.
type PlatformLimits struct {
	// MaxDailyBudget is the ceiling for a campaign's daily budget.
	MaxDailyBudget float64 `yaml:"max_daily_budget"`

	// MaxTotalBudget is the ceiling for a campaign's lifetime budget.
	MaxTotalBudget float64 `yaml:"max_total_budget"`

	// MaxCPCBid is the ceiling for cost-per-click bids.
	MaxCPCBid float64 `yaml:"max_cpc_bid"`
}

// AuditConfig locates the append-only audit trail. Recording itself is
// not configurable: every mutating attempt is written, always.
type AuditConfig struct {
	// Path overrides the default audit log location.
	Path string `yaml:"path,omitempty"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the maximally-safe default configuration:
// zero budgets everywhere, draft mode forced, confirmation required.
func Default() *Config {
	return &Config{
		Safety: SafetyConfig{
			ForceDraftMode:      true,
			RequireConfirmation: true,
		},
		Budgets: map[string]PlatformLimits{
			"google_ads":   {},
			"linkedin_ads": {},
		},
	}
}

// Load reads the config file at path, filling unset fields from Default.
// A missing file is not an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("config: resolving config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	// Unmarshal into a shadow struct with pointer fields so we can tell
	// "explicitly false" apart from "absent".
	var raw struct {
		Safety struct {
			ForceDraftMode      *bool `yaml:"force_draft_mode"`
			RequireConfirmation *bool `yaml:"require_confirmation"`
		} `yaml:"safety"`
		Budgets map[string]PlatformLimits `yaml:"budgets"`
		Audit   struct {
			Path string `yaml:"path"`
		} `yaml:"audit"`
		Log LogConfig `yaml:"log"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	if raw.Safety.ForceDraftMode != nil {
		cfg.Safety.ForceDraftMode = *raw.Safety.ForceDraftMode
	}
	if raw.Safety.RequireConfirmation != nil {
		cfg.Safety.RequireConfirmation = *raw.Safety.RequireConfirmation
	}
	for platform, limits := range raw.Budgets {
		cfg.Budgets[platform] = limits
	}
	cfg.Audit.Path = raw.Audit.Path
	cfg.Log = raw.Log

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values that cannot be honored.
func (c *Config) Validate() error {
	for platform, limits := range c.Budgets {
		if limits.MaxDailyBudget < 0 {
			return fmt.Errorf("%w: budgets.%s.max_daily_budget must be non-negative", ErrInvalidConfig, platform)
		}
		if limits.MaxTotalBudget < 0 {
			return fmt.Errorf("%w: budgets.%s.max_total_budget must be non-negative", ErrInvalidConfig, platform)
		}
		if limits.MaxCPCBid < 0 {
			return fmt.Errorf("%w: budgets.%s.max_cpc_bid must be non-negative", ErrInvalidConfig, platform)
		}
	}
	return nil
}

// Limits returns the budget ceilings for a platform.
// Unknown platforms get the zero-value (nothing allowed).
func (c *Config) Limits(platform string) PlatformLimits {
	return c.Budgets[platform]
}
