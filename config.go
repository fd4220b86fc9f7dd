package sms

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/camsterrrr/scarab-sms/internal/pattern"
)

// Config is every construction-time knob spec.md §6.2 exposes. Nothing
// in it changes once an SMS instance exists — per spec.md §7, there is
// no runtime reconfiguration path.
type Config struct {
	// RegionSize is R, the spatial region size in bytes. Must be a power
	// of two, and R/LineSize must not exceed 64 (invariant I1).
	RegionSize uint64 `mapstructure:"region_size"`

	// FingerprintMode selects the trigger-key strategy (spec.md §3).
	FingerprintMode pattern.Mode `mapstructure:"fingerprint_mode"`

	// FTEntries and ATEntries size the Filter and Accumulation Tables.
	// Both are fully-associative, per spec.md §4.3/§4.4.
	FTEntries int `mapstructure:"ft_entries"`
	ATEntries int `mapstructure:"at_entries"`

	// PHTEntries and PHTSets size the Pattern History Table: total
	// entries split across PHTSets sets (spec.md §4.5).
	PHTEntries int `mapstructure:"pht_entries"`
	PHTSets    int `mapstructure:"pht_sets"`
}

// DefaultConfig returns the sizing spec.md's own worked examples use: a
// 2KB region, region_base fingerprinting, and the FT/AT/PHT capacities
// from the SMS paper's reference configuration.
func DefaultConfig() Config {
	return Config{
		RegionSize:      2048,
		FingerprintMode: pattern.ModeRegionBase,
		FTEntries:       32,
		ATEntries:       64,
		PHTEntries:      16384,
		PHTSets:         4096,
	}
}

// LoadConfig reads Config from path (any format viper supports — yaml,
// toml, json, ...) layered over DefaultConfig, and from SMS_*
// environment variables. Matches the config layering the pack's
// rcornwell-S370 simulator uses for its own architectural parameters.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	cfg := DefaultConfig()

	v.SetDefault("region_size", cfg.RegionSize)
	v.SetDefault("fingerprint_mode", "region_base")
	v.SetDefault("ft_entries", cfg.FTEntries)
	v.SetDefault("at_entries", cfg.ATEntries)
	v.SetDefault("pht_entries", cfg.PHTEntries)
	v.SetDefault("pht_sets", cfg.PHTSets)

	v.SetEnvPrefix("sms")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "sms: loading config from %s", path)
		}
	}

	cfg.RegionSize = v.GetUint64("region_size")
	cfg.FTEntries = v.GetInt("ft_entries")
	cfg.ATEntries = v.GetInt("at_entries")
	cfg.PHTEntries = v.GetInt("pht_entries")
	cfg.PHTSets = v.GetInt("pht_sets")

	switch strings.ToLower(v.GetString("fingerprint_mode")) {
	case "pc_plus_offset":
		cfg.FingerprintMode = pattern.ModePCPlusOffset
	default:
		cfg.FingerprintMode = pattern.ModeRegionBase
	}

	return cfg, nil
}

// Validate checks Config against spec.md's invariants, independent of
// the dcache line size (which New folds in once a Descriptor is known).
func (c Config) Validate() error {
	if !isPowerOfTwo(c.RegionSize) {
		return ErrRegionSizeNotPowerOfTwo
	}
	if c.FTEntries <= 0 || c.ATEntries <= 0 || c.PHTEntries <= 0 {
		return ErrZeroCapacity
	}
	if c.PHTSets <= 0 || c.PHTEntries%c.PHTSets != 0 {
		return ErrPHTSetsNotDivisor
	}
	return nil
}
