// Package config loads genelab configuration from defaults, an optional
// YAML file and GENELAB_* environment variables, in increasing precedence.
// Command-line flags bound by the cli package override all three.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"genelab/internal/crispr"
	"genelab/internal/gel"
	"genelab/internal/pcr"
	"genelab/internal/sequencing"
)

// EnvPrefix namespaces environment overrides: GENELAB_LOG_LEVEL, GENELAB_PCR_TAQERRORRATE, ...
const EnvPrefix = "GENELAB"

type Config struct {
	// Seed is the base PRNG seed; job i without its own seed runs with rng.Derive(Seed, i).
	Seed    uint64 `mapstructure:"seed" yaml:"seed"`
	Workers int    `mapstructure:"workers" yaml:"workers"`
	Output  string `mapstructure:"output" yaml:"output"`

	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`

	CRISPR     crispr.Config     `mapstructure:"crispr" yaml:"crispr"`
	PCR        pcr.Config        `mapstructure:"pcr" yaml:"pcr"`
	Sequencing sequencing.Config `mapstructure:"sequencing" yaml:"sequencing"`
	Gel        gel.Config        `mapstructure:"gel" yaml:"gel"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// MetricsConfig: Textfile, when set, receives a Prometheus text exposition
// after each batch run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Seed:       1,
		Workers:    4,
		Output:     "text",
		Log:        LogConfig{Level: "info"},
		Server:     ServerConfig{Addr: ":8080"},
		CRISPR:     crispr.DefaultConfig(),
		PCR:        pcr.DefaultConfig(),
		Sequencing: sequencing.Config{},
		Gel:        gel.Config{GelLengthMM: 100},
	}
}

// SetDefaults registers every scalar key with v so that AutomaticEnv can
// see it. Table-valued keys (profiles, ladders, concentrations) default
// inside the engines.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("seed", d.Seed)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("output", d.Output)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
	v.SetDefault("server.addr", d.Server.Addr)

	c := d.CRISPR
	v.SetDefault("crispr.protospacerLength", c.ProtospacerLength)
	v.SetDefault("crispr.noEditProbability", c.NoEditProbability)
	v.SetDefault("crispr.hdrProbability", c.HDRProbability)
	v.SetDefault("crispr.deletionProbability", c.DeletionProbability)
	v.SetDefault("crispr.maxDeletion", c.MaxDeletion)
	v.SetDefault("crispr.maxInsertion", c.MaxInsertion)
	v.SetDefault("crispr.byproducts", c.Byproducts)

	p := d.PCR
	v.SetDefault("pcr.taqErrorRate", p.TaqErrorRate)
	v.SetDefault("pcr.highFidelityErrorRate", p.HighFidelityErrorRate)
	v.SetDefault("pcr.maxAmpliconLength", p.MaxAmpliconLength)
	v.SetDefault("pcr.maxBindingMismatches", p.MaxBindingMismatches)
	v.SetDefault("pcr.searchChunk", p.SearchChunk)
	v.SetDefault("pcr.flankPadding", p.FlankPadding)

	v.SetDefault("gel.gelLengthMM", d.Gel.GelLengthMM)
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if non-empty) into v and decodes the merged result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, a ...any) { errs = append(errs, fmt.Errorf(format, a...)) }

	if c.Workers < 1 {
		bad("workers must be >= 1, got %d", c.Workers)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "error", "warn", "warning", "info", "debug", "trace":
	default:
		bad("log.level %q not one of error, warn, info, debug, trace", c.Log.Level)
	}

	cr := c.CRISPR
	if cr.ProtospacerLength < 1 {
		bad("crispr.protospacerLength must be >= 1, got %d", cr.ProtospacerLength)
	}
	for _, pr := range []struct {
		name string
		v    float64
	}{
		{"crispr.noEditProbability", cr.NoEditProbability},
		{"crispr.hdrProbability", cr.HDRProbability},
		{"crispr.deletionProbability", cr.DeletionProbability},
		{"pcr.taqErrorRate", c.PCR.TaqErrorRate},
		{"pcr.highFidelityErrorRate", c.PCR.HighFidelityErrorRate},
	} {
		if pr.v < 0 || pr.v > 1 {
			bad("%s must be in [0,1], got %g", pr.name, pr.v)
		}
	}
	if cr.NoEditProbability+cr.HDRProbability > 1 {
		bad("crispr.noEditProbability + crispr.hdrProbability exceeds 1")
	}
	if cr.MaxDeletion < 1 || cr.MaxInsertion < 1 {
		bad("crispr.maxDeletion and crispr.maxInsertion must be >= 1")
	}
	if cr.Byproducts < 0 {
		bad("crispr.byproducts must be >= 0, got %d", cr.Byproducts)
	}

	p := c.PCR
	if p.MaxAmpliconLength < 1 {
		bad("pcr.maxAmpliconLength must be >= 1, got %d", p.MaxAmpliconLength)
	}
	if p.MaxBindingMismatches < 0 {
		bad("pcr.maxBindingMismatches must be >= 0, got %d", p.MaxBindingMismatches)
	}
	if p.SearchChunk < 1 {
		bad("pcr.searchChunk must be >= 1, got %d", p.SearchChunk)
	}
	if p.FlankPadding < 0 {
		bad("pcr.flankPadding must be >= 0, got %d", p.FlankPadding)
	}

	for name, prof := range c.Sequencing.Profiles {
		if prof.Name == "" {
			prof.Name = name
		}
		if err := prof.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sequencing.profiles: %w", err))
		}
	}

	for _, gc := range c.Gel.Concentrations {
		if gc.Percent <= 0 || gc.MinOptimal > gc.MaxOptimal {
			bad("gel.concentrations: invalid entry %+v", gc)
		}
	}
	for name, sizes := range c.Gel.Ladders {
		if len(sizes) == 0 {
			bad("gel.ladders.%s is empty", name)
		}
		for _, s := range sizes {
			if s <= 0 {
				bad("gel.ladders.%s has non-positive size %d", name, s)
				break
			}
		}
	}
	return errors.Join(errs...)
}
