// Package sequencing simulates short- and long-read sequencing runs:
// read sampling, Phred quality decay, error injection, run statistics,
// and a minimal pileup variant caller.
package sequencing

import (
	"fmt"
	"sort"
	"strings"

	"genelab/internal/simerr"
)

// Profile describes one sequencing technology.
type Profile struct {
	Name        string  `json:"name" yaml:"name" mapstructure:"name"`
	ReadLength  int     `json:"readLength" yaml:"readLength" mapstructure:"readLength"`
	PairedEnd   bool    `json:"pairedEnd" yaml:"pairedEnd" mapstructure:"pairedEnd"`
	ErrorRate   float64 `json:"errorRate" yaml:"errorRate" mapstructure:"errorRate"`
	AvgQuality  int     `json:"avgQuality" yaml:"avgQuality" mapstructure:"avgQuality"`
	Description string  `json:"description" yaml:"description" mapstructure:"description"`
}

var builtinProfiles = []Profile{
	{"ILLUMINA_SE50", 50, false, 0.001, 40, "Illumina Short-read 50bp SE"},
	{"ILLUMINA_SE150", 150, false, 0.001, 35, "Illumina Short-read 150bp SE"},
	{"ILLUMINA_PE150", 150, true, 0.001, 35, "Illumina Short-read 150bp PE"},
	{"ILLUMINA_PE300", 300, true, 0.002, 30, "Illumina MiSeq 300bp PE"},
	{"PACBIO_HIFI", 15000, false, 0.001, 30, "PacBio HiFi Long-read"},
	{"PACBIO_CLR", 20000, false, 0.10, 10, "PacBio CLR Long-read"},
	{"NANOPORE_R10", 30000, false, 0.05, 15, "Oxford Nanopore R10"},
	{"SANGER", 800, false, 0.0001, 50, "Sanger Sequencing"},
}

// DefaultProfiles returns a fresh copy of the built-in profile table keyed by name.
func DefaultProfiles() map[string]Profile {
	m := make(map[string]Profile, len(builtinProfiles))
	for _, p := range builtinProfiles {
		m[p.Name] = p
	}
	return m
}

// LookupProfile finds a built-in profile by case-insensitive name.
func LookupProfile(name string) (Profile, bool) {
	p, ok := DefaultProfiles()[strings.ToUpper(name)]
	return p, ok
}

// Validate checks the numeric ranges of a profile.
func (p Profile) Validate() error {
	switch {
	case p.ReadLength <= 0:
		return simerr.Input("profile %s: read length %d", p.Name, p.ReadLength)
	case p.ErrorRate < 0 || p.ErrorRate > 1:
		return simerr.Input("profile %s: error rate %g outside [0,1]", p.Name, p.ErrorRate)
	case p.AvgQuality < 0:
		return simerr.Input("profile %s: negative average quality", p.Name)
	}
	return nil
}

// Config carries the profile table the engine resolves names against.
type Config struct {
	Profiles map[string]Profile `json:"profiles" yaml:"profiles" mapstructure:"profiles"`
}

func DefaultConfig() Config { return Config{Profiles: DefaultProfiles()} }

type Engine struct{ cfg Config }

// New merges cfg.Profiles over the built-in table.
func New(cfg Config) *Engine {
	merged := DefaultProfiles()
	for name, p := range cfg.Profiles {
		if p.Name == "" {
			p.Name = strings.ToUpper(name)
		}
		merged[strings.ToUpper(name)] = p
	}
	return &Engine{cfg: Config{Profiles: merged}}
}

// Profile resolves a technology name.
func (e *Engine) Profile(name string) (Profile, error) {
	p, ok := e.cfg.Profiles[strings.ToUpper(name)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown sequencing technology %q (have %s)",
			simerr.ErrInvalidInput, name, strings.Join(e.ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists known technologies in sorted order.
func (e *Engine) ProfileNames() []string {
	names := make([]string, 0, len(e.cfg.Profiles))
	for n := range e.cfg.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
