// Package gel simulates agarose gel electrophoresis: log-proportional
// migration, band intensity, ladder-based size estimation, and a
// plain-text rendering of the gel.
package gel

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"genelab/internal/simerr"
)

// Concentration is an agarose percentage with its optimal resolution range.
type Concentration struct {
	Percent    float64 `json:"percent" yaml:"percent" mapstructure:"percent"`
	MinOptimal int     `json:"minOptimal" yaml:"minOptimal" mapstructure:"minOptimal"`
	MaxOptimal int     `json:"maxOptimal" yaml:"maxOptimal" mapstructure:"maxOptimal"`
}

// Optimal reports whether size falls inside the resolution range.
func (c Concentration) Optimal(size int) bool { return size >= c.MinOptimal && size <= c.MaxOptimal }

func DefaultConcentrations() []Concentration {
	return []Concentration{
		{0.5, 1000, 30000},
		{1.0, 500, 10000},
		{1.5, 200, 3000},
		{2.0, 100, 2000},
		{3.0, 50, 1000},
	}
}

// Standard ladder names.
const (
	Ladder100bp   = "100bp"
	Ladder1kb     = "1kb"
	Ladder1kbPlus = "1kb-plus"
)

// DefaultLadders returns fresh copies of the standard ladder size tables.
func DefaultLadders() map[string][]int {
	return map[string][]int{
		Ladder100bp:   {100, 200, 300, 400, 500, 600, 700, 800, 900, 1000, 1200, 1500},
		Ladder1kb:     {250, 500, 750, 1000, 1500, 2000, 2500, 3000, 4000, 5000, 6000, 8000, 10000},
		Ladder1kbPlus: {100, 200, 300, 400, 500, 650, 850, 1000, 1650, 2000, 3000, 4000, 5000, 6000, 8000, 10000, 12000},
	}
}

// Fragment is one DNA species in a sample.
type Fragment struct {
	Size      int     `json:"size" yaml:"size"`
	Abundance float64 `json:"abundance" yaml:"abundance"` // 0–1, relative to the sample's other fragments
}

// Sample is the content of one lane. Concentration is in ng/µL.
type Sample struct {
	Name          string     `json:"name" yaml:"name"`
	Fragments     []Fragment `json:"fragments" yaml:"fragments"`
	Concentration float64    `json:"concentration" yaml:"concentration"`
}

// SingleSample is a lane holding one fragment species.
func SingleSample(name string, size int, conc float64) Sample {
	return Sample{Name: name, Fragments: []Fragment{{Size: size, Abundance: 1}}, Concentration: conc}
}

// LadderSample builds an equal-abundance, 100 ng/µL ladder lane.
func LadderSample(name string, sizes []int) Sample {
	fr := make([]Fragment, len(sizes))
	for i, s := range sizes {
		fr[i] = Fragment{Size: s, Abundance: 1 / float64(len(sizes))}
	}
	return Sample{Name: name, Fragments: fr, Concentration: 100}
}

// Config is the engine's lookup tables and gel geometry.
type Config struct {
	GelLengthMM    int              `json:"gelLengthMM" yaml:"gelLengthMM" mapstructure:"gelLengthMM"`
	Ladders        map[string][]int `json:"ladders" yaml:"ladders" mapstructure:"ladders"`
	Concentrations []Concentration  `json:"concentrations" yaml:"concentrations" mapstructure:"concentrations"`
}

func DefaultConfig() Config {
	return Config{GelLengthMM: 100, Ladders: DefaultLadders(), Concentrations: DefaultConcentrations()}
}

type Engine struct{ cfg Config }

// New fills unset fields of cfg from DefaultConfig. Configured ladders are
// added to the standard ones, replacing any of the same name.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.GelLengthMM <= 0 {
		cfg.GelLengthMM = def.GelLengthMM
	}
	ladders := def.Ladders
	for name, sizes := range cfg.Ladders {
		ladders[name] = append([]int(nil), sizes...)
	}
	cfg.Ladders = ladders
	if len(cfg.Concentrations) == 0 {
		cfg.Concentrations = def.Concentrations
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

// Concentration finds the table entry for an agarose percentage.
func (e *Engine) Concentration(percent float64) (Concentration, error) {
	for _, c := range e.cfg.Concentrations {
		if math.Abs(c.Percent-percent) < 1e-9 {
			return c, nil
		}
	}
	have := make([]string, len(e.cfg.Concentrations))
	for i, c := range e.cfg.Concentrations {
		have[i] = fmt.Sprintf("%.1f", c.Percent)
	}
	return Concentration{}, simerr.Input("no %.2f%% gel (have %s)", percent, strings.Join(have, ", "))
}

// Ladder returns a copy of the named ladder's sizes.
func (e *Engine) Ladder(name string) ([]int, error) {
	sizes, ok := e.cfg.Ladders[name]
	if !ok {
		names := make([]string, 0, len(e.cfg.Ladders))
		for n := range e.cfg.Ladders {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, simerr.Input("unknown ladder %q (have %s)", name, strings.Join(names, ", "))
	}
	return append([]int(nil), sizes...), nil
}
