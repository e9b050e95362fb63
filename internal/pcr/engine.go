// Package pcr simulates primer design and polymerase chain reaction:
// binding-site search with mismatch tolerance, efficiency penalties,
// exponential amplification, and polymerase error injection.
package pcr

// Config holds the polymerase and search constants.
type Config struct {
	TaqErrorRate          float64 `json:"taqErrorRate" yaml:"taqErrorRate" mapstructure:"taqErrorRate"`
	HighFidelityErrorRate float64 `json:"highFidelityErrorRate" yaml:"highFidelityErrorRate" mapstructure:"highFidelityErrorRate"`
	MaxAmpliconLength     int     `json:"maxAmpliconLength" yaml:"maxAmpliconLength" mapstructure:"maxAmpliconLength"`
	MaxBindingMismatches  int     `json:"maxBindingMismatches" yaml:"maxBindingMismatches" mapstructure:"maxBindingMismatches"`
	SearchChunk           int     `json:"searchChunk" yaml:"searchChunk" mapstructure:"searchChunk"`
	FlankPadding          int     `json:"flankPadding" yaml:"flankPadding" mapstructure:"flankPadding"`
}

func DefaultConfig() Config {
	return Config{
		TaqErrorRate:          1e-4,
		HighFidelityErrorRate: 1e-5,
		MaxAmpliconLength:     10000,
		MaxBindingMismatches:  2,
		SearchChunk:           10000,
		FlankPadding:          50,
	}
}

type Engine struct{ cfg Config }

func New(c Config) *Engine { return &Engine{cfg: c} }

func (e *Engine) Config() Config { return e.cfg }

// ReactionParameters describes one thermocycler program.
type ReactionParameters struct {
	Cycles         int     `json:"cycles" yaml:"cycles"`
	AnnealingTemp  float64 `json:"annealingTemp" yaml:"annealingTemp"`
	ExtensionTime  float64 `json:"extensionTime" yaml:"extensionTime"`   // seconds per kb
	HighFidelity   bool    `json:"highFidelity" yaml:"highFidelity"`
	MgMM           float64 `json:"mgMM" yaml:"mgMM"`
	DNTPMicroMolar float64 `json:"dntpMicroMolar" yaml:"dntpMicroMolar"`
}

// StandardReaction is a Taq program.
func StandardReaction() ReactionParameters {
	return ReactionParameters{Cycles: 30, AnnealingTemp: 55, ExtensionTime: 60, MgMM: 1.5, DNTPMicroMolar: 200}
}

// HighFidelityReaction is a proofreading-polymerase program.
func HighFidelityReaction() ReactionParameters {
	return ReactionParameters{Cycles: 30, AnnealingTemp: 58, ExtensionTime: 30, HighFidelity: true, MgMM: 2, DNTPMicroMolar: 200}
}

// ErrorRate is the per-base, per-cycle substitution rate for params.
func (e *Engine) ErrorRate(p ReactionParameters) float64 {
	if p.HighFidelity {
		return e.cfg.HighFidelityErrorRate
	}
	return e.cfg.TaqErrorRate
}
