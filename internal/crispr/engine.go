// Package crispr simulates Cas-nuclease genome editing: PAM discovery with
// guide scoring, and double-strand-break repair through NHEJ or HDR.
package crispr

// PAM motifs for common nucleases.
const (
	SpCas9PAM = "NGG"    // Streptococcus pyogenes Cas9
	SaCas9PAM = "NNGRRT" // Staphylococcus aureus Cas9
	Cas12aPAM = "TTTN"   // Cas12a (Cpf1)
)

// Config holds the repair model constants. Probabilities partition the
// first uniform draw of PerformEditing: [0,NoEdit) no edit, then HDR mass
// (only with a template), the rest NHEJ.
type Config struct {
	ProtospacerLength   int     `json:"protospacerLength" yaml:"protospacerLength" mapstructure:"protospacerLength"`
	NoEditProbability   float64 `json:"noEditProbability" yaml:"noEditProbability" mapstructure:"noEditProbability"`
	HDRProbability      float64 `json:"hdrProbability" yaml:"hdrProbability" mapstructure:"hdrProbability"`
	DeletionProbability float64 `json:"deletionProbability" yaml:"deletionProbability" mapstructure:"deletionProbability"`
	MaxDeletion         int     `json:"maxDeletion" yaml:"maxDeletion" mapstructure:"maxDeletion"`
	MaxInsertion        int     `json:"maxInsertion" yaml:"maxInsertion" mapstructure:"maxInsertion"`
	Byproducts          int     `json:"byproducts" yaml:"byproducts" mapstructure:"byproducts"`
}

// DefaultConfig returns the literature-derived defaults.
func DefaultConfig() Config {
	return Config{
		ProtospacerLength:   20,
		NoEditProbability:   0.05,
		HDRProbability:      0.10,
		DeletionProbability: 0.75,
		MaxDeletion:         30,
		MaxInsertion:        10,
		Byproducts:          5,
	}
}

// seedRegion is the PAM-distal prefix scored for GC balance.
const seedRegion = 12

// CutOffset is the distance of the Cas9 blunt cut upstream of the PAM.
const CutOffset = 3

// Engine is stateless apart from its immutable Config; one value may serve
// concurrent calls as long as each call brings its own rng.Source.
type Engine struct{ cfg Config }

func New(c Config) *Engine { return &Engine{cfg: c} }

func (e *Engine) Config() Config { return e.cfg }
